package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ndquoc/library-notify/internal/engine"
	"github.com/redis/go-redis/v9"
)

const (
	pollInterval = 100 * time.Millisecond
	claimBatch   = 10
)

// Dispatcher moves jobs from the Redis delivery queue into the worker
// pool. ZPopMin both reads and removes in one round trip, so a claimed
// job can never be picked up twice even with several dispatcher
// instances on the same queue.
type Dispatcher struct {
	redisClient *redis.Client
	pool        *Pool
	logger      *slog.Logger
	done        chan struct{}
}

func NewDispatcher(redisClient *redis.Client, pool *Pool, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		redisClient: redisClient,
		pool:        pool,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start polls the queue until the context is cancelled. After a full
// batch it polls again immediately to drain backlogs faster than the
// tick alone would.
func (d *Dispatcher) Start(ctx context.Context) {
	defer close(d.done)
	d.logger.Info("dispatcher started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopping")
			return
		case <-ticker.C:
			for d.claim(ctx) == claimBatch {
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// Wait blocks until Start has returned. Anything claimed from Redis has
// been submitted by then, so it is safe to stop the pool afterwards.
func (d *Dispatcher) Wait() {
	<-d.done
}

// claim pops up to one batch of jobs off the queue and submits them.
// Returns how many jobs were claimed.
func (d *Dispatcher) claim(ctx context.Context) int {
	popped, err := d.redisClient.ZPopMin(ctx, engine.DeliveryQueueKey, claimBatch).Result()
	if err != nil {
		d.logger.Error("failed to poll delivery queue", "error", err)
		return 0
	}

	for _, z := range popped {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		var job engine.DeliveryJob
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			d.logger.Error("failed to unmarshal job, dropping it", "error", err)
			continue
		}

		d.pool.Submit(job)
	}

	return len(popped)
}
