package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ndquoc/library-notify/internal/domain"
	"github.com/ndquoc/library-notify/internal/engine"
	"github.com/ndquoc/library-notify/internal/metrics"
	"github.com/ndquoc/library-notify/internal/store"
	"github.com/ndquoc/library-notify/internal/ws"
)

// webhookBody is the wire format delivered to every registration.
type webhookBody struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Deliverer performs one outbound webhook call per job. A delivery either
// gets a response (success, whatever the status code) or fails on a
// transport error or the timeout. Both outcomes are recorded and dropped:
// no retry, and nothing propagates back to the publishing request.
type Deliverer struct {
	httpClient *http.Client
	log        store.DeliveryLog
	metrics    *metrics.Metrics
	hub        *ws.Hub
	logger     *slog.Logger
}

func NewDeliverer(log store.DeliveryLog, m *metrics.Metrics, hub *ws.Hub, timeout time.Duration, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		metrics:    m,
		hub:        hub,
		logger:     logger,
	}
}

// Deliver posts {"event": ..., "data": ...} to the job's target URL.
func (d *Deliverer) Deliver(ctx context.Context, job engine.DeliveryJob) {
	// A claimed delivery runs to completion even during shutdown; the
	// client timeout bounds it.
	ctx = context.WithoutCancel(ctx)

	start := time.Now()

	body, err := json.Marshal(webhookBody{Event: job.EventType, Data: job.Payload})
	if err != nil {
		d.recordAttempt(ctx, job, start, nil, fmt.Sprintf("failed to marshal body: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.TargetURL, bytes.NewReader(body))
	if err != nil {
		d.recordAttempt(ctx, job, start, nil, fmt.Sprintf("failed to create request: %v", err))
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", job.EventType)
	req.Header.Set("X-Webhook-ID", job.EventID)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.recordAttempt(ctx, job, start, nil, fmt.Sprintf("request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	// The response body is never inspected; drain it so the connection
	// can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	d.recordAttempt(ctx, job, start, &resp.StatusCode, "")
}

// recordAttempt writes the outcome to the delivery log, metrics, the live
// feed, and the structured log.
func (d *Deliverer) recordAttempt(ctx context.Context, job engine.DeliveryJob, start time.Time, statusCode *int, errMsg string) {
	elapsed := time.Since(start)

	status := domain.DeliverySuccess
	var errPtr *string
	if errMsg != "" {
		status = domain.DeliveryFailed
		errPtr = &errMsg
	}

	if d.metrics != nil {
		d.metrics.Deliveries.WithLabelValues(status).Inc()
		d.metrics.DeliveryDuration.Observe(elapsed.Seconds())
	}

	if err := d.log.RecordDeliveryAttempt(ctx, domain.DeliveryAttempt{
		ID:             uuid.NewString(),
		WebhookID:      job.WebhookID,
		EventID:        job.EventID,
		EventType:      job.EventType,
		TargetURL:      job.TargetURL,
		Status:         status,
		HTTPStatusCode: statusCode,
		ResponseTimeMs: int(elapsed.Milliseconds()),
		ErrorMessage:   errPtr,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		d.logger.Error("failed to record delivery attempt",
			"error", err,
			"event_id", job.EventID,
			"webhook_id", job.WebhookID,
		)
	}

	if d.hub != nil {
		d.hub.Broadcast(ws.DeliveryEvent{
			Type:       "delivery_" + status,
			EventID:    job.EventID,
			WebhookID:  job.WebhookID,
			TargetURL:  job.TargetURL,
			EventType:  job.EventType,
			StatusCode: statusCode,
			ResponseMs: elapsed.Milliseconds(),
			Error:      errMsg,
			Timestamp:  time.Now().UTC(),
		})
	}

	if status == domain.DeliverySuccess {
		d.logger.Info("delivery successful",
			"event_id", job.EventID,
			"webhook_id", job.WebhookID,
			"status_code", statusCode,
			"response_time_ms", elapsed.Milliseconds(),
		)
	} else {
		d.logger.Warn("delivery failed",
			"event_id", job.EventID,
			"webhook_id", job.WebhookID,
			"error", errMsg,
			"response_time_ms", elapsed.Milliseconds(),
		)
	}
}
