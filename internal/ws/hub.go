package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// DeliveryEvent is a real-time delivery update pushed to connected clients.
type DeliveryEvent struct {
	Type       string    `json:"type"` // "delivery_success" or "delivery_failed"
	EventID    string    `json:"event_id"`
	WebhookID  string    `json:"webhook_id"`
	TargetURL  string    `json:"target_url"`
	EventType  string    `json:"event_type"`
	StatusCode *int      `json:"status_code,omitempty"`
	ResponseMs int64     `json:"response_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Hub fans delivery updates out to websocket subscribers. A single
// goroutine (Run) owns the subscriber set; connections join and leave
// through channels, so the set needs no lock.
type Hub struct {
	subscribe   chan *subscriber
	unsubscribe chan *subscriber
	events      chan []byte
	count       atomic.Int32
	logger      *slog.Logger
}

type subscriber struct {
	conn *websocket.Conn
	out  chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribe:   make(chan *subscriber),
		unsubscribe: make(chan *subscriber),
		events:      make(chan []byte, 256),
		logger:      logger,
	}
}

// Run is the hub's event loop. Call it in its own goroutine.
func (h *Hub) Run() {
	subs := make(map[*subscriber]struct{})

	drop := func(s *subscriber) {
		if _, ok := subs[s]; ok {
			delete(subs, s)
			close(s.out)
		}
	}

	for {
		select {
		case s := <-h.subscribe:
			subs[s] = struct{}{}
			h.count.Store(int32(len(subs)))
			h.logger.Debug("websocket client connected", "total_clients", len(subs))

		case s := <-h.unsubscribe:
			drop(s)
			h.count.Store(int32(len(subs)))
			h.logger.Debug("websocket client disconnected", "total_clients", len(subs))

		case msg := <-h.events:
			for s := range subs {
				select {
				case s.out <- msg:
				default:
					// Slow consumer, cut it loose
					drop(s)
				}
			}
			h.count.Store(int32(len(subs)))
		}
	}
}

// Broadcast queues a delivery event for all subscribers. It never blocks;
// when the hub is backed up the event is dropped.
func (h *Hub) Broadcast(event DeliveryEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal websocket event", "error", err)
		return
	}

	select {
	case h.events <- data:
	default:
		h.logger.Warn("websocket broadcast buffer full, dropping event")
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// HandleWebSocket upgrades the connection and joins it to the hub.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s := &subscriber{conn: conn, out: make(chan []byte, 256)}
	h.subscribe <- s

	go h.writeLoop(s)
	go h.readLoop(s)
}

// readLoop drains inbound frames so pings and close frames are handled;
// subscribers never send anything we act on.
func (h *Hub) readLoop(s *subscriber) {
	defer func() {
		h.unsubscribe <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
