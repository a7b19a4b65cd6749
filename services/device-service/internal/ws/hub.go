// Package ws pushes refresh-cycle updates to /api/live subscribers.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"queuesense/pkg/estimation"
	"queuesense/services/device-service/internal/evaluator"
	"queuesense/services/device-service/internal/sensor"
)

// Event types pushed on /api/live.
const (
	EventEstimate = "estimate"
	EventReadings = "readings"
)

// Hub tracks live subscribers and fans events out to all of them.
type Hub struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// NewHub builds subscriber hub.
func NewHub(pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		connections:  make(map[string]*Connection),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Add registers new connection.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn.ID()] = conn
}

// Remove removes connection.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, id)
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Run begins the ping loop that keeps connections active.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.RLock()
			for _, conn := range h.connections {
				_ = conn.Ping()
			}
			h.mu.RUnlock()
		}
	}
}

// HandleLive is the HTTP handler for the /api/live endpoint.
func (h *Hub) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	connection := NewConnection(id, conn, h.writeTimeout, h.logger, func(id string) {
		h.Remove(id)
		cancel()
	})
	h.Add(connection)

	go connection.Start(ctx)
	h.logger.Info("subscriber connected", zap.String("connection_id", id))
}

type event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type estimatePayload struct {
	WaitTimeMinutes *float64 `json:"wait_time_minutes"`
	Status          string   `json:"status"`
	ErrorCode       *string  `json:"error_code"`
	Timestamp       string   `json:"timestamp"`
}

type readingPayload struct {
	SensorID   uint32  `json:"sensor_id"`
	DistanceMM *int    `json:"distance_mm"`
	Timestamp  string  `json:"timestamp"`
	ErrorCode  *string `json:"error_code,omitempty"`
}

// BroadcastEstimate pushes the latest estimate to every subscriber.
func (h *Hub) BroadcastEstimate(e evaluator.Estimate) {
	payload := estimatePayload{
		WaitTimeMinutes: e.WaitTimeMinutes,
		Status:          string(e.Status),
		Timestamp:       e.Timestamp.UTC().Format(time.RFC3339),
	}
	if e.Status != estimation.StatusOK {
		code := e.ErrorCode
		payload.ErrorCode = &code
	}
	h.broadcast(EventEstimate, payload)
}

// BroadcastReadings pushes the latest poll cycle to every subscriber.
func (h *Hub) BroadcastReadings(readings []sensor.Reading) {
	payload := make([]readingPayload, 0, len(readings))
	for _, reading := range readings {
		entry := readingPayload{
			SensorID:  reading.SensorID,
			Timestamp: reading.Timestamp.UTC().Format(time.RFC3339),
		}
		if reading.OK() {
			distance := reading.DistanceMM
			entry.DistanceMM = &distance
		} else {
			code := reading.ErrorCode
			entry.ErrorCode = &code
		}
		payload = append(payload, entry)
	}
	h.broadcast(EventReadings, payload)
}

func (h *Hub) broadcast(eventType string, payload interface{}) {
	frame, err := json.Marshal(event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("event marshal failed", zap.String("type", eventType), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.connections {
		conn.Send(frame)
	}
}
