package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"queuesense/pkg/estimation"
	"queuesense/services/device-service/internal/evaluator"
	"queuesense/services/device-service/internal/sensor"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleLive))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count never reached %d", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsEstimate(t *testing.T) {
	hub := NewHub(time.Minute, time.Second, zap.NewNop())
	conn := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	wait := 30.0
	hub.BroadcastEstimate(evaluator.Estimate{
		WaitTimeMinutes: &wait,
		Status:          estimation.StatusOK,
		Timestamp:       time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type    string `json:"type"`
		Payload struct {
			WaitTimeMinutes *float64 `json:"wait_time_minutes"`
			Status          string   `json:"status"`
			ErrorCode       *string  `json:"error_code"`
			Timestamp       string   `json:"timestamp"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame, &got))
	assert.Equal(t, EventEstimate, got.Type)
	require.NotNil(t, got.Payload.WaitTimeMinutes)
	assert.InDelta(t, 30.0, *got.Payload.WaitTimeMinutes, 1e-9)
	assert.Equal(t, "ok", got.Payload.Status)
	assert.Nil(t, got.Payload.ErrorCode)
	assert.Equal(t, "2026-08-24T12:00:00Z", got.Payload.Timestamp)
}

func TestHubBroadcastsDegradedEstimateWithCode(t *testing.T) {
	hub := NewHub(time.Minute, time.Second, zap.NewNop())
	conn := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	hub.BroadcastEstimate(evaluator.Degraded(estimation.ErrCodeNoData, time.Unix(0, 0)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Payload struct {
			ErrorCode *string `json:"error_code"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame, &got))
	require.NotNil(t, got.Payload.ErrorCode)
	assert.Equal(t, "NO_DATA", *got.Payload.ErrorCode)
}

func TestHubBroadcastsReadings(t *testing.T) {
	hub := NewHub(time.Minute, time.Second, zap.NewNop())
	conn := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	hub.BroadcastReadings([]sensor.Reading{
		{SensorID: 1, DistanceMM: 800, Timestamp: time.Unix(100, 0).UTC()},
		{SensorID: 2, Timestamp: time.Unix(100, 0).UTC(), ErrorCode: sensor.CodeI2CError},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type    string `json:"type"`
		Payload []struct {
			SensorID   uint32  `json:"sensor_id"`
			DistanceMM *int    `json:"distance_mm"`
			ErrorCode  *string `json:"error_code"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame, &got))
	assert.Equal(t, EventReadings, got.Type)
	require.Len(t, got.Payload, 2)
	require.NotNil(t, got.Payload[0].DistanceMM)
	assert.Equal(t, 800, *got.Payload[0].DistanceMM)
	require.NotNil(t, got.Payload[1].ErrorCode)
	assert.Equal(t, "I2C_ERROR", *got.Payload[1].ErrorCode)
}

func TestHubRemovesClosedSubscribers(t *testing.T) {
	hub := NewHub(time.Minute, time.Second, zap.NewNop())
	conn := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)
}
