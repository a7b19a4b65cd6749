// Package telemetry publishes estimate updates to an MQTT broker for site
// dashboards. The publisher is optional; without a broker URL it is a no-op.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"queuesense/pkg/estimation"
	"queuesense/services/device-service/internal/evaluator"
)

// Publisher pushes wait-time estimates to a broker topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// NewPublisher connects to the broker. An empty broker URL disables
// publishing without error.
func NewPublisher(broker, clientID, topic string, logger *zap.Logger) (*Publisher, error) {
	if broker == "" {
		logger.Info("telemetry disabled, no broker configured")
		return &Publisher{topic: topic, logger: logger}, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("telemetry broker connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect to broker: %w", token.Error())
	}

	logger.Info("telemetry connected", zap.String("broker", broker), zap.String("topic", topic))
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

type estimateMessage struct {
	WaitTimeMinutes *float64 `json:"wait_time_minutes"`
	Status          string   `json:"status"`
	ErrorCode       *string  `json:"error_code"`
	Timestamp       string   `json:"timestamp"`
}

// PublishEstimate sends one estimate to the topic. Publish failures are
// logged, never propagated; telemetry must not disturb the refresh cycle.
func (p *Publisher) PublishEstimate(e evaluator.Estimate) {
	if p.client == nil {
		return
	}

	msg := estimateMessage{
		WaitTimeMinutes: e.WaitTimeMinutes,
		Status:          string(e.Status),
		Timestamp:       e.Timestamp.UTC().Format(time.RFC3339),
	}
	if e.Status != estimation.StatusOK {
		code := e.ErrorCode
		msg.ErrorCode = &code
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("estimate marshal failed", zap.Error(err))
		return
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		p.logger.Warn("estimate publish failed", zap.String("topic", p.topic), zap.Error(token.Error()))
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
