package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "queuesense/libs/config"
)

// HTTPConfig holds the device HTTP surface settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"DEVICE_HTTP_PORT"`
}

// CalibrationConfig locates the static calibration file.
type CalibrationConfig struct {
	Path string `yaml:"path" env:"CALIBRATION_FILE"`
}

// SensorsConfig describes the sensor array.
type SensorsConfig struct {
	Driver         string `yaml:"driver" env:"SENSORS_DRIVER"`
	Count          int    `yaml:"count" env:"SENSORS_COUNT"`
	MockDistanceMM int    `yaml:"mock_distance_mm" env:"SENSORS_MOCK_DISTANCE_MM"`
}

// EvaluatorConfig points at the remote model service. An empty endpoint means
// in-process evaluation.
type EvaluatorConfig struct {
	Endpoint             string `yaml:"endpoint" env:"EVALUATOR_ENDPOINT"`
	TimeoutMS            int    `yaml:"timeout_ms" env:"EVALUATOR_TIMEOUT_MS"`
	UnavailableErrorCode string `yaml:"unavailable_error_code" env:"EVALUATOR_UNAVAILABLE_ERROR_CODE"`
}

// RefreshConfig controls the background refresh cadence.
type RefreshConfig struct {
	IntervalSecs int `yaml:"interval_secs" env:"REFRESH_INTERVAL_SECS"`
}

// TelemetryConfig configures the optional MQTT estimate feed.
type TelemetryConfig struct {
	Broker   string `yaml:"broker" env:"TELEMETRY_BROKER"`
	ClientID string `yaml:"client_id" env:"TELEMETRY_CLIENT_ID"`
	Topic    string `yaml:"topic" env:"TELEMETRY_TOPIC"`
}

// Config defines device service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Sensors     SensorsConfig     `yaml:"sensors"`
	Evaluator   EvaluatorConfig   `yaml:"evaluator"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:        HTTPConfig{Port: "8080"},
		Calibration: CalibrationConfig{Path: "config/calibration.json"},
		Sensors: SensorsConfig{
			Driver:         "mock",
			Count:          2,
			MockDistanceMM: 800,
		},
		Evaluator: EvaluatorConfig{TimeoutMS: 1000},
		Refresh:   RefreshConfig{IntervalSecs: 5},
		Telemetry: TelemetryConfig{
			ClientID: "queuesense-device",
			Topic:    "queuesense/estimate",
		},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// EvaluatorTimeout converts the configured milliseconds into a duration.
func (c *Config) EvaluatorTimeout() time.Duration {
	if c.Evaluator.TimeoutMS <= 0 {
		return time.Second
	}
	return time.Duration(c.Evaluator.TimeoutMS) * time.Millisecond
}

// RefreshInterval converts the configured seconds into a duration.
func (c *Config) RefreshInterval() time.Duration {
	if c.Refresh.IntervalSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Refresh.IntervalSecs) * time.Second
}
