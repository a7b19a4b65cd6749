package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"TESTCFG_HTTP_PORT"`
	} `yaml:"http"`
	Refresh struct {
		IntervalSecs int `yaml:"intervalSecs" env:"TESTCFG_REFRESH_INTERVAL"`
	} `yaml:"refresh"`
	Sensors struct {
		Addresses []string `yaml:"addresses" env:"TESTCFG_SENSOR_ADDRESSES"`
	} `yaml:"sensors"`
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte("http:\n  port: \"9090\"\nrefresh:\n  intervalSecs: 7\nsensors:\n  addresses: [\"0x30\", \"0x31\"]\n")
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	var cfg testConfig
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 7, cfg.Refresh.IntervalSecs)
	assert.Equal(t, []string{"0x30", "0x31"}, cfg.Sensors.Addresses)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: \"9090\"\n"), 0o644))

	t.Setenv("TESTCFG_HTTP_PORT", "8081")
	t.Setenv("TESTCFG_REFRESH_INTERVAL", "12")
	t.Setenv("TESTCFG_SENSOR_ADDRESSES", "0x29, 0x2a,0x2b")

	var cfg testConfig
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.Equal(t, 12, cfg.Refresh.IntervalSecs)
	assert.Equal(t, []string{"0x29", "0x2a", "0x2b"}, cfg.Sensors.Addresses)
}

func TestEnvOnlyWithoutFile(t *testing.T) {
	t.Setenv("TESTCFG_HTTP_PORT", "7070")

	var cfg testConfig
	require.NoError(t, LoadConfigFile("", &cfg))

	assert.Equal(t, "7070", cfg.HTTP.Port)
}

func TestInvalidIntReturnsError(t *testing.T) {
	t.Setenv("TESTCFG_REFRESH_INTERVAL", "not-a-number")

	var cfg testConfig
	err := LoadConfigFile("", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TESTCFG_REFRESH_INTERVAL")
}

func TestMissingFileReturnsError(t *testing.T) {
	var cfg testConfig
	err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	require.Error(t, err)
}

func TestTargetMustBeStructPointer(t *testing.T) {
	assert.Error(t, LoadConfig(nil))
	var notStruct int
	assert.Error(t, LoadConfig(&notStruct))
}
