package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalYAML = `
server:
  port: 9090
  mode: debug
database:
  host: db.internal
  user: miner
  db_name: researchtools
kafka:
  brokers: ["kafka-1:9092"]
mining:
  completeness_threshold: 0.7
`

func TestLoad_FileWithDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port, "unset fields take defaults")
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaIngestTopic, cfg.Kafka.IngestTopic)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, 0.7, cfg.Mining.CompletenessThreshold)
	assert.Equal(t, DefaultFuzzyThreshold, cfg.Mining.FuzzyThreshold)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv_DefaultsAreValid(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestValidate_Failures(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad server port", func(c *Config) { c.Server.Port = 0 }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "verbose" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing kafka brokers", func(c *Config) { c.Kafka.Brokers = nil }},
		{"missing kafka topics", func(c *Config) { c.Kafka.IngestTopic = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad fuzzy threshold", func(c *Config) { c.Mining.FuzzyThreshold = 1.5 }},
		{"bad completeness threshold", func(c *Config) { c.Mining.CompletenessThreshold = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}

func TestApplyDefaults_NilIsSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
