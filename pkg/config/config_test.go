package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
environment: test
server:
  port: 8080
ingest:
  type: clickhouse
clickhouse:
  host: localhost
  port: 9000
  database: stockometry
news_api:
  api_key: test-key
  base_url: https://newsapi.org
nlp:
  service_url: http://localhost:8000
analysis:
  lookback_days: 3
sectors:
  Technology: ["AAPL", "Apple"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("environment = %q, want test", cfg.Environment)
	}
	if cfg.Ingest.Type != "clickhouse" {
		t.Fatalf("ingest.type = %q, want clickhouse", cfg.Ingest.Type)
	}
	if cfg.Analysis.LookbackDays != 3 {
		t.Fatalf("lookback_days = %d, want 3", cfg.Analysis.LookbackDays)
	}
	if got := cfg.Sectors["Technology"]; len(got) != 2 {
		t.Fatalf("sectors[Technology] = %v, want 2 entries", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() on missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"valid", func(c *Config) {}, true},
		{"missing environment", func(c *Config) { c.Environment = "" }, false},
		{"missing ingest type", func(c *Config) { c.Ingest.Type = "" }, false},
		{"bad ingest type", func(c *Config) { c.Ingest.Type = "postgres" }, false},
		{"kafka ingest", func(c *Config) { c.Ingest.Type = "kafka" }, true},
		{"missing api key", func(c *Config) { c.NewsAPI.APIKey = "" }, false},
		{"missing nlp url", func(c *Config) { c.NLP.ServiceURL = "" }, false},
		{"negative lookback", func(c *Config) { c.Analysis.LookbackDays = -1 }, false},
		{"market data without symbols", func(c *Config) {
			c.MarketData.Enabled = true
			c.MarketData.Symbols = nil
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validYAML))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantOK && err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Fatal("Validate() should fail")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "env-key")
	t.Setenv("INGEST", "kafka")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}
	if cfg.NewsAPI.APIKey != "env-key" {
		t.Fatalf("api_key = %q, want env-key", cfg.NewsAPI.APIKey)
	}
	if cfg.Ingest.Type != "kafka" {
		t.Fatalf("ingest.type = %q, want kafka", cfg.Ingest.Type)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v, want 2", cfg.Kafka.Brokers)
	}
}
