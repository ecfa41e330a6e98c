package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	yaml := `environment: production
server:
  port: 9090
  enable_cors: true
storage:
  backend: redis
redis:
  addr: redis.internal:6379
  db: 2
kafka:
  brokers:
    - broker-1:9092
  topic: spins
logging:
  level: debug
`
	file := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected Port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Server.EnableCORS {
		t.Error("Expected EnableCORS true")
	}
	if cfg.Storage.Backend != "redis" {
		t.Errorf("Expected Backend 'redis', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Expected Redis addr 'redis.internal:6379', got '%s'", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("Expected Redis DB 2, got %d", cfg.Redis.DB)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "broker-1:9092" {
		t.Errorf("Expected Brokers [broker-1:9092], got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != "spins" {
		t.Errorf("Expected Topic 'spins', got '%s'", cfg.Kafka.Topic)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected Level 'debug', got '%s'", cfg.Logging.Level)
	}
	if !cfg.IsProduction() {
		t.Error("Expected IsProduction true for 'production'")
	}

	// defaults fill in what the file leaves out
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default ReadTimeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Path != "slot-machine-data.json" {
		t.Errorf("Expected default storage path, got '%s'", cfg.Storage.Path)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default Format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/non/existent/config.yaml")
	if err == nil {
		t.Error("Expected error when loading non-existent file, got nil")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected Port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Expected Backend 'file', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Kafka.Topic != "slot-machine-events" {
		t.Errorf("Expected default Kafka topic, got '%s'", cfg.Kafka.Topic)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected IsDevelopment true for default config")
	}
	if cfg.IsProduction() {
		t.Error("Expected IsProduction false for default config")
	}
}
