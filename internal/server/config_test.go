package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("expected default max upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if cfg.Cache.Backend != CacheBackendMemory {
		t.Fatalf("expected memory cache by default, got %q", cfg.Cache.Backend)
	}
	if cfg.CacheTTL() != 10*time.Minute {
		t.Fatalf("expected default cache ttl, got %s", cfg.CacheTTL())
	}
	if cfg.RateLimit.Capacity != constants.DefaultRateLimitCapacity {
		t.Fatalf("expected default rate limit capacity, got %d", cfg.RateLimit.Capacity)
	}
	if cfg.RefillInterval() != time.Minute {
		t.Fatalf("expected default refill interval, got %s", cfg.RefillInterval())
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, "server-config.yaml", `address: 127.0.0.1:9000
maxUploadSize: 2M
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
cache:
  backend: redis
  redisAddr: localhost:6379
  ttl: 30s
rateLimit:
  capacity: 5
  refill: 10s
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
	if cfg.Cache.Backend != CacheBackendRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Fatalf("expected redis cache override, got %+v", cfg.Cache)
	}
	if cfg.CacheTTL() != 30*time.Second {
		t.Fatalf("expected cache ttl 30s, got %s", cfg.CacheTTL())
	}
	if cfg.RateLimit.Capacity != 5 || cfg.RefillInterval() != 10*time.Second {
		t.Fatalf("expected rate limit override, got %+v", cfg.RateLimit)
	}
}

func TestLoadConfigToml(t *testing.T) {
	path := writeConfig(t, "server-config.toml", `address = "0.0.0.0:8181"
maxUploadSize = "512K"

[logging]
level = "warn"

[cache]
backend = "none"

[rateLimit]
capacity = 100
refill = "2m"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "0.0.0.0:8181" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 512*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected logging level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Cache.Backend != CacheBackendNone {
		t.Fatalf("expected cache disabled, got %q", cfg.Cache.Backend)
	}
	if cfg.RateLimit.Capacity != 100 || cfg.RefillInterval() != 2*time.Minute {
		t.Fatalf("expected rate limit override, got %+v", cfg.RateLimit)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"bad.yaml":          "maxUploadSize: invalid",
		"bad-backend.yaml":  "cache:\n  backend: memcached\n",
		"no-redis.yaml":     "cache:\n  backend: redis\n",
		"bad-ttl.yaml":      "cache:\n  ttl: soon\n",
		"negative-ttl.yaml": "cache:\n  ttl: -5s\n",
		"bad-refill.yaml":   "rateLimit:\n  capacity: 3\n  refill: often\n",
		"bad.toml":          "address = ",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, name, contents)); err == nil {
				t.Fatalf("expected error for %s but got nil", name)
			}
		})
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetUploadSizeBytes(4096)
	if cfg.UploadSizeBytes() != 4096 || cfg.MaxUploadSize != "4096" {
		t.Fatalf("expected upload size 4096, got %d (%s)", cfg.UploadSizeBytes(), cfg.MaxUploadSize)
	}
	cfg.SetUploadSizeBytes(0)
	if cfg.UploadSizeBytes() != 4096 {
		t.Fatalf("non-positive size should be ignored, got %d", cfg.UploadSizeBytes())
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("parseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("parseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1TB"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
}
