package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "configs")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestReadConfigsSkipsCommentsAndBlankLines(t *testing.T) {
	path := writeConfigFile(t, "# comment\n\napi_port = 9000\nrpc_base=\nbroken line\nkafka_topic = a=b\n")

	cm := NewConfigManager(path)

	if got := cm.GetConfigWithDefault("api_port", "8088"); got != "9000" {
		t.Errorf("Expected api_port 9000, got %s", got)
	}
	if got := cm.GetConfigWithDefault("rpc_base", "https://default"); got != "https://default" {
		t.Errorf("Expected empty value to fall back to default, got %s", got)
	}
	if got := cm.GetConfigWithDefault("kafka_topic", ""); got != "a=b" {
		t.Errorf("Expected value split on first '=', got %s", got)
	}
	if _, ok := cm.GetConfig("broken line"); ok {
		t.Error("Expected line without '=' to be ignored")
	}
}

func TestTypedGetters(t *testing.T) {
	cm := NewConfigManagerFromMap(Config{
		"balance_refresh_interval": "50s",
		"bad_duration":             "soon",
		"fetch_workers":            "12",
		"too_many":                 "5000",
		"flag":                     "enabled",
		"brokers":                  " a:9092, ,b:9092 ",
	})

	if got := cm.GetConfigDuration("balance_refresh_interval", time.Minute); got != 50*time.Second {
		t.Errorf("Expected 50s, got %v", got)
	}
	if got := cm.GetConfigDuration("bad_duration", 3*time.Minute); got != 3*time.Minute {
		t.Errorf("Expected default 3m, got %v", got)
	}
	if got := cm.GetConfigInt("fetch_workers", 6, 1, 64); got != 12 {
		t.Errorf("Expected 12 workers, got %d", got)
	}
	if got := cm.GetConfigInt("too_many", 6, 1, 64); got != 6 {
		t.Errorf("Expected out of range value to use default, got %d", got)
	}
	if !cm.GetConfigBool("flag", false) {
		t.Error("Expected 'enabled' to parse as true")
	}

	brokers := cm.GetConfigSlice("brokers", nil)
	if len(brokers) != 2 || brokers[0] != "a:9092" || brokers[1] != "b:9092" {
		t.Errorf("Unexpected brokers: %v", brokers)
	}
	if got := cm.GetConfigSlice("missing", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Errorf("Expected default slice, got %v", got)
	}
}

func TestSetConfigOverridesValue(t *testing.T) {
	cm := NewConfigManagerFromMap(nil)
	cm.SetConfig("price_refresh_interval", 2*time.Minute)
	cm.SetConfig("api_port", 9100)

	if got := cm.GetConfigDuration("price_refresh_interval", time.Minute); got != 2*time.Minute {
		t.Errorf("Expected 2m, got %v", got)
	}
	if got := cm.GetConfigWithDefault("api_port", ""); got != "9100" {
		t.Errorf("Expected 9100, got %s", got)
	}
}

func TestHashBytesIsStable(t *testing.T) {
	a := HashBytes([]byte("balances"))
	if b := HashBytes([]byte("balances")); a != b {
		t.Errorf("Expected equal digests, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
	if a == HashBytes([]byte("prices")) {
		t.Error("Expected different inputs to hash differently")
	}
}
