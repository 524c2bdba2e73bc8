package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "GEMINI_API_KEY", "GEMINI_MODEL", "AMQP_URL", "SESSION_TTL", "ORDER_SUBMIT_RETRIES", "ASSISTANT_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.DBDSN != ":memory:" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("model default: %q", cfg.GeminiModel)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.OrderSubmitRetries != 3 || cfg.AssistantTimeout != 30*time.Second {
		t.Fatalf("unexpected durations/retries: %+v", cfg)
	}
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("ORDER_SUBMIT_RETRIES", "nope")
	t.Setenv("GEMINI_API_KEY", "secret")
	cfg := Load()
	if cfg.Port != "9090" || cfg.SessionTTL != 15*time.Minute {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if cfg.OrderSubmitRetries != 3 {
		t.Fatalf("bad int should fall back, got %d", cfg.OrderSubmitRetries)
	}
	f := cfg.Fields()
	if _, leaked := f["gemini_api_key"]; leaked {
		t.Fatal("api key must not be logged")
	}
	if f["gemini_configured"] != true {
		t.Fatalf("want gemini_configured=true, got %v", f["gemini_configured"])
	}
}
