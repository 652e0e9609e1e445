package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
	if cfg.CapabilityTimeout != 3*time.Second || cfg.BreakerMaxFailures != 5 || cfg.BreakerOpenTimeout != 30*time.Second {
		t.Fatalf("unexpected breaker defaults: %+v", cfg)
	}
	if cfg.ConfirmationChannel != "payments:confirmed" {
		t.Fatalf("unexpected channel %s", cfg.ConfirmationChannel)
	}
}

func TestLoadRequiresBackendsOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing DATABASE_URL error")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/bank")
	if _, err := Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("PORT", ":9000")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "4")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("CAPABILITY_TIMEOUT", "750ms")
	t.Setenv("BREAKER_MAX_FAILURES", "2")
	t.Setenv("BREAKER_OPEN_TIMEOUT", "1m")
	t.Setenv("VENDORS", "acme=acme.example:443")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":9000" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
	if cfg.ShutdownPeriod != 4*time.Second || cfg.IdempotencyTTL != 90*time.Minute {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.CapabilityTimeout != 750*time.Millisecond || cfg.BreakerMaxFailures != 2 || cfg.BreakerOpenTimeout != time.Minute {
		t.Fatalf("unexpected breaker settings: %+v", cfg)
	}
	if cfg.Vendors != "acme=acme.example:443" {
		t.Fatalf("unexpected vendors %q", cfg.Vendors)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("BREAKER_MAX_FAILURES", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero breaker failures")
	}

	t.Setenv("BREAKER_MAX_FAILURES", "")
	t.Setenv("CAPABILITY_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad duration")
	}
}
