package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.DB.Path != "/tmp/defter/base.db" {
		t.Fatalf("unexpected DB path %q", cfg.DB.Path)
	}
	if cfg.DB.BusyTimeout != 5*time.Second {
		t.Fatalf("expected default busy timeout 5s, got %v", cfg.DB.BusyTimeout)
	}
	if cfg.DB.MaxOpenConns != 1 {
		t.Fatalf("expected single-writer pool default, got %d", cfg.DB.MaxOpenConns)
	}
	if !cfg.Ledger.AllowOverpayment {
		t.Fatal("expected overpayment to default to permissive")
	}
	if cfg.Ledger.DefaultTaxPercent != 20 {
		t.Fatalf("expected default tax 20, got %d", cfg.Ledger.DefaultTaxPercent)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvDBPath); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvDBPath, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsNegativeTax(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("DEFTER_LEDGER_DEFAULT_TAX_PERCENT", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative default tax to return an error")
	}
}

func TestDSNCarriesPragmas(t *testing.T) {
	db := DBConfig{Path: "base.db", BusyTimeout: 2 * time.Second}
	dsn := db.DSN()

	if !strings.HasPrefix(dsn, "file:base.db?") {
		t.Fatalf("unexpected DSN prefix: %q", dsn)
	}
	if !strings.Contains(dsn, "_foreign_keys=on") {
		t.Fatalf("DSN must enable foreign keys: %q", dsn)
	}
	if !strings.Contains(dsn, "_busy_timeout=2000") {
		t.Fatalf("DSN must carry busy timeout: %q", dsn)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvDBPath, "/tmp/defter/base.db")
}
