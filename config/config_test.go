package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ClockBudget != 60*time.Second {
		t.Errorf("ClockBudget = %v, want 60s", cfg.ClockBudget)
	}
	if cfg.SweepInterval != time.Second {
		t.Errorf("SweepInterval = %v, want 1s", cfg.SweepInterval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GAME_CLOCK_SECONDS", "300")
	t.Setenv("SWEEP_INTERVAL_MS", "250")
	t.Setenv("DB_NAME", "duelgrid_test")

	cfg := Load()

	if cfg.ClockBudget != 5*time.Minute {
		t.Errorf("ClockBudget = %v, want 5m", cfg.ClockBudget)
	}
	if cfg.SweepInterval != 250*time.Millisecond {
		t.Errorf("SweepInterval = %v, want 250ms", cfg.SweepInterval)
	}
	if cfg.DBName != "duelgrid_test" {
		t.Errorf("DBName = %q", cfg.DBName)
	}
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("GAME_CLOCK_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.ClockBudget != 60*time.Second {
		t.Errorf("ClockBudget = %v, want default 60s", cfg.ClockBudget)
	}
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "games")

	want := "host=db.internal port=5433 user=svc password=pw dbname=games sslmode=disable"
	if got := Load().DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
