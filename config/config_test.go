package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "CORS_ALLOWED_ORIGIN",
		"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE",
		"REDIS_ADDR", "REDIS_PASSWORD",
		"SIMULATION_START_DELAY", "SIMULATION_TICK_INTERVAL", "SIMULATION_FRAME_DELAY",
		"SIMULATION_MAX_FRAME_TICKS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.Neo4jURI != "bolt://localhost:7687" {
		t.Errorf("Neo4jURI = %s", cfg.Neo4jURI)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %s", cfg.RedisAddr)
	}
	if cfg.SimulationStartDelay != 3*time.Second {
		t.Errorf("SimulationStartDelay = %s, want 3s", cfg.SimulationStartDelay)
	}
	if cfg.SimulationTickEvery != 3*time.Second {
		t.Errorf("SimulationTickEvery = %s, want 3s", cfg.SimulationTickEvery)
	}
	if cfg.SimulationFrameDelay != 5*time.Second {
		t.Errorf("SimulationFrameDelay = %s, want 5s", cfg.SimulationFrameDelay)
	}
	if cfg.SimulationMaxFrameTicks != 500 {
		t.Errorf("SimulationMaxFrameTicks = %d, want 500", cfg.SimulationMaxFrameTicks)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SIMULATION_TICK_INTERVAL", "250ms")
	t.Setenv("SIMULATION_MAX_FRAME_TICKS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.SimulationTickEvery != 250*time.Millisecond {
		t.Errorf("SimulationTickEvery = %s, want 250ms", cfg.SimulationTickEvery)
	}
	if cfg.SimulationMaxFrameTicks != 50 {
		t.Errorf("SimulationMaxFrameTicks = %d, want 50", cfg.SimulationMaxFrameTicks)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "SERVER_PORT", "not-a-port"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad duration", "SIMULATION_FRAME_DELAY", "five seconds"},
		{"negative duration", "SIMULATION_TICK_INTERVAL", "-1s"},
		{"zero tick limit", "SIMULATION_MAX_FRAME_TICKS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
