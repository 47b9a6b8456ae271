package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coriolis-labs/pvsim/internal/infrastructure/config"
)

// TestRun_InvalidConfigPath verifies run fails with a missing config file.
func TestRun_InvalidConfigPath(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx, serveFlags{configPath: "/nonexistent/path/config.yaml"}); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidConfigContents verifies run fails when the file fails
// validation (port out of range).
func TestRun_InvalidConfigContents(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 0
  backlog: 10
  max_clients: 32
  cmd_buffer_size: 1024
  response_buffer_size: 4096
  pv_name_max: 64
simulation:
  tick_period_ms: 10
  max_pvs: 128
admin:
  host: "127.0.0.1"
  port: 0
logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx, serveFlags{configPath: configPath}); err == nil {
		t.Fatal("run() should fail with invalid port")
	}
}

// TestRun_StartupAndCancel verifies a valid config starts the
// supervisor and a context cancellation stops it cleanly.
func TestRun_StartupAndCancel(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 18972
  backlog: 10
  max_clients: 4
  cmd_buffer_size: 1024
  response_buffer_size: 4096
  pv_name_max: 64
simulation:
  tick_period_ms: 10
  max_pvs: 32
admin:
  host: "127.0.0.1"
  port: 0
logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := run(ctx, serveFlags{configPath: configPath}); err != nil {
		t.Errorf("run() returned unexpected error: %v", err)
	}
}

// TestApplyFlagOverrides_OnlyTouchesSetFields verifies unset flags
// leave the loaded config alone and set flags replace it.
func TestApplyFlagOverrides_OnlyTouchesSetFields(t *testing.T) {
	cfg := &config.Config{
		Server:     config.ServerConfig{Port: 5064},
		Simulation: config.SimulationConfig{TickPeriodMS: 10},
		Logging:    config.LoggingConfig{Level: "info"},
	}

	applyFlagOverrides(cfg, serveFlags{})
	if cfg.Server.Port != 5064 || cfg.Simulation.TickPeriodMS != 10 || cfg.Logging.Level != "info" {
		t.Fatalf("unset flags changed config: %+v", cfg)
	}

	port := 6064
	tick := 25 * time.Millisecond
	level := "debug"
	applyFlagOverrides(cfg, serveFlags{port: &port, tickPeriod: &tick, logLevel: &level})
	if cfg.Server.Port != 6064 {
		t.Errorf("Server.Port = %d, want 6064", cfg.Server.Port)
	}
	if cfg.Simulation.TickPeriodMS != 25 {
		t.Errorf("Simulation.TickPeriodMS = %d, want 25", cfg.Simulation.TickPeriodMS)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

// TestRun_PortFlagOverridesConfig verifies a --port flag takes effect
// even though the config file specifies a different port.
func TestRun_PortFlagOverridesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 18980
  backlog: 10
  max_clients: 4
  cmd_buffer_size: 1024
  response_buffer_size: 4096
  pv_name_max: 64
simulation:
  tick_period_ms: 10
  max_pvs: 32
admin:
  host: "127.0.0.1"
  port: 0
logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	overridePort := 18981
	if err := run(ctx, serveFlags{configPath: configPath, port: &overridePort}); err != nil {
		t.Errorf("run() returned unexpected error: %v", err)
	}
}
