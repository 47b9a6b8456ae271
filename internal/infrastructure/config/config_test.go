package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "0.0.0.0"
  port: 6000
  max_clients: 16
simulation:
  tick_period_ms: 20
logging:
  level: "debug"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d, want 6000", cfg.Server.Port)
	}
	if cfg.Server.MaxClients != 16 {
		t.Errorf("Server.MaxClients = %d, want 16", cfg.Server.MaxClients)
	}
	// Unset fields keep their default.
	if cfg.Server.Backlog != 10 {
		t.Errorf("Server.Backlog = %d, want default 10", cfg.Server.Backlog)
	}
	if cfg.Simulation.TickPeriodMS != 20 {
		t.Errorf("Simulation.TickPeriodMS = %d, want 20", cfg.Simulation.TickPeriodMS)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
server:
  port: 70000
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for out-of-range port, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		c := defaultConfig()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero backlog", mutate: func(c *Config) { c.Server.Backlog = 0 }, wantErr: true},
		{name: "zero max clients", mutate: func(c *Config) { c.Server.MaxClients = 0 }, wantErr: true},
		{name: "tiny cmd buffer", mutate: func(c *Config) { c.Server.CmdBufferSize = 1 }, wantErr: true},
		{name: "zero tick period", mutate: func(c *Config) { c.Simulation.TickPeriodMS = 0 }, wantErr: true},
		{name: "negative admin port", mutate: func(c *Config) { c.Admin.Port = -1 }, wantErr: true},
		{name: "admin disabled is valid", mutate: func(c *Config) { c.Admin.Port = 0 }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_TickPeriod(t *testing.T) {
	cfg := &Config{Simulation: SimulationConfig{TickPeriodMS: 10}}
	if got := cfg.TickPeriod().Milliseconds(); got != 10 {
		t.Errorf("TickPeriod() = %dms, want 10ms", got)
	}
}

func TestConfig_AdminEnabled(t *testing.T) {
	cfg := &Config{Admin: AdminConfig{Port: 9464}}
	if !cfg.AdminEnabled() {
		t.Error("AdminEnabled() = false, want true for non-zero port")
	}
	cfg.Admin.Port = 0
	if cfg.AdminEnabled() {
		t.Error("AdminEnabled() = true, want false for port 0")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("PVSIM_SERVER_HOST", "127.0.0.1")
	t.Setenv("PVSIM_SERVER_PORT", "6064")
	t.Setenv("PVSIM_ADMIN_PORT", "9999")
	t.Setenv("PVSIM_LOGGING_LEVEL", "debug")
	t.Setenv("PVSIM_LOGGING_FORMAT", "text")

	applyEnvOverrides(cfg)

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 6064 {
		t.Errorf("Server.Port = %d, want 6064", cfg.Server.Port)
	}
	if cfg.Admin.Port != 9999 {
		t.Errorf("Admin.Port = %d, want 9999", cfg.Admin.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 5064 {
		t.Errorf("defaultConfig Server.Port = %d, want 5064", cfg.Server.Port)
	}
	if cfg.Server.MaxClients != 32 {
		t.Errorf("defaultConfig Server.MaxClients = %d, want 32", cfg.Server.MaxClients)
	}
	if cfg.Simulation.TickPeriodMS != 10 {
		t.Errorf("defaultConfig Simulation.TickPeriodMS = %d, want 10", cfg.Simulation.TickPeriodMS)
	}
	if cfg.Simulation.MaxPVs != 128 {
		t.Errorf("defaultConfig Simulation.MaxPVs = %d, want 128", cfg.Simulation.MaxPVs)
	}
}
