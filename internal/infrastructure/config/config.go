// Package config loads and validates pvsimd's runtime configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for pvsimd.
// All configuration is loaded from YAML; selected fields can be overridden by
// environment variables (see applyEnvOverrides).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Admin      AdminConfig      `yaml:"admin"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig contains line-protocol TCP listener settings.
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Backlog         int    `yaml:"backlog"`
	MaxClients      int    `yaml:"max_clients"`
	CmdBufferSize   int    `yaml:"cmd_buffer_size"`
	ResponseBufSize int    `yaml:"response_buffer_size"`
	PVNameMax       int    `yaml:"pv_name_max"`
}

// SimulationConfig contains tick-loop and catalog settings.
type SimulationConfig struct {
	TickPeriodMS int    `yaml:"tick_period_ms"`
	MaxPVs       int    `yaml:"max_pvs"`
	CatalogFile  string `yaml:"catalog_file,omitempty"`
}

// AdminConfig contains the optional health/metrics HTTP listener settings.
// Setting Port to 0 disables the admin listener entirely.
type AdminConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: PVSIM_SECTION_KEY
// For example: PVSIM_SERVER_PORT, PVSIM_LOGGING_LEVEL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the constants from the original
// beamline simulator's compile-time configuration.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5064,
			Backlog:         10,
			MaxClients:      32,
			CmdBufferSize:   1024,
			ResponseBufSize: 4096,
			PVNameMax:       64,
		},
		Simulation: SimulationConfig{
			TickPeriodMS: 10,
			MaxPVs:       128,
		},
		Admin: AdminConfig{
			Host: "127.0.0.1",
			Port: 9464,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PVSIM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PVSIM_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PVSIM_SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("PVSIM_ADMIN_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Admin.Port = p
		}
	}
	if v := os.Getenv("PVSIM_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PVSIM_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Server.Backlog < 1 {
		errs = append(errs, "server.backlog must be at least 1")
	}
	if c.Server.MaxClients < 1 {
		errs = append(errs, "server.max_clients must be at least 1")
	}
	if c.Server.CmdBufferSize < 64 {
		errs = append(errs, "server.cmd_buffer_size must be at least 64")
	}
	if c.Server.ResponseBufSize < 64 {
		errs = append(errs, "server.response_buffer_size must be at least 64")
	}
	if c.Server.PVNameMax < 8 {
		errs = append(errs, "server.pv_name_max must be at least 8")
	}
	if c.Simulation.TickPeriodMS < 1 {
		errs = append(errs, "simulation.tick_period_ms must be at least 1")
	}
	if c.Simulation.MaxPVs < 1 {
		errs = append(errs, "simulation.max_pvs must be at least 1")
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		errs = append(errs, "admin.port must be between 0 and 65535 (0 disables the listener)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TickPeriod returns the simulation tick period as a Duration.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Simulation.TickPeriodMS) * time.Millisecond
}

// AdminEnabled reports whether the admin HTTP listener should start.
func (c *Config) AdminEnabled() bool {
	return c.Admin.Port != 0
}
