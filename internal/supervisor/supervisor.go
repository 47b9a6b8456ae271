// Package supervisor wires config, logging, the device registry, the
// line-protocol server, and the admin HTTP surface together and runs
// them as a unit until the process is asked to stop.
package supervisor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coriolis-labs/pvsim/internal/admin"
	"github.com/coriolis-labs/pvsim/internal/infrastructure/config"
	"github.com/coriolis-labs/pvsim/internal/infrastructure/logging"
	"github.com/coriolis-labs/pvsim/internal/registry"
	"github.com/coriolis-labs/pvsim/internal/server"
)

// Supervisor owns the simulator's top-level lifecycle: one tick
// scheduler driving the registry, one TCP server, and an optional
// admin HTTP listener, run together under a single errgroup the way
// the teacher's graph processor runs its DataManager/IndexManager
// goroutines under one.
type Supervisor struct {
	cfg        *config.Config
	configPath string
	logger     *logging.Logger

	reg *registry.Registry
	srv *server.Server
	adm *admin.Server
}

// New builds a Supervisor from a loaded configuration. The registry's
// fixed catalog is loaded immediately, so the only way New fails is a
// misconfigured simulation.max_pvs too small to hold it. configPath is
// retained so Run can watch it for hot-reloadable edits; pass "" to
// disable watching.
func New(cfg *config.Config, configPath string, logger *logging.Logger) (*Supervisor, error) {
	reg := registry.New(cfg.Simulation.MaxPVs, rand.New(rand.NewSource(time.Now().UnixNano())))
	reg.SetLogger(logger)
	if err := reg.LoadFixedCatalog(); err != nil {
		return nil, fmt.Errorf("load device catalog: %w", err)
	}

	srv := server.New(server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		MaxClients:      cfg.Server.MaxClients,
		CmdBufferSize:   cfg.Server.CmdBufferSize,
		ResponseBufSize: cfg.Server.ResponseBufSize,
	}, reg)
	srv.SetLogger(logger)

	var adm *admin.Server
	if cfg.AdminEnabled() {
		adm = admin.New(admin.Config{Host: cfg.Admin.Host, Port: cfg.Admin.Port}, srv)
		adm.SetLogger(logger)
		srv.SetRecorder(adm.Recorder())
	}

	return &Supervisor{cfg: cfg, configPath: configPath, logger: logger, reg: reg, srv: srv, adm: adm}, nil
}

// Run starts the tick scheduler, the TCP server, and (if configured)
// the admin listener, and blocks until ctx is cancelled or one of them
// fails. It mirrors the original's main loop in spirit — a fixed tick
// period driving devices_update — but replaces the busy-sleep poll
// with a time.Ticker and delegates command handling to the server's
// own goroutines instead of a single select() loop.
func (s *Supervisor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.srv.Run(gctx)
	})

	g.Go(func() error {
		s.runTicker(gctx)
		return nil
	})

	if s.adm != nil {
		g.Go(func() error {
			return s.adm.Run(gctx)
		})
	}

	if s.configPath != "" {
		g.Go(func() error {
			return config.NewWatcher(s.configPath).Watch(gctx, s.applyReload)
		})
	}

	s.logger.Info("pvsimd started",
		"addr", fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		"admin_enabled", s.cfg.AdminEnabled(),
	)

	err := g.Wait()
	s.logger.Info("pvsimd stopped")
	return err
}

// applyReload hot-applies the subset of a reloaded configuration that's
// safe to change without a restart: the log level only. Server.*,
// Simulation.*, and Admin.Port changes require relaunching pvsimd, so
// they're logged and otherwise ignored — the listeners are already
// bound and the registry's catalog is already loaded.
func (s *Supervisor) applyReload(cfg *config.Config, err error) {
	if err != nil {
		s.logger.Warn("config reload failed, keeping previous configuration", "error", err)
		return
	}

	if cfg.Logging.Level != s.cfg.Logging.Level {
		s.logger.Info("applying hot-reloaded log level", "level", cfg.Logging.Level)
		s.logger.SetLevel(cfg.Logging.Level)
		s.cfg.Logging.Level = cfg.Logging.Level
	}

	if cfg.Server != s.cfg.Server || cfg.Simulation != s.cfg.Simulation || cfg.Admin.Port != s.cfg.Admin.Port {
		s.logger.Warn("config file changed fields that require a restart to take effect, ignoring")
	}
}

// runTicker drives the registry's simulation clock using the actual
// elapsed wall-clock time between fires, the same dt-from-monotonic-
// clock discipline as main.c's devices_update(dt) call, translated
// from a busy poll loop to a time.Ticker.
func (s *Supervisor) runTicker(ctx context.Context) {
	period := s.cfg.TickPeriod()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.srv.Tick(dt)
		}
	}
}
