// pvsimd is a beamline/device process-variable simulator: a line-
// protocol TCP server that stands in for real EPICS-style beamline
// hardware during integration testing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coriolis-labs/pvsim/internal/infrastructure/config"
	"github.com/coriolis-labs/pvsim/internal/infrastructure/logging"
	"github.com/coriolis-labs/pvsim/internal/supervisor"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pvsimd",
		Short:         "Beamline process-variable simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCommand(), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pvsimd %s (commit %s, built %s)\n", version, commit, date)
			return nil
		},
	}
}

// serveFlags holds the serve command's flags. port, tickPeriod, and
// logLevel are nil unless the operator actually passed the
// corresponding flag, so a YAML file remains authoritative for
// anything not explicitly overridden on the command line — the same
// "only touch what was set" discipline as applyEnvOverrides.
type serveFlags struct {
	configPath string
	watch      bool
	port       *int
	tickPeriod *time.Duration
	logLevel   *string
}

func newServeCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the simulator server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.configPath, "config", defaultConfigPath, "path to config file")
	fs.BoolVar(&flags.watch, "watch-config", true, "hot-reload the log level when the config file changes")
	flags.port = fs.Int("port", 0, "override server.port")
	flags.tickPeriod = fs.Duration("tick-period", 0, "override simulation.tick_period_ms")
	flags.logLevel = fs.String("log-level", "", "override logging.level")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !fs.Changed("port") {
			flags.port = nil
		}
		if !fs.Changed("tick-period") {
			flags.tickPeriod = nil
		}
		if !fs.Changed("log-level") {
			flags.logLevel = nil
		}
		return nil
	}
	return cmd
}

// run is the serve command's actual logic, separated from RunE for
// testability the way graylogic's run(ctx) is separated from main.
func run(ctx context.Context, flags serveFlags) error {
	log := logging.Default()
	log.Info("starting pvsimd", "version", version, "commit", commit, "build_date", date)

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", flags.configPath)

	applyFlagOverrides(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration after flag overrides: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	watchPath := flags.configPath
	if !flags.watch {
		watchPath = ""
	}

	sup, err := supervisor.New(cfg, watchPath, log)
	if err != nil {
		return fmt.Errorf("building supervisor: %w", err)
	}
	if err := sup.Run(ctx); err != nil {
		return fmt.Errorf("running supervisor: %w", err)
	}
	return nil
}

// applyFlagOverrides layers explicitly-set serve flags on top of the
// loaded config.
func applyFlagOverrides(cfg *config.Config, flags serveFlags) {
	if flags.port != nil {
		cfg.Server.Port = *flags.port
	}
	if flags.tickPeriod != nil {
		cfg.Simulation.TickPeriodMS = int(flags.tickPeriod.Milliseconds())
	}
	if flags.logLevel != nil {
		cfg.Logging.Level = *flags.logLevel
	}
}
