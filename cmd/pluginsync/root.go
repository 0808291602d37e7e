package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pluginsync/internal/app"
	"pluginsync/internal/infra/process"
	"pluginsync/internal/infra/store"
)

type cliOptions struct {
	configPath string
	statePath  string
	logLevel   string
	restartCmd string
	jsonOutput bool
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		configPath: "pluginsync.yaml",
		logLevel:   "info",
		logger:     zap.NewNop(),
	}

	root := &cobra.Command{
		Use:           "pluginsync",
		Short:         "Reconcile installed plugins against a declarative configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.Version + " (" + app.Build + ")",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			applyRootFlagBindings(cmd, &opts)
			logger, err := newLogger(opts.logLevel)
			if err != nil {
				return exitError{code: exitInvalid, message: err.Error()}
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the desired-state file (yaml or toml)")
	root.PersistentFlags().StringVar(&opts.statePath, "state", "", "path to the local host state database (default "+store.ResolveDefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.restartCmd, "restart-command", "", "shell command run after staged upgrades are promoted")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")

	root.AddCommand(
		newApplyCmd(&opts),
		newPlanCmd(&opts),
		newValidateCmd(&opts),
		newWatchCmd(&opts),
		newInstalledCmd(&opts),
	)

	return root
}

func applyRootFlagBindings(cmd *cobra.Command, opts *cliOptions) {
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "config":
			opts.configPath, _ = flags.GetString("config")
		case "state":
			opts.statePath, _ = flags.GetString("state")
		case "log-level":
			opts.logLevel, _ = flags.GetString("log-level")
		case "restart-command":
			opts.restartCmd, _ = flags.GetString("restart-command")
		case "json":
			opts.jsonOutput, _ = flags.GetBool("json")
		}
	})
}

// newLogger builds a development logger for debug output and a production
// logger otherwise. Logs go to stderr so stdout stays parseable.
func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	cfg := zap.NewProductionConfig()
	if parsed == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func (o *cliOptions) appConfig() app.Config {
	cfg := app.Config{
		ConfigPath: o.configPath,
		StatePath:  o.statePath,
	}
	if strings.TrimSpace(o.restartCmd) != "" {
		cfg.Restarter = process.CommandRestarter(context.Background(), o.restartCmd, o.logger)
	}
	return cfg
}

func (o *cliOptions) initApplication(cfg app.Config) (*app.Application, func(), error) {
	return app.InitializeApplication(cfg, app.LoggingConfig{Logger: o.logger})
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
