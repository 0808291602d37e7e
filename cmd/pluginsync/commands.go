package main

import (
	"errors"

	"github.com/spf13/cobra"

	"pluginsync/internal/app"
	"pluginsync/internal/app/reconcile"
	"pluginsync/internal/domain"
	"pluginsync/internal/infra/telemetry"
)

func newApplyCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Run one reconciliation pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application, cleanup, err := opts.initApplication(opts.appConfig())
			if err != nil {
				return err
			}
			defer cleanup()

			result, runErr := application.Apply(ctx)
			if err := printRunResult(result, opts.jsonOutput); err != nil {
				return err
			}
			if runErr != nil {
				return exitError{code: exitCodeFor(runErr), message: runErr.Error()}
			}
			if result.Restarted {
				return exitSilent(exitRestarted)
			}
			return nil
		},
	}
}

func newPlanCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the plugins apply would install without changing anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, cleanup, err := opts.initApplication(opts.appConfig())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := application.Plan(cmd.Context())
			if err != nil {
				return exitError{code: exitCodeFor(err), message: err.Error()}
			}
			return printRunResult(result, opts.jsonOutput)
		},
	}
}

func newValidateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without touching the host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prepared, err := app.ValidateConfig(cmd.Context(), opts.configPath, opts.logger)
			if err != nil {
				return exitError{code: exitInvalid, message: err.Error()}
			}
			return printPrepared(prepared, opts.jsonOutput)
		},
	}
}

func newWatchCmd(opts *cliOptions) *cobra.Command {
	metricsAddr := telemetry.DefaultListenAddress
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile on start and whenever the configuration changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			cfg := opts.appConfig()
			cfg.MetricsAddr = metricsAddr
			application, cleanup, err := opts.initApplication(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return application.Watch(ctx, func(result reconcile.RunResult, err error) {
				_ = printRunResult(result, opts.jsonOutput)
			})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", metricsAddr, "listen address for /metrics and /healthz")
	return cmd
}

func newInstalledCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "installed",
		Short: "List installed plugins and upgrades waiting for a restart",
		RunE: func(_ *cobra.Command, _ []string) error {
			application, cleanup, err := opts.initApplication(opts.appConfig())
			if err != nil {
				return err
			}
			defer cleanup()

			installed, pending, err := application.Installed()
			if err != nil {
				return err
			}
			return printInstalled(installed, pending, opts.jsonOutput)
		},
	}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfigurationMalformed),
		errors.Is(err, domain.ErrInvalidVersionFormat),
		errors.Is(err, domain.ErrDuplicateIdentifier):
		return exitInvalid
	default:
		return exitFailure
	}
}
