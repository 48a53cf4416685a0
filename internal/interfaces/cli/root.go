// Package cli exposes the console routines as cobra commands.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appcatalog "github.com/masoud-shayan/northwind/internal/application/catalog"
	"github.com/masoud-shayan/northwind/internal/infrastructure/logger"
	"github.com/masoud-shayan/northwind/internal/interfaces/console"
)

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := executeContext(ctx, newRootCmd())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// reportedError is a routine failure the run adapter already logged.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// executeContext runs cmd and prints the failures no routine logged, such as
// unknown commands and bad flags, to the command's error stream.
func executeContext(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		cmd.PrintErrln("Error:", err)
		cmd.PrintErrf("Run '%s --help' for usage.\n", cmd.CommandPath())
	}
	return err
}

type routine func(ctx context.Context, r *console.Runner) error

type options struct {
	configDir string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "northwind",
		Short:         "Query and edit the Northwind catalog from the console",
		Long:          "Runs one catalog routine against the Northwind database. With no subcommand it prints every category with its products.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: opts.run(func(ctx context.Context, r *console.Runner) error {
			return r.GroupJoinCategoriesAndProducts(ctx)
		}),
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "", "directory containing northwind.toml (default: . and ./config)")

	cmd.AddCommand(
		queryCmds(opts)...,
	)
	cmd.AddCommand(
		addCmd(opts),
		increasePriceCmd(opts),
		deleteCmd(opts),
		peopleCmd(opts),
	)
	return cmd
}

// run adapts a routine to a cobra RunE: it opens a session, tags the run,
// and logs the routine's failure before returning it.
func (o *options) run(fn routine) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openSession(ctx, o.configDir)
		if err != nil {
			fallback, _ := logger.New(logger.DefaultConfig())
			fallback.Error("Failed to start", zap.Error(err))
			_ = logger.Sync(fallback)
			return reportedError{err}
		}
		defer func() {
			if err := s.close(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("Error closing session", zap.Error(err))
			}
		}()

		ctx, log := logger.NewRun(ctx, s.log)
		ctx, span := s.tracer.Tracer("northwind/cli").Start(ctx, cmd.Name())
		defer span.End()

		r := console.NewRunner(appcatalog.NewService(s.db.Factory(), appcatalog.WithMetrics(s.metrics)), s.people, cmd.InOrStdin(), cmd.OutOrStdout())
		if err := fn(ctx, r); err != nil {
			log.Error("Routine failed", zap.String("command", cmd.Name()), zap.Error(err))
			return reportedError{err}
		}
		log.Debug("Routine finished", zap.String("command", cmd.Name()))
		return nil
	}
}
