package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/di"
	"github.com/polkiloo/storefront/internal/worker"
)

// session bundles what a command needs from the running core graph.
type session struct {
	facade *app.StoreFacade
	cfg    *config.Config
	logger *slog.Logger
}

// withCore starts the core graph (storage and gateways, no HTTP server or
// background workers), runs fn and stops the graph again.
func withCore(ctx context.Context, fn func(session) error) error {
	cfg, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var s session
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		di.Core(fx.Replace(cfg)),
		fx.Populate(&s.facade, &s.cfg, &s.logger),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}
	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := fxApp.Stop(stopCtx); err != nil {
			s.logger.Error("stop failed", slog.Any("error", err))
		}
	}()

	return fn(s)
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <session_id>",
		Short: "Ensure a completed checkout session has its order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), func(s session) error {
				return runReconcile(cmd.Context(), cmd.OutOrStdout(), s.facade, args[0])
			})
		},
	}
}

func runReconcile(ctx context.Context, out io.Writer, facade worker.ReconcileFacade, sessionID string) error {
	orderID, err := facade.EnsureOrder(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", sessionID, err)
	}
	fmt.Fprintf(out, "session %s -> order %s\n", sessionID, orderID)
	return nil
}

func sweepCmd() *cobra.Command {
	var (
		lookback time.Duration
		batch    int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile every session completed within the lookback window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd.Context(), func(s session) error {
				if lookback <= 0 {
					lookback = s.cfg.SweepLookback
				}
				if batch <= 0 {
					batch = s.cfg.SweepBatchSize
				}
				sweeper := worker.NewSessionSweeper(s.facade, 0, lookback, batch, s.cfg.WorkerPoolSize, s.logger)
				return runSweep(cmd.Context(), cmd.OutOrStdout(), sweeper)
			})
		},
	}

	cmd.Flags().DurationVar(&lookback, "lookback", 0, "How far back to list completed sessions (default from SWEEP_LOOKBACK)")
	cmd.Flags().IntVar(&batch, "batch", 0, "Maximum sessions to inspect (default from SWEEP_BATCH_SIZE)")

	return cmd
}

type sweeper interface {
	SweepOnce(ctx context.Context) (worker.SweepReport, error)
}

func runSweep(ctx context.Context, out io.Writer, s sweeper) error {
	report, err := s.SweepOnce(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	fmt.Fprintf(out, "checked %d, reconciled %d, failed %d\n", report.Checked, report.Reconciled, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d sessions could not be reconciled", report.Failed)
	}
	return nil
}
