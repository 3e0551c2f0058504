package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/config"
	"github.com/Veraticus/kitty/internal/dashboard"
	"github.com/Veraticus/kitty/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func newAggregator(e *env) *dashboard.Aggregator {
	return dashboard.New(e.resolver,
		dashboard.WithLogger(e.logger),
		dashboard.WithMetrics(e.metrics),
		dashboard.WithEndpoints(e.cfg.Endpoints.Dashboard))
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your savings dashboard",
		Long: `Load your profile, groups, savings totals and, for groups you lead,
the loan requests awaiting your decision. Sources that cannot be loaded are
reported and the rest of the dashboard is still shown.`,
		Args: cobra.NoArgs,
		RunE: runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Dashboard")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	progress := cli.NewProgress(cmd.ErrOrStderr(), "Loading dashboard")
	snapshot := newAggregator(e).Aggregate(ctx, progress)
	progress.Finish()

	if handler.WasInterrupted() {
		return nil
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderDashboard(snapshot, time.Now()))
	return err
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the dashboard open and refresh it",
		Long: `Open an interactive dashboard. Press r to refresh and q to quit.
With --interval the dashboard also refreshes on its own.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().Duration("interval", 0, "automatic refresh interval (0 disables)")
	cmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address while watching")

	_ = viper.BindPFlag("watch.interval", cmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	// The alternate screen owns the terminal, so logs go to a file instead.
	logFile, err := redirectLogs(filepath.Join(config.Dir(), "watch.log"))
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	e, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	g, ctx := errgroup.WithContext(cmd.Context())
	viewCtx, stopView := context.WithCancel(ctx)
	defer stopView()

	if addr := e.cfg.MetricsAddr; addr != "" {
		g.Go(func() error {
			return e.metrics.Serve(viewCtx, addr)
		})
	}

	g.Go(func() error {
		defer stopView()
		return tui.Run(viewCtx, tui.Config{
			Aggregator: newAggregator(e),
			Logger:     e.logger,
			Interval:   viper.GetDuration("watch.interval"),
		})
	})

	return g.Wait()
}

func redirectLogs(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // path is under the config dir
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	handler, err := common.NewHandler(f, level, "text")
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	slog.SetDefault(slog.New(handler))
	return f, nil
}
