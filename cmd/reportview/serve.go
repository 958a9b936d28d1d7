package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raykavin/reportview/internal/config"
	"github.com/raykavin/reportview/pkg/chart/indicator"
	"github.com/raykavin/reportview/pkg/dashboard"
	"github.com/raykavin/reportview/pkg/history"
	"github.com/raykavin/reportview/pkg/storage"
	"github.com/spf13/cobra"
)

// Serve command flags
var (
	port int
)

func buildServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report dashboard",
		RunE:  runServe,
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port, overrides server.port")

	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	indicators, err := indicator.ParseAll(cfg.Chart.Indicators)
	if err != nil {
		return err
	}

	store, err := newStore(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	options := []dashboard.Option{
		dashboard.WithHost(cfg.Server.Host),
		dashboard.WithPort(cfg.Server.Port),
		dashboard.WithHeight(cfg.Chart.Height),
		dashboard.WithServeTimeout(cfg.Server.ServeTimeout),
		dashboard.WithIndicators(indicators...),
		dashboard.WithStorage(store),
		dashboard.WithWatcherOptions(
			history.WithSchedule(cfg.History.Schedule),
			history.WithBackoff(100*time.Millisecond, cfg.History.BackoffMax),
			history.WithMaxAttempts(cfg.History.MaxAttempts),
		),
	}
	if cfg.Server.Debug {
		options = append(options, dashboard.WithDebug())
	}

	d, err := dashboard.New(log, newScanner(cfg, log), options...)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return d.Start(ctx)
}

func newStore(cfg config.HistoryConfig) (storage.RunStorage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.FromMemory()
	case config.StorageBuntDB:
		return storage.FromFile(cfg.StoragePath)
	case config.StorageSQLite:
		return storage.FromSQLite(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown history storage %q", cfg.Storage)
	}
}
