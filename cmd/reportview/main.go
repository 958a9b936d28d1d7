package main

import (
	"fmt"
	"os"

	"github.com/raykavin/reportview/internal/config"
	"github.com/raykavin/reportview/pkg/history"
	"github.com/raykavin/reportview/pkg/logger"
	"github.com/raykavin/reportview/pkg/logger/logrus"
	"github.com/raykavin/reportview/pkg/logger/zerolog"
	"github.com/spf13/cobra"
)

// Global flags
var (
	configFile string
	envFiles   []string
	reportDir  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "reportview",
		Short:        "Backtesting report viewer",
		Version:      "1.0.0",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (e.g. ./reportview.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", []string{".env"}, "Env files loaded before the config")
	rootCmd.PersistentFlags().StringVarP(&reportDir, "dir", "d", "", "Report directory, overrides report.dir")

	rootCmd.AddCommand(buildServeCmd())
	rootCmd.AddCommand(buildInspectCmd())
	rootCmd.AddCommand(buildHistoryCmd())
	rootCmd.AddCommand(buildSnapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and the logger shared by every command
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile, envFiles...)
	if err != nil {
		return nil, nil, err
	}
	if reportDir != "" {
		cfg.Report.Dir = reportDir
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newLogger(cfg config.LogConfig) (logger.Logger, error) {
	switch cfg.Backend {
	case "logrus":
		return logrus.New(logrus.Options{Level: cfg.Level, JSON: cfg.JSON}), nil
	case "", "zerolog":
		return zerolog.New(zerolog.Options{
			Level:   cfg.Level,
			Colored: cfg.Colored,
			JSON:    cfg.JSON,
			File:    cfg.File,
		})
	default:
		return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}

func newScanner(cfg *config.Config, log logger.Logger) *history.Scanner {
	scanner := history.NewScanner(cfg.Report.RunsRoot, cfg.Report.Dir)
	scanner.HistoryDir = cfg.Report.HistoryDir
	scanner.Log = log
	return scanner
}
