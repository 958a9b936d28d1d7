package main

import (
	"os"

	"github.com/raykavin/reportview/internal/inspect"
	"github.com/raykavin/reportview/pkg/chart/indicator"
	"github.com/raykavin/reportview/pkg/report"
	"github.com/spf13/cobra"
)

func buildInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Print how a report composes into chart panes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}
}

func runInspect(_ *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	dir := cfg.Report.Dir
	if len(args) > 0 {
		dir = args[0]
	}

	bundle, err := report.LoadDir(dir)
	if err != nil {
		return err
	}

	indicators, err := indicator.ParseAll(cfg.Chart.Indicators)
	if err != nil {
		return err
	}

	summary, err := inspect.Summarize(bundle, inspect.Options{
		Height:     cfg.Chart.Height,
		Indicators: indicators,
		Progress:   os.Stderr,
	})
	if err != nil {
		return err
	}

	return inspect.Render(os.Stdout, summary)
}
