package main

import (
	"fmt"
	"os"

	"github.com/raykavin/reportview/internal/inspect"
	"github.com/spf13/cobra"
)

// History command flags
var (
	clearHistory bool
)

func buildHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List past backtesting runs",
		RunE:  runHistory,
	}

	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "Delete every past run except the current report")

	return historyCmd
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	scanner := newScanner(cfg, log)

	if clearHistory {
		result, err := scanner.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d history dirs and %d run reports\n", result.HistoryDirs, result.RunReports)
	}

	runs, err := scanner.Collect()
	if err != nil {
		return err
	}

	inspect.RenderHistory(os.Stdout, runs)
	return nil
}
