package main

import (
	"github.com/raykavin/reportview/internal/snapshot"
	"github.com/spf13/cobra"
)

// Snapshot command flags
var (
	snapshotOutput string
	snapshotRemote string
	snapshotWidth  int
	snapshotHeight int
)

func buildSnapshotCmd() *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot [url]",
		Short: "Save a screenshot of a served dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "report.png", "Output PNG file")
	snapshotCmd.Flags().StringVar(&snapshotRemote, "remote", "", "Devtools URL of a running browser (e.g. ws://localhost:9222)")
	snapshotCmd.Flags().IntVar(&snapshotWidth, "width", snapshot.DefaultWidth, "Viewport width")
	snapshotCmd.Flags().IntVar(&snapshotHeight, "height", snapshot.DefaultHeight, "Viewport height")

	return snapshotCmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	url := cfg.Server.URL()
	if len(args) > 0 {
		url = args[0]
	}

	return snapshot.Capture(cmd.Context(), log, snapshot.Options{
		URL:       url,
		Output:    snapshotOutput,
		Width:     snapshotWidth,
		Height:    snapshotHeight,
		RemoteURL: snapshotRemote,
	})
}
