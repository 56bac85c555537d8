package main

import (
	"github.com/spf13/cobra"

	"DealVault/internal/recorder"
	"DealVault/internal/report"
)

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of events")
	historyCmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent saves and deletes",
	Long:  `Show recent saves and deletes, newest first. Requires history.sqlite_path.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.recorder.Recent(historyLimit)
	if err != nil {
		return err
	}
	if outputJSON {
		if events == nil {
			events = []recorder.Event{}
		}
		return writeJSON(cmd.OutOrStdout(), events)
	}
	return report.WriteHistory(cmd.OutOrStdout(), events)
}
