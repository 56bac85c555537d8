package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"DealVault/internal/blob"
	"DealVault/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup of all analyses now",
	Long: `Write the saved analyses to the backup directory, then prune to the
configured number of backups. "vault serve" does this on the backup.cron schedule.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func newBackup(a *app) (*scheduler.Backup, error) {
	dest, err := blob.NewFileStore(a.cfg.Backup.Dir)
	if err != nil {
		return nil, err
	}
	return scheduler.NewBackup(a.store, dest, a.cfg.Backup.Keep, a.log), nil
}

func runBackup(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := newBackup(a)
	if err != nil {
		return err
	}
	path, err := b.Run()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
	return nil
}
