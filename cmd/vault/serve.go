package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"DealVault/internal/scheduler"
	"DealVault/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run scheduled backups",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	backup, err := newBackup(a)
	if err != nil {
		return err
	}
	sched := scheduler.NewScheduler(backup, log)
	if err := sched.RegisterBackup(a.cfg.Backup.Cron); err != nil {
		return err
	}
	sched.Start()

	srv := server.New(server.Config{
		Addr:        a.cfg.Server.Addr,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Log:         log,
		Store:       a.store,
		Recorder:    a.recorder,
	})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Info().Str("addr", a.cfg.Server.Addr).Msg("vault is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
	case err = <-errCh:
		log.Error().Err(err).Msg("HTTP server stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("HTTP shutdown")
	}
	sched.Stop(ctx)
	return err
}
