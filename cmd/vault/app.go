package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"DealVault/internal/analysis"
	"DealVault/internal/blob"
	"DealVault/internal/config"
	"DealVault/internal/logging"
	"DealVault/internal/recorder"
)

// app is the wired set of components every command works with.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *analysis.Store
	recorder recorder.Recorder
	closers  []func() error
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config validation: %w", err)
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	return cfg, log, nil
}

func openApp() (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	b, err := a.openBlob()
	if err != nil {
		return nil, err
	}
	a.recorder = a.openRecorder()
	a.closers = append(a.closers, a.recorder.Close)

	a.store = analysis.Open(b, analysis.WithLogger(log))
	untrack := recorder.Track(a.store, a.recorder, log)
	// Store first so pending writes land before the recorder goes away.
	a.closers = append([]func() error{
		func() error { untrack(); return a.store.Close() },
	}, a.closers...)
	return a, nil
}

func (a *app) openBlob() (blob.Store, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := blob.NewSQLiteStore(a.cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.BackendMemory:
		a.log.Warn().Msg("memory storage: analyses are lost on exit")
		return blob.NewMemoryStore(), nil
	default:
		s, err := blob.NewFileStore(a.cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, nil
	}
}

func (a *app) openRecorder() recorder.Recorder {
	if a.cfg.History.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	r, err := recorder.NewSQLiteRecorder(a.cfg.History.SQLitePath, a.log)
	if err != nil {
		a.log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return r
}

// Close flushes the store and releases everything in order.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// readJSON decodes a file, or stdin when path is "-".
func readJSON(path string, v any) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
