package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"DealVault/internal/model"
)

// SQLiteRecorder persists the history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:  db,
		log: log.With().Str("component", "recorder").Logger(),
		now: time.Now,
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			analysis_id TEXT NOT NULL,
			name        TEXT,
			valuation   REAL,
			irr         REAL,
			moic        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON analysis_events(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSaved(a model.SavedAnalysis) error {
	return r.insert(EventSaved, a)
}

func (r *SQLiteRecorder) RecordDeleted(a model.SavedAnalysis) error {
	return r.insert(EventDeleted, a)
}

func (r *SQLiteRecorder) insert(kind string, a model.SavedAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analysis_events
		(timestamp, kind, analysis_id, name, valuation, irr, moic)
		VALUES (?,?,?,?,?,?,?)`,
		r.now().UnixMilli(), kind, a.ID, a.Name,
		a.Summary.Valuation, a.Summary.IRR, a.Summary.MOIC,
	)
	return err
}

func (r *SQLiteRecorder) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, kind, analysis_id, name, valuation, irr, moic
		FROM analysis_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.AnalysisID, &e.Name, &e.Valuation, &e.IRR, &e.MOIC); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
