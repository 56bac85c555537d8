package recorder

import (
	"time"

	"github.com/rs/zerolog"

	"DealVault/internal/analysis"
	"DealVault/internal/model"
)

// Event kinds.
const (
	EventSaved   = "SAVED"
	EventDeleted = "DELETED"
)

// Event is one row of the analysis history.
type Event struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Kind       string    `json:"kind"`
	AnalysisID string    `json:"analysisId"`
	Name       string    `json:"name"`
	Valuation  float64   `json:"valuation"`
	IRR        float64   `json:"irr"`
	MOIC       float64   `json:"moic"`
}

// Recorder keeps an append-only history of saves and deletes.
type Recorder interface {
	RecordSaved(a model.SavedAnalysis) error
	RecordDeleted(a model.SavedAnalysis) error
	// Recent returns up to limit events, newest first.
	Recent(limit int) ([]Event, error)
	Close() error
}

// Track subscribes r to the store's saves and deletes. Recording failures
// are logged and never reach the store.
func Track(s *analysis.Store, r Recorder, log zerolog.Logger) (cancel func()) {
	log = log.With().Str("component", "recorder").Logger()
	return s.Subscribe(func(c analysis.Change) {
		var err error
		switch c.Kind {
		case analysis.ChangeSaved:
			err = r.RecordSaved(c.Analysis)
		case analysis.ChangeDeleted:
			err = r.RecordDeleted(c.Analysis)
		default:
			return
		}
		if err != nil {
			log.Error().Err(err).
				Str("kind", string(c.Kind)).
				Str("analysis_id", c.Analysis.ID).
				Msg("failed to record event")
		}
	})
}
