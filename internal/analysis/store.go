// Package analysis implements the saved-analysis store: an ordered collection
// of analyses plus a selection, written through to a blob store after every
// change to the collection.
package analysis

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"DealVault/internal/blob"
	"DealVault/internal/metrics"
	"DealVault/internal/model"
)

// ErrNotInitialized is returned by mutations issued before Initialize.
var ErrNotInitialized = errors.New("analysis store not initialized")

// ChangeKind names a committed transition.
type ChangeKind string

const (
	ChangeInitialized ChangeKind = "INITIALIZED"
	ChangeSaved       ChangeKind = "SAVED"
	ChangeSelected    ChangeKind = "SELECTED"
	ChangeDeleted     ChangeKind = "DELETED"
)

// Change is delivered to subscribers after a transition. Analysis is the
// record that was saved or deleted; it is zero for other kinds.
type Change struct {
	Kind     ChangeKind
	Analysis model.SavedAnalysis
	State    State
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator for record ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Store owns the saved analyses. It is safe for concurrent use, but
// transitions are serialized: no reader ever sees a half-applied change.
type Store struct {
	blob    blob.Store
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
	writer  *writer

	mu    sync.RWMutex
	state State
	ready bool

	// notifyMu serializes transitions together with their deliveries so
	// subscribers see changes in order. Always taken before mu.
	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     map[uint64]func(Change)
	nextSub  uint64
}

// New returns an uninitialized store persisting through b.
func New(b blob.Store, opts ...Option) *Store {
	s := &Store{
		blob:  b,
		log:   zerolog.Nop(),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
		subs:  make(map[uint64]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.log = s.log.With().Str("component", "analysis_store").Logger()
	s.writer = newWriter(b, BlobKey, s.log, s.metrics)
	return s
}

// Open returns an initialized store.
func Open(b blob.Store, opts ...Option) *Store {
	s := New(b, opts...)
	s.Initialize()
	return s
}

// Initialize loads the persisted collection and makes the store ready. A
// missing, unreadable or corrupt payload yields an empty state; the failure
// is logged, never returned. Later calls return the current state without
// reading the blob store again.
func (s *Store) Initialize() State {
	s.notifyMu.Lock()
	s.mu.Lock()
	if s.ready {
		st := s.state.clone()
		s.mu.Unlock()
		s.notifyMu.Unlock()
		return st
	}
	s.state = reduce(s.state, setAnalysesAction{analyses: s.read()})
	s.ready = true
	s.metrics.AnalysesStored.Set(float64(len(s.state.Analyses)))
	s.log.Info().Int("analyses", len(s.state.Analyses)).Msg("analysis store ready")
	return s.commit(Change{Kind: ChangeInitialized})
}

func (s *Store) read() []model.SavedAnalysis {
	payload, ok, err := s.blob.Get(BlobKey)
	if err != nil {
		s.metrics.PayloadRecovered.Inc()
		s.log.Warn().Err(err).Msg("could not read persisted analyses, starting empty")
		return nil
	}
	if !ok {
		return nil
	}
	analyses, err := DecodePayload(payload)
	if err != nil {
		s.metrics.PayloadRecovered.Inc()
		s.log.Warn().Err(err).Msg("persisted analyses are corrupt, starting empty")
		return nil
	}
	return analyses
}

// Save creates a record from c, appends it, selects it and persists the
// collection. The returned record carries the store-assigned id, date and
// summary.
func (s *Store) Save(c model.Candidate) (model.SavedAnalysis, error) {
	c = c.Clone()
	// Empty metadata is not written, so it must read back as nil.
	if len(c.Metadata) == 0 {
		c.Metadata = nil
	}
	rec := model.SavedAnalysis{
		ID:       s.newID(),
		Date:     s.now().UTC().Truncate(time.Millisecond),
		Name:     c.Name,
		Metadata: c.Metadata,
		FormData: c.FormData,
		Results:  c.Results,
		Summary:  model.DeriveSummary(c.Results),
	}
	if err := s.dispatch(saveAction{analysis: rec}); err != nil {
		return model.SavedAnalysis{}, err
	}
	s.metrics.AnalysesSaved.Inc()
	return rec.Clone(), nil
}

// Load selects the record with id, or clears the selection when there is
// none. Selection is never persisted.
func (s *Store) Load(id string) error {
	return s.dispatch(loadAction{id: id})
}

// Delete removes the record with id and clears the selection if it pointed
// at it. Unknown ids are a no-op.
func (s *Store) Delete(id string) error {
	return s.dispatch(deleteAction{id: id})
}

// List returns the records oldest first.
func (s *Store) List() []model.SavedAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone().Analyses
}

// Selected returns the selected record.
func (s *Store) Selected() (model.SavedAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.Selected()
	if !ok {
		return model.SavedAnalysis{}, false
	}
	return a.Clone(), true
}

// Get looks a record up without touching the selection.
func (s *Store) Get(id string) (model.SavedAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.index(id); i >= 0 {
		return s.state.Analyses[i].Clone(), true
	}
	return model.SavedAnalysis{}, false
}

// State returns a snapshot of the whole state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn for every committed transition and returns a
// function that removes it. fn runs synchronously after the transition and
// must not mutate the store.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Flush waits until every change so far has been handed to the blob store.
func (s *Store) Flush() {
	s.writer.flush()
}

// Close flushes pending writes and stops the background writer. The store
// stays readable; later changes are kept in memory only.
func (s *Store) Close() error {
	s.writer.close()
	return nil
}

func (s *Store) dispatch(a action) error {
	s.notifyMu.Lock()
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		s.notifyMu.Unlock()
		return ErrNotInitialized
	}

	prev := s.state
	s.state = reduce(prev, a)

	change := Change{}
	switch a := a.(type) {
	case saveAction:
		change = Change{Kind: ChangeSaved, Analysis: a.analysis}
		s.log.Debug().Str("id", a.analysis.ID).Str("name", a.analysis.Name).Msg("analysis saved")
	case loadAction:
		change = Change{Kind: ChangeSelected}
		s.log.Debug().Str("id", a.id).Bool("found", s.state.SelectedID != "").Msg("analysis loaded")
	case deleteAction:
		i := prev.index(a.id)
		if i < 0 {
			s.mu.Unlock()
			s.notifyMu.Unlock()
			s.log.Debug().Str("id", a.id).Msg("delete of unknown analysis ignored")
			return nil
		}
		change = Change{Kind: ChangeDeleted, Analysis: prev.Analyses[i]}
		s.metrics.AnalysesDeleted.Inc()
		s.log.Debug().Str("id", a.id).Msg("analysis deleted")
	}

	if len(prev.Analyses) != len(s.state.Analyses) {
		s.persist()
	}
	s.commit(change)
	return nil
}

// persist hands the current collection to the writer. Called with mu held so
// payloads reach the writer in transition order.
func (s *Store) persist() {
	s.metrics.AnalysesStored.Set(float64(len(s.state.Analyses)))
	payload, err := EncodePayload(s.state.Analyses)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode analyses")
		return
	}
	s.writer.enqueue(payload)
}

// commit releases mu, delivers change to subscribers, then releases
// notifyMu. Must be called holding notifyMu and then mu for writing; that
// order lets subscribers read the store while the next transition waits.
func (s *Store) commit(change Change) State {
	snapshot := s.state.clone()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subMu.Lock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	change.State = snapshot
	for _, fn := range subs {
		fn(change.clone())
	}
	return snapshot
}

func (c Change) clone() Change {
	c.Analysis = c.Analysis.Clone()
	c.State = c.State.clone()
	return c
}
