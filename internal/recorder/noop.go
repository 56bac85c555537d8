package recorder

import "DealVault/internal/model"

// NoopRecorder is used when no history database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSaved(_ model.SavedAnalysis) error   { return nil }
func (n *NoopRecorder) RecordDeleted(_ model.SavedAnalysis) error { return nil }
func (n *NoopRecorder) Recent(_ int) ([]Event, error)             { return nil, nil }
func (n *NoopRecorder) Close() error                              { return nil }
