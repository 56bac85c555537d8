package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"DealVault/internal/model"
)

// BlobKey is the key the full collection is persisted under.
const BlobKey = "savedAnalyses"

// ErrCorruptPayload is returned when a persisted payload is not a JSON array
// of saved analyses.
var ErrCorruptPayload = errors.New("corrupt analyses payload")

// EncodePayload serializes the collection as a bare JSON array. An empty
// collection encodes as [] rather than null.
func EncodePayload(analyses []model.SavedAnalysis) (string, error) {
	if analyses == nil {
		analyses = []model.SavedAnalysis{}
	}
	data, err := json.Marshal(analyses)
	if err != nil {
		return "", fmt.Errorf("encode analyses: %w", err)
	}
	return string(data), nil
}

// DecodePayload parses a persisted payload. Every record must carry a UUID
// id and a timestamp; anything else makes the whole payload corrupt.
func DecodePayload(payload string) ([]model.SavedAnalysis, error) {
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: not a JSON array", ErrCorruptPayload)
	}

	var analyses []model.SavedAnalysis
	if err := json.Unmarshal(trimmed, &analyses); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	seen := make(map[string]bool, len(analyses))
	for i, a := range analyses {
		if _, err := uuid.Parse(a.ID); err != nil {
			return nil, fmt.Errorf("%w: record %d has invalid id %q", ErrCorruptPayload, i, a.ID)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCorruptPayload, a.ID)
		}
		seen[a.ID] = true
		if a.Date.IsZero() {
			return nil, fmt.Errorf("%w: record %s has no date", ErrCorruptPayload, a.ID)
		}
	}
	return analyses, nil
}
