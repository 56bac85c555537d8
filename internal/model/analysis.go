package model

import "time"

// AnalysisSummary is the flattened projection of a result shown in list views.
type AnalysisSummary struct {
	Valuation       float64 `json:"valuation"`
	EnterpriseValue float64 `json:"enterpriseValue"`
	LTMEbitda       float64 `json:"ltmEbitda"`
	IRR             float64 `json:"irr"`
	MOIC            float64 `json:"moic"`
	PaybackPeriod   float64 `json:"paybackPeriod"`
}

// Candidate is what a caller hands to the store to create a record.
type Candidate struct {
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
	FormData AnalysisFormData  `json:"formData"`
	Results  AnalysisResult    `json:"results"`
}

// SavedAnalysis is a persisted, immutable analysis record. ID and Date are
// assigned by the store.
type SavedAnalysis struct {
	ID       string            `json:"id"`
	Date     time.Time         `json:"date"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
	FormData AnalysisFormData  `json:"formData"`
	Results  AnalysisResult    `json:"results"`
	Summary  AnalysisSummary   `json:"summary"`
}

// Clone returns a deep copy of c.
func (c Candidate) Clone() Candidate {
	c.Metadata = cloneMetadata(c.Metadata)
	c.FormData = c.FormData.Clone()
	c.Results = c.Results.Clone()
	return c
}

// Clone returns a deep copy of a.
func (a SavedAnalysis) Clone() SavedAnalysis {
	a.Metadata = cloneMetadata(a.Metadata)
	a.FormData = a.FormData.Clone()
	a.Results = a.Results.Clone()
	return a
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
