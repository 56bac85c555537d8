package model

import (
	"bytes"
	"encoding/json"
)

// AnalysisResult is the output of the valuation engine. Only the fields the
// summary needs are typed; anything else the engine emits is kept in Extra
// and written back unchanged.
type AnalysisResult struct {
	Valuation       float64       `json:"valuation"`
	EnterpriseValue float64       `json:"enterpriseValue"`
	LTMEbitda       float64       `json:"ltmEbitda"`
	ReturnMetrics   ReturnMetrics `json:"returnMetrics"`

	Extra map[string]json.RawMessage `json:"-"`
}

// ReturnMetrics holds the investor return figures. IRR is a percentage.
type ReturnMetrics struct {
	IRR           float64       `json:"irr"`
	MOIC          float64       `json:"moic"`
	PaybackPeriod PaybackPeriod `json:"paybackPeriod"`
	NPV           float64       `json:"npv,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PaybackPeriod is the time until cumulative cash flow turns non-negative.
// BeyondHorizon is set when that never happens inside the modelled years;
// Years then equals the horizon.
type PaybackPeriod struct {
	Years         float64 `json:"years"`
	BeyondHorizon bool    `json:"beyondHorizon,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	resultFields        = []string{"valuation", "enterpriseValue", "ltmEbitda", "returnMetrics"}
	returnMetricsFields = []string{"irr", "moic", "paybackPeriod", "npv"}
	paybackFields       = []string{"years", "beyondHorizon"}
)

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type plain AnalysisResult
	known, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, r.Extra)
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	type plain AnalysisResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, resultFields)
	if err != nil {
		return err
	}
	*r = AnalysisResult(p)
	r.Extra = extra
	return nil
}

func (m ReturnMetrics) MarshalJSON() ([]byte, error) {
	type plain ReturnMetrics
	known, err := json.Marshal(plain(m))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, m.Extra)
}

func (m *ReturnMetrics) UnmarshalJSON(data []byte) error {
	type plain ReturnMetrics
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, returnMetricsFields)
	if err != nil {
		return err
	}
	*m = ReturnMetrics(p)
	m.Extra = extra
	return nil
}

func (p PaybackPeriod) MarshalJSON() ([]byte, error) {
	type plain PaybackPeriod
	known, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, p.Extra)
}

func (p *PaybackPeriod) UnmarshalJSON(data []byte) error {
	type plain PaybackPeriod
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraFields(data, paybackFields)
	if err != nil {
		return err
	}
	*p = PaybackPeriod(v)
	p.Extra = extra
	return nil
}

// Clone returns a deep copy of r.
func (r AnalysisResult) Clone() AnalysisResult {
	r.Extra = cloneExtra(r.Extra)
	r.ReturnMetrics.Extra = cloneExtra(r.ReturnMetrics.Extra)
	r.ReturnMetrics.PaybackPeriod.Extra = cloneExtra(r.ReturnMetrics.PaybackPeriod.Extra)
	return r
}

// extraFields returns the members of the JSON object in data that are not
// listed in known, or nil when there are none.
func extraFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(fields, k)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// mergeExtra adds extra members to the JSON object in known. Typed fields
// win over extras with the same name.
func mergeExtra(known []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return known, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
