package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"DealVault/internal/calculator"
	"DealVault/internal/model"
)

// Target describes the company being acquired. GrowthRate is an annual
// EBITDA growth percentage; NetDebt is subtracted from enterprise value.
type Target struct {
	LTMEbitda  float64 `json:"ltmEbitda"`
	GrowthRate float64 `json:"growthRate"`
	NetDebt    float64 `json:"netDebt"`
}

// Model limits. Term matches the financing form; the horizon caps how far
// out a schedule year may reach.
const (
	MaxTermYears = 30
	MaxHorizon   = 100
)

var (
	ErrNoEbitda   = errors.New("LTM EBITDA must be positive")
	ErrNoSchedule = errors.New("acquisition schedule is empty")
	ErrTerm       = fmt.Errorf("term years must be between 1 and %d", MaxTermYears)
	ErrHorizon    = fmt.Errorf("schedule years must be between 1 and %d", MaxHorizon)
)

// Engine computes AnalysisResults for one target.
type Engine struct {
	Target Target
}

// tranche is the debt drawn for one stage of the acquisition.
type tranche struct {
	drawn     int // period of the draw
	principal float64
}

// balance is the outstanding principal at the end of period t.
func (d tranche) balance(t, term int) float64 {
	paid := t - d.drawn
	if paid <= 0 {
		return d.principal
	}
	if paid >= term {
		return 0
	}
	return d.principal * float64(term-paid) / float64(term)
}

// service is the principal plus interest due in period t.
func (d tranche) service(t, term int, rate float64) float64 {
	if t <= d.drawn || t > d.drawn+term {
		return 0
	}
	opening := d.balance(t-1, term)
	return d.principal/float64(term) + opening*rate
}

// Compute runs the staged acquisition model:
//
//   - entry EV is LTM EBITDA times the multiple paid; equity value is EV less net debt
//   - schedule year y buys its percentage of the equity at period y-1, funded by
//     the cash/debt split; debt amortizes straight-line over the term
//   - each year the owned share of projected EBITDA is distributed, less debt service
//   - at the exit year, max(last schedule year, term), the owned share is sold at
//     the exit multiple and outstanding debt is repaid
func (e Engine) Compute(form model.AnalysisFormData) (model.AnalysisResult, error) {
	deal := form.DealStructure
	fin := form.FinancingDetails
	if e.Target.LTMEbitda <= 0 {
		return model.AnalysisResult{}, ErrNoEbitda
	}
	if len(deal.AcquisitionSchedule) == 0 {
		return model.AnalysisResult{}, ErrNoSchedule
	}
	if fin.TermYears < 1 || fin.TermYears > MaxTermYears {
		return model.AnalysisResult{}, fmt.Errorf("%w (got %d)", ErrTerm, fin.TermYears)
	}

	ev := e.Target.LTMEbitda * deal.MultiplePaid
	equity := ev - e.Target.NetDebt

	horizon := fin.TermYears
	for _, s := range deal.AcquisitionSchedule {
		if s.Year < 1 || s.Year > MaxHorizon {
			return model.AnalysisResult{}, fmt.Errorf("%w (got %d)", ErrHorizon, s.Year)
		}
		horizon = max(horizon, s.Year)
	}

	// Stakes bought per period, in schedule order.
	stake := make([]float64, horizon+1)
	for _, s := range deal.AcquisitionSchedule {
		stake[s.Year-1] += s.Percentage / 100
	}

	rate := fin.InterestRate / 100
	growth := e.Target.GrowthRate / 100
	flows := make([]float64, horizon+1)
	var debts []tranche
	owned := 0.0

	for t := 0; t <= horizon; t++ {
		if t > 0 {
			ebitda := e.Target.LTMEbitda * math.Pow(1+growth, float64(t))
			flows[t] += ebitda * owned
			for _, d := range debts {
				flows[t] -= d.service(t, fin.TermYears, rate)
			}
		}
		if stake[t] > 0 {
			price := equity * stake[t]
			flows[t] -= price * fin.CashComponent / 100
			debts = append(debts, tranche{drawn: t, principal: price * fin.DebtComponent / 100})
			owned += stake[t]
		}
	}

	exitEbitda := e.Target.LTMEbitda * math.Pow(1+growth, float64(horizon))
	exitEquity := (exitEbitda*deal.ExitMultiple - e.Target.NetDebt) * owned
	for _, d := range debts {
		exitEquity -= d.balance(horizon, fin.TermYears)
	}
	flows[horizon] += exitEquity

	irr, err := calculator.CalculateIRR(flows)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("irr: %w", err)
	}
	moic, err := calculator.CalculateMOIC(flows)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("moic: %w", err)
	}
	payback, recovered := calculator.CalculatePayback(flows)

	extra, err := extraFields(flows, horizon, exitEquity)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	return model.AnalysisResult{
		Valuation:       equity,
		EnterpriseValue: ev,
		LTMEbitda:       e.Target.LTMEbitda,
		ReturnMetrics: model.ReturnMetrics{
			IRR:  irr * 100,
			MOIC: moic,
			PaybackPeriod: model.PaybackPeriod{
				Years:         payback,
				BeyondHorizon: !recovered,
			},
			NPV: calculator.NPV(fin.DiscountRate/100, flows),
		},
		Extra: extra,
	}, nil
}

func extraFields(flows []float64, exitYear int, exitEquity float64) (map[string]json.RawMessage, error) {
	values := map[string]any{
		"cashFlows":  flows,
		"exitYear":   exitYear,
		"exitEquity": exitEquity,
	}
	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}
