package model

// ScheduleEntry is one year of a staged acquisition.
type ScheduleEntry struct {
	Year       int     `json:"year"`
	Percentage float64 `json:"percentage"`
}

// DealStructure holds the acquisition terms.
type DealStructure struct {
	MultiplePaid        float64         `json:"multiplePaid"`
	ExitMultiple        float64         `json:"exitMultiple"`
	AcquisitionSchedule []ScheduleEntry `json:"acquisitionSchedule"`
}

// FinancingDetails holds the capital structure of the deal. All rates and
// components are percentages.
type FinancingDetails struct {
	CashComponent float64 `json:"cashComponent"`
	DebtComponent float64 `json:"debtComponent"`
	InterestRate  float64 `json:"interestRate"`
	TermYears     int     `json:"termYears"`
	DiscountRate  float64 `json:"discountRate"`
}

// AnalysisFormData is the complete input to the valuation engine.
type AnalysisFormData struct {
	DealStructure    DealStructure    `json:"dealStructure"`
	FinancingDetails FinancingDetails `json:"financingDetails"`
}

// WithCashComponent sets the cash share and recomputes debt as its complement.
func (f FinancingDetails) WithCashComponent(cash float64) FinancingDetails {
	f.CashComponent = cash
	f.DebtComponent = 100 - cash
	return f
}

// WithDebtComponent sets the debt share and recomputes cash as its complement.
func (f FinancingDetails) WithDebtComponent(debt float64) FinancingDetails {
	f.DebtComponent = debt
	f.CashComponent = 100 - debt
	return f
}

// WithInterestRate sets the interest rate and re-derives the discount rate,
// overwriting any earlier manual discount rate.
func (f FinancingDetails) WithInterestRate(rate float64) FinancingDetails {
	f.InterestRate = rate
	f.DiscountRate = DeriveDiscountRate(rate)
	return f
}

// WithDiscountRate overrides the discount rate until the next interest rate edit.
func (f FinancingDetails) WithDiscountRate(rate float64) FinancingDetails {
	f.DiscountRate = rate
	return f
}

func (f FinancingDetails) WithTermYears(years int) FinancingDetails {
	f.TermYears = years
	return f
}

// Clone returns a copy that shares no slices with d.
func (d AnalysisFormData) Clone() AnalysisFormData {
	if d.DealStructure.AcquisitionSchedule != nil {
		schedule := make([]ScheduleEntry, len(d.DealStructure.AcquisitionSchedule))
		copy(schedule, d.DealStructure.AcquisitionSchedule)
		d.DealStructure.AcquisitionSchedule = schedule
	}
	return d
}
