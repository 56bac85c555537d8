package model

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ScheduleTolerance is how far a schedule total may drift from 100%.
const ScheduleTolerance = 0.01

var discountFactor = decimal.NewFromFloat(1.3)

// DeriveSummary flattens a result into its list-view summary.
func DeriveSummary(r AnalysisResult) AnalysisSummary {
	return AnalysisSummary{
		Valuation:       r.Valuation,
		EnterpriseValue: r.EnterpriseValue,
		LTMEbitda:       r.LTMEbitda,
		IRR:             r.ReturnMetrics.IRR,
		MOIC:            r.ReturnMetrics.MOIC,
		PaybackPeriod:   r.ReturnMetrics.PaybackPeriod.Years,
	}
}

// ScheduleTotal sums the acquisition percentages.
func ScheduleTotal(schedule []ScheduleEntry) float64 {
	total := 0.0
	for _, e := range schedule {
		total += e.Percentage
	}
	return total
}

// ScheduleBalanced reports whether the schedule adds up to 100%.
func ScheduleBalanced(schedule []ScheduleEntry) bool {
	return math.Abs(ScheduleTotal(schedule)-100) < ScheduleTolerance
}

// DeriveDiscountRate returns 130% of the interest rate rounded to one decimal.
// The multiplication is done in decimal so 12.0 gives 15.6, not 15.600000000000001.
func DeriveDiscountRate(interestRate float64) float64 {
	if math.IsNaN(interestRate) || math.IsInf(interestRate, 0) {
		return interestRate
	}
	return decimal.NewFromFloat(interestRate).Mul(discountFactor).Round(1).InexactFloat64()
}

// Advisory is a soft validation finding on form input. The store accepts
// input with advisories; forms surface them to the user.
type Advisory struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (a Advisory) String() string {
	return a.Field + ": " + a.Message
}

// Check returns the advisories for form input, or nil when there are none.
func Check(form AnalysisFormData) []Advisory {
	var out []Advisory
	add := func(field, format string, args ...any) {
		out = append(out, Advisory{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	schedule := form.DealStructure.AcquisitionSchedule
	if len(schedule) == 0 {
		add("dealStructure.acquisitionSchedule", "schedule is empty")
	} else if !ScheduleBalanced(schedule) {
		add("dealStructure.acquisitionSchedule", "total must equal 100%% (got %.1f%%)", ScheduleTotal(schedule))
	}
	for i, e := range schedule {
		if e.Year < 1 {
			add(fmt.Sprintf("dealStructure.acquisitionSchedule[%d].year", i), "year must be at least 1")
		}
		if i > 0 && e.Year <= schedule[i-1].Year {
			add(fmt.Sprintf("dealStructure.acquisitionSchedule[%d].year", i), "years must be ascending")
		}
		if e.Percentage < 0 || e.Percentage > 100 {
			add(fmt.Sprintf("dealStructure.acquisitionSchedule[%d].percentage", i), "must be between 0 and 100")
		}
	}

	fd := form.FinancingDetails
	if math.Abs(fd.CashComponent+fd.DebtComponent-100) >= ScheduleTolerance {
		add("financingDetails", "cash and debt components must add up to 100%% (got %.1f%%)", fd.CashComponent+fd.DebtComponent)
	}
	percentages := []struct {
		field string
		value float64
	}{
		{"financingDetails.cashComponent", fd.CashComponent},
		{"financingDetails.debtComponent", fd.DebtComponent},
		{"financingDetails.interestRate", fd.InterestRate},
		{"financingDetails.discountRate", fd.DiscountRate},
	}
	for _, p := range percentages {
		if p.value < 0 || p.value > 100 {
			add(p.field, "must be between 0 and 100")
		}
	}
	if fd.TermYears < 1 || fd.TermYears > 30 {
		add("financingDetails.termYears", "must be between 1 and 30")
	}
	return out
}
