package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"DealVault/internal/model"
	"DealVault/internal/recorder"
)

const dateLayout = "2006-01-02 15:04"

// WriteList prints one row per analysis, marking the selected one.
func WriteList(w io.Writer, analyses []model.SavedAnalysis, selectedID string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tDATE\tVALUATION\tIRR\tMOIC\tPAYBACK")
	for _, a := range analyses {
		mark := ""
		if a.ID == selectedID {
			mark = "*"
		}
		s := a.Summary
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2fx\t%s\n",
			mark, a.ID, a.Name, a.Date.Format(dateLayout),
			money(s.Valuation), percent(s.IRR), s.MOIC, years(s.PaybackPeriod))
	}
	return tw.Flush()
}

// FormatAnalysis renders a saved analysis in full.
func FormatAnalysis(a model.SavedAnalysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  (%s)\n", a.Name, a.ID))
	b.WriteString(fmt.Sprintf("Saved: %s UTC\n", a.Date.UTC().Format(dateLayout)))
	for _, k := range sortedKeys(a.Metadata) {
		b.WriteString(fmt.Sprintf("%s: %s\n", k, a.Metadata[k]))
	}
	b.WriteString("\n")
	b.WriteString(FormatForm(a.FormData))
	b.WriteString("\n")
	b.WriteString(FormatResult(a.Results))
	return b.String()
}

// FormatForm renders the deal inputs.
func FormatForm(f model.AnalysisFormData) string {
	var b strings.Builder
	d := f.DealStructure
	fin := f.FinancingDetails

	b.WriteString("Deal structure\n")
	b.WriteString(fmt.Sprintf("  Multiple paid: %.2fx | Exit multiple: %.2fx\n", d.MultiplePaid, d.ExitMultiple))
	b.WriteString("  Acquisition schedule:\n")
	for _, e := range d.AcquisitionSchedule {
		b.WriteString(fmt.Sprintf("    Year %d: %.1f%%\n", e.Year, e.Percentage))
	}
	total := model.ScheduleTotal(d.AcquisitionSchedule)
	b.WriteString(fmt.Sprintf("    Total: %.1f%%", total))
	if !model.ScheduleBalanced(d.AcquisitionSchedule) {
		b.WriteString(" (does not sum to 100%)")
	}
	b.WriteString("\n")

	b.WriteString("Financing\n")
	b.WriteString(fmt.Sprintf("  Cash: %.1f%% | Debt: %.1f%%\n", fin.CashComponent, fin.DebtComponent))
	b.WriteString(fmt.Sprintf("  Interest: %.2f%% over %d years | Discount rate: %.1f%%\n",
		fin.InterestRate, fin.TermYears, fin.DiscountRate))
	return b.String()
}

// FormatResult renders the valuation outputs.
func FormatResult(r model.AnalysisResult) string {
	var b strings.Builder
	m := r.ReturnMetrics

	b.WriteString("Results\n")
	b.WriteString(fmt.Sprintf("  LTM EBITDA: %s\n", money(r.LTMEbitda)))
	b.WriteString(fmt.Sprintf("  Enterprise value: %s\n", money(r.EnterpriseValue)))
	b.WriteString(fmt.Sprintf("  Valuation: %s\n", money(r.Valuation)))
	b.WriteString(fmt.Sprintf("  IRR: %s | MOIC: %.2fx\n", percent(m.IRR), m.MOIC))
	payback := years(m.PaybackPeriod.Years)
	if m.PaybackPeriod.BeyondHorizon {
		payback = "beyond " + payback
	}
	b.WriteString(fmt.Sprintf("  Payback: %s\n", payback))
	if m.NPV != 0 {
		b.WriteString(fmt.Sprintf("  NPV: %s\n", money(m.NPV)))
	}
	return b.String()
}

// FormatAdvisories lists form warnings, or nothing when there are none.
func FormatAdvisories(advisories []model.Advisory) string {
	if len(advisories) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Warnings\n")
	for _, a := range advisories {
		b.WriteString("  - " + a.String() + "\n")
	}
	return b.String()
}

// WriteHistory prints recorder events, newest first.
func WriteHistory(w io.Writer, events []recorder.Event) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tEVENT\tID\tNAME\tVALUATION\tIRR")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(dateLayout), e.Kind, e.AnalysisID, e.Name,
			money(e.Valuation), percent(e.IRR))
	}
	return tw.Flush()
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.1fK", sign, v/1e3)
	default:
		return fmt.Sprintf("%s$%.2f", sign, v)
	}
}

func percent(v float64) string { return fmt.Sprintf("%.1f%%", v) }

func years(v float64) string { return fmt.Sprintf("%.1f yrs", v) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
