package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"DealVault/internal/model"
	"DealVault/internal/report"
	"DealVault/internal/valuation"
)

var (
	computeFormPath string
	computeTarget   valuation.Target
)

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().StringVar(&computeFormPath, "form", "", "Form data JSON file, or - for stdin (required)")
	addTargetFlags(computeCmd, &computeTarget)
	computeCmd.Flags().BoolVar(&outputJSON, "json", false, "Output results as JSON")
	_ = computeCmd.MarkFlagRequired("form")
	_ = computeCmd.MarkFlagRequired("ltm-ebitda")
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Value a deal without saving it",
	Long: `Run the valuation engine on form data and print the results.

Examples:
  vault compute --form deal.json --ltm-ebitda 12000000 --growth 4 --net-debt 5000000`,
	Args: cobra.NoArgs,
	RunE: runCompute,
}

// computeOutput pairs results with form advisories for --json.
type computeOutput struct {
	Results    model.AnalysisResult `json:"results"`
	Advisories []model.Advisory     `json:"advisories,omitempty"`
}

func runCompute(cmd *cobra.Command, _ []string) error {
	var form model.AnalysisFormData
	if err := readJSON(computeFormPath, &form); err != nil {
		return err
	}
	results, err := valuation.Engine{Target: computeTarget}.Compute(form)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	out := cmd.OutOrStdout()
	advisories := model.Check(form)
	if outputJSON {
		return writeJSON(out, computeOutput{Results: results, Advisories: advisories})
	}
	fmt.Fprint(out, report.FormatForm(form))
	fmt.Fprintln(out)
	fmt.Fprint(out, report.FormatResult(results))
	if adv := report.FormatAdvisories(advisories); adv != "" {
		fmt.Fprint(out, "\n"+adv)
	}
	return nil
}
