package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"DealVault/internal/model"
	"DealVault/internal/report"
	"DealVault/internal/valuation"
)

var (
	// save command flags
	saveName     string
	saveFormPath string
	saveResults  string
	saveMetadata map[string]string
	saveTarget   valuation.Target
)

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)

	saveCmd.Flags().StringVar(&saveName, "name", "", "Analysis name (required)")
	saveCmd.Flags().StringVar(&saveFormPath, "form", "", "Form data JSON file, or - for stdin (required)")
	saveCmd.Flags().StringVar(&saveResults, "results", "", "Precomputed results JSON file")
	saveCmd.Flags().StringToStringVar(&saveMetadata, "meta", nil, "Metadata as key=value pairs")
	addTargetFlags(saveCmd, &saveTarget)
	saveCmd.Flags().BoolVar(&outputJSON, "json", false, "Output the saved record as JSON")
	_ = saveCmd.MarkFlagRequired("name")
	_ = saveCmd.MarkFlagRequired("form")
	saveCmd.MarkFlagsMutuallyExclusive("results", "ltm-ebitda")

	listCmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
}

func addTargetFlags(cmd *cobra.Command, t *valuation.Target) {
	cmd.Flags().Float64Var(&t.LTMEbitda, "ltm-ebitda", 0, "Target LTM EBITDA")
	cmd.Flags().Float64Var(&t.GrowthRate, "growth", 0, "Annual EBITDA growth, percent")
	cmd.Flags().Float64Var(&t.NetDebt, "net-debt", 0, "Target net debt")
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a new analysis",
	Long: `Save a new analysis. Results come either from a JSON file (--results)
or from the built-in valuation engine (--ltm-ebitda, --growth, --net-debt).

Examples:
  vault save --name "Acme" --form deal.json --ltm-ebitda 12000000
  vault save --name "Acme" --form deal.json --results results.json --meta sector=retail`,
	Args: cobra.NoArgs,
	RunE: runSave,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved analysis",
	Long:  `Delete a saved analysis. Deleting an unknown id is not an error.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runSave(cmd *cobra.Command, _ []string) error {
	var form model.AnalysisFormData
	if err := readJSON(saveFormPath, &form); err != nil {
		return err
	}

	var results model.AnalysisResult
	switch {
	case saveResults != "":
		if err := readJSON(saveResults, &results); err != nil {
			return err
		}
	case cmd.Flags().Changed("ltm-ebitda"):
		computed, err := valuation.Engine{Target: saveTarget}.Compute(form)
		if err != nil {
			return fmt.Errorf("compute: %w", err)
		}
		results = computed
	default:
		return errors.New("either --results or --ltm-ebitda is required")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.store.Save(model.Candidate{
		Name:     saveName,
		Metadata: saveMetadata,
		FormData: form,
		Results:  results,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return writeJSON(out, saved)
	}
	fmt.Fprintf(out, "Saved %s\n\n", saved.ID)
	fmt.Fprint(out, report.FormatResult(saved.Results))
	if adv := report.FormatAdvisories(model.Check(form)); adv != "" {
		fmt.Fprint(out, "\n"+adv)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	analyses := a.store.List()
	out := cmd.OutOrStdout()
	if outputJSON {
		if analyses == nil {
			analyses = []model.SavedAnalysis{}
		}
		return writeJSON(out, analyses)
	}
	if len(analyses) == 0 {
		fmt.Fprintln(out, "No saved analyses.")
		return nil
	}
	return report.WriteList(out, analyses, "")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, ok := a.store.Get(args[0])
	if !ok {
		return fmt.Errorf("analysis %s not found", args[0])
	}
	out := cmd.OutOrStdout()
	if outputJSON {
		return writeJSON(out, analysis)
	}
	fmt.Fprint(out, report.FormatAnalysis(analysis))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.store.Get(args[0]); !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "No analysis %s; nothing deleted.\n", args[0])
		return nil
	}
	if err := a.store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
