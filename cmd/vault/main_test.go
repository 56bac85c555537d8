package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DealVault/internal/model"
	"DealVault/internal/recorder"
)

// testEnv writes a config pointing every path into a temp dir.
func testEnv(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`
storage:
  backend: file
  path: %s
history:
  sqlite_path: %s
backup:
  dir: %s
  keep: 2
log:
  level: error
`, filepath.Join(dir, "data"), filepath.Join(dir, "history.db"), filepath.Join(dir, "backups"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return cfgPath, dir
}

func writeForm(t *testing.T, dir string) string {
	t.Helper()
	form := model.AnalysisFormData{
		DealStructure: model.DealStructure{
			MultiplePaid:        6,
			ExitMultiple:        8,
			AcquisitionSchedule: []model.ScheduleEntry{{Year: 1, Percentage: 70}, {Year: 2, Percentage: 30}},
		},
		FinancingDetails: model.FinancingDetails{TermYears: 5}.WithCashComponent(50).WithInterestRate(9),
	}
	data, err := json.Marshal(form)
	require.NoError(t, err)
	path := filepath.Join(dir, "form.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	resetFlags(rootCmd)
	outputJSON = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestSaveListShowDelete(t *testing.T) {
	cfgPath, dir := testEnv(t)
	form := writeForm(t, dir)

	out := run(t, cfgPath, "save", "--name", "Acme", "--form", form, "--ltm-ebitda", "1000", "--growth", "3", "--json")
	var saved model.SavedAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Equal(t, "Acme", saved.Name)
	assert.Equal(t, 6000.0, saved.Summary.EnterpriseValue)
	assert.NotZero(t, saved.Summary.IRR)

	// The store persisted on exit, so a fresh process sees the record.
	payload, err := os.ReadFile(filepath.Join(dir, "data", "savedAnalyses.json"))
	require.NoError(t, err)
	assert.Contains(t, string(payload), saved.ID)

	out = run(t, cfgPath, "list", "--json")
	var list []model.SavedAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	out = run(t, cfgPath, "show", saved.ID)
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Year 2: 30.0%")

	out = run(t, cfgPath, "delete", saved.ID)
	assert.Contains(t, out, "Deleted "+saved.ID)

	out = run(t, cfgPath, "list")
	assert.Contains(t, out, "No saved analyses.")

	out = run(t, cfgPath, "history", "--json")
	var events []recorder.Event
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 2)
	assert.Equal(t, recorder.EventDeleted, events[0].Kind)
	assert.Equal(t, recorder.EventSaved, events[1].Kind)
}

func TestSaveWithResultsFile(t *testing.T) {
	cfgPath, dir := testEnv(t)
	form := writeForm(t, dir)
	resultsPath := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(resultsPath, []byte(`{
		"valuation": 10, "enterpriseValue": 12, "ltmEbitda": 2,
		"returnMetrics": {"irr": 15, "moic": 1.8, "paybackPeriod": {"years": 3}},
		"scenario": "base"
	}`), 0644))

	out := run(t, cfgPath, "save", "--name", "Manual", "--form", form, "--results", resultsPath, "--json")
	var saved model.SavedAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Equal(t, 15.0, saved.Summary.IRR)
	assert.JSONEq(t, `"base"`, string(saved.Results.Extra["scenario"]))
}

func TestDeleteUnknown(t *testing.T) {
	cfgPath, _ := testEnv(t)
	out := run(t, cfgPath, "delete", "00000000-0000-0000-0000-000000000000")
	assert.Contains(t, out, "nothing deleted")
}

func TestCompute(t *testing.T) {
	cfgPath, dir := testEnv(t)
	form := writeForm(t, dir)

	out := run(t, cfgPath, "compute", "--form", form, "--ltm-ebitda", "500", "--net-debt", "100", "--json")
	var got computeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3000.0, got.Results.EnterpriseValue)
	assert.Equal(t, 2900.0, got.Results.Valuation)
	assert.Empty(t, got.Advisories)

	_, err := os.Stat(filepath.Join(dir, "data"))
	assert.True(t, os.IsNotExist(err), "compute must not open the store")
}

func TestBackup(t *testing.T) {
	cfgPath, dir := testEnv(t)
	form := writeForm(t, dir)
	run(t, cfgPath, "save", "--name", "Acme", "--form", form, "--ltm-ebitda", "1000")

	out := run(t, cfgPath, "backup")
	assert.Contains(t, out, "Backup written to")

	matches, err := filepath.Glob(filepath.Join(dir, "backups", "savedAnalyses-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
}
