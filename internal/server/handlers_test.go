package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DealVault/internal/analysis"
	"DealVault/internal/blob"
	"DealVault/internal/model"
	"DealVault/internal/recorder"
)

type testServer struct {
	handler http.Handler
	store   *analysis.Store
	blob    *blob.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	b := blob.NewMemoryStore()
	store := analysis.Open(b)
	t.Cleanup(func() { store.Close() })

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	cancel := recorder.Track(store, rec, zerolog.Nop())
	t.Cleanup(cancel)

	s := New(Config{Addr: "127.0.0.1:0", Log: zerolog.Nop(), Store: store, Recorder: rec})
	return &testServer{handler: s.Handler(), store: store, blob: b}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func testForm() model.AnalysisFormData {
	return model.AnalysisFormData{
		DealStructure: model.DealStructure{
			MultiplePaid:        6,
			ExitMultiple:        7,
			AcquisitionSchedule: []model.ScheduleEntry{{Year: 1, Percentage: 100}},
		},
		FinancingDetails: model.FinancingDetails{TermYears: 5}.WithCashComponent(60).WithInterestRate(8),
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody[map[string]any](t, w)["status"])
}

func TestListEmpty(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/analyses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestSaveWithResults(t *testing.T) {
	ts := newTestServer(t)
	results := model.AnalysisResult{
		Valuation: 500, EnterpriseValue: 600, LTMEbitda: 100,
		ReturnMetrics: model.ReturnMetrics{IRR: 19, MOIC: 2.2, PaybackPeriod: model.PaybackPeriod{Years: 4}},
	}
	w := ts.do(t, http.MethodPost, "/api/analyses", map[string]any{
		"name":     "Acme",
		"formData": testForm(),
		"results":  results,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[saveResponse](t, w)
	assert.NotEmpty(t, resp.Analysis.ID)
	assert.Equal(t, 19.0, resp.Analysis.Summary.IRR)
	assert.Empty(t, resp.Advisories)

	sel, ok := ts.store.Selected()
	require.True(t, ok)
	assert.Equal(t, resp.Analysis.ID, sel.ID)
}

func TestSaveComputesFromTarget(t *testing.T) {
	ts := newTestServer(t)
	form := testForm()
	form.DealStructure.AcquisitionSchedule = []model.ScheduleEntry{{Year: 1, Percentage: 80}}
	w := ts.do(t, http.MethodPost, "/api/analyses", map[string]any{
		"name":     "Computed",
		"formData": form,
		"target":   map[string]any{"ltmEbitda": 100, "growthRate": 5},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[saveResponse](t, w)
	assert.Equal(t, 600.0, resp.Analysis.Results.EnterpriseValue)
	assert.NotZero(t, resp.Analysis.Summary.MOIC)
	require.Len(t, resp.Advisories, 1)
	assert.Equal(t, "dealStructure.acquisitionSchedule", resp.Advisories[0].Field)
}

func TestSaveRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/analyses", map[string]any{"formData": testForm(), "results": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/analyses", map[string]any{"name": "x", "formData": testForm()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/analyses", map[string]any{
		"name": "x", "formData": testForm(), "target": map[string]any{"ltmEbitda": 0},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/analyses", bytes.NewBufferString("{"))
	rw := httptest.NewRecorder()
	ts.handler.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusBadRequest, rw.Code)

	assert.Empty(t, ts.store.List())
}

func TestSelectAndDelete(t *testing.T) {
	ts := newTestServer(t)
	a, err := ts.store.Save(model.Candidate{Name: "A"})
	require.NoError(t, err)
	b, err := ts.store.Save(model.Candidate{Name: "B"})
	require.NoError(t, err)

	w := ts.do(t, http.MethodPost, "/api/analyses/"+a.ID+"/select", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, a.ID, decodeBody[model.SavedAnalysis](t, w).ID)

	w = ts.do(t, http.MethodGet, "/api/selected", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", decodeBody[model.SavedAnalysis](t, w).Name)

	w = ts.do(t, http.MethodDelete, "/api/analyses/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/selected", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/analyses/unknown", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/analyses", nil)
	list := decodeBody[[]model.SavedAnalysis](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	w = ts.do(t, http.MethodPost, "/api/analyses/unknown/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAnalysis(t *testing.T) {
	ts := newTestServer(t)
	a, err := ts.store.Save(model.Candidate{Name: "A", FormData: testForm()})
	require.NoError(t, err)
	require.NoError(t, ts.store.Load("")) // clear selection

	w := ts.do(t, http.MethodGet, "/api/analyses/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[model.SavedAnalysis](t, w)
	assert.Equal(t, a.FormData, got.FormData)

	_, ok := ts.store.Selected()
	assert.False(t, ok)

	w = ts.do(t, http.MethodGet, "/api/analyses/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompute(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/compute", map[string]any{
		"formData": testForm(),
		"target":   map[string]any{"ltmEbitda": 50, "netDebt": 20},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[computeResponse](t, w)
	assert.Equal(t, 300.0, resp.Results.EnterpriseValue)
	assert.Equal(t, 280.0, resp.Results.Valuation)
	assert.Empty(t, ts.store.List())
}

func TestComputeRejectsOutOfRangeYears(t *testing.T) {
	ts := newTestServer(t)
	form := testForm()
	form.DealStructure.AcquisitionSchedule = []model.ScheduleEntry{{Year: 1 << 40, Percentage: 100}}
	target := map[string]any{"ltmEbitda": 50}

	w := ts.do(t, http.MethodPost, "/api/compute", map[string]any{"formData": form, "target": target})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	form = testForm()
	form.FinancingDetails.TermYears = 1 << 40
	w = ts.do(t, http.MethodPost, "/api/analyses", map[string]any{"name": "x", "formData": form, "target": target})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, ts.store.List())
}

func TestSelectRespondsWithRequestedRecord(t *testing.T) {
	ts := newTestServer(t)
	a, err := ts.store.Save(model.Candidate{Name: "A"})
	require.NoError(t, err)
	b, err := ts.store.Save(model.Candidate{Name: "B"})
	require.NoError(t, err)

	// Another caller selects B as soon as A is selected.
	cancel := ts.store.Subscribe(func(c analysis.Change) {
		if c.Kind == analysis.ChangeSelected && c.State.SelectedID == a.ID {
			go func() { _ = ts.store.Load(b.ID) }()
		}
	})
	defer cancel()

	for i := 0; i < 20; i++ {
		w := ts.do(t, http.MethodPost, "/api/analyses/"+a.ID+"/select", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, a.ID, decodeBody[model.SavedAnalysis](t, w).ID)
	}
}

func TestHistory(t *testing.T) {
	ts := newTestServer(t)
	a, err := ts.store.Save(model.Candidate{Name: "A"})
	require.NoError(t, err)
	require.NoError(t, ts.store.Delete(a.ID))

	w := ts.do(t, http.MethodGet, "/api/history?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decodeBody[[]recorder.Event](t, w)
	require.Len(t, events, 1)
	assert.Equal(t, recorder.EventDeleted, events[0].Kind)

	w = ts.do(t, http.MethodGet, "/api/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.store.Save(model.Candidate{Name: "A"})
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vault_analyses_saved_total")
}
