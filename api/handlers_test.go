package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-recon/api"
	"github.com/warp/sales-recon/recon"
	"github.com/warp/sales-recon/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := api.NewHandler(store, log)
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func putJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, srv.URL+path, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func seedRoster(t *testing.T, srv *httptest.Server) {
	resp := putJSON(t, srv, "/api/boutiques/riyadh-01/roster", map[string]any{
		"employees": []map[string]string{
			{"id": "E1", "display_name": "Ali Hassan"},
			{"id": "E2", "display_name": "Omar Saleh"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// cleanGrid is a sheet every gate condition passes on: header on the first
// row, two clean data rows, a footer.
func cleanGrid() [][]any {
	return [][]any{
		{"Date", "Day", "Ali", "Omar", "Total"},
		{"2026-03-01", "Sunday", 100, 150, 250},
		{"2026-03-02", "Monday", "-", 80, 80},
		{"Total", nil, 999, 999, 999},
	}
}

func parseBody(grid [][]any) map[string]any {
	return map[string]any{
		"boutique_id": "riyadh-01",
		"period":      "2026-03",
		"mode":        "monthly",
		"grid":        grid,
	}
}

// =============================================================================
// PARSE
// =============================================================================

func TestParseEndpoint_CleanSheet(t *testing.T) {
	srv := newTestServer(t)
	seedRoster(t, srv)

	resp := postJSON(t, srv, "/api/parse", parseBody(cleanGrid()))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ParseResponse
	decode(t, resp, &out)

	assert.True(t, out.Decision.Allowed)
	assert.False(t, out.Locked)
	require.NotNil(t, out.Result)
	assert.Len(t, out.Result.Records, 3)
	assert.Empty(t, out.Result.BlockingErrors)
}

func TestParseEndpoint_BlockingErrorsStillOK(t *testing.T) {
	// Findings ride inside the result with status 200; only transport-level
	// failures change the status code.
	srv := newTestServer(t)
	seedRoster(t, srv)

	grid := cleanGrid()
	grid[1][2] = "50.5" // decimal amount

	resp := postJSON(t, srv, "/api/parse", parseBody(grid))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ParseResponse
	decode(t, resp, &out)
	assert.False(t, out.Decision.Allowed)
	assert.Equal(t, []recon.Reason{recon.ReasonBlockingErrors}, out.Decision.Reasons)
	require.Len(t, out.Result.BlockingErrors, 1)
}

func TestParseEndpoint_HeaderNotFoundIs422(t *testing.T) {
	srv := newTestServer(t)
	seedRoster(t, srv)

	resp := postJSON(t, srv, "/api/parse", parseBody([][]any{
		{"just", "noise"},
		{"more", "noise"},
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestParseEndpoint_BadBodyIs400(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/parse", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// APPLY + LOCK
// =============================================================================

func TestApplyEndpoint_PersistsThenLockRefuses(t *testing.T) {
	srv := newTestServer(t)
	seedRoster(t, srv)

	// First apply lands.
	resp := postJSON(t, srv, "/api/apply", parseBody(cleanGrid()))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var applied api.ApplyResponse
	decode(t, resp, &applied)
	assert.True(t, applied.Applied)
	assert.NotEmpty(t, applied.RunID)
	assert.Equal(t, 3, applied.Records)

	// Ledger now serves the lines.
	ledgerResp, err := http.Get(srv.URL + "/api/boutiques/riyadh-01/ledger/2026-03")
	require.NoError(t, err)
	defer ledgerResp.Body.Close()
	var ledger api.LedgerResponse
	decode(t, ledgerResp, &ledger)
	assert.Len(t, ledger.Lines, 3)

	// Lock the period; a second apply is refused and audited.
	resp = postJSON(t, srv, "/api/periods/lock", map[string]any{
		"boutique_id": "riyadh-01", "period": "2026-03", "locked": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv, "/api/apply", parseBody(cleanGrid()))
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var refused api.ApplyResponse
	decode(t, resp, &refused)
	assert.False(t, refused.Applied)
	assert.Contains(t, refused.Decision.Reasons, recon.ReasonPeriodLocked)

	// Both runs show up in history.
	runsResp, err := http.Get(srv.URL + "/api/boutiques/riyadh-01/runs/2026-03")
	require.NoError(t, err)
	defer runsResp.Body.Close()
	var runs api.RunsResponse
	decode(t, runsResp, &runs)
	assert.Len(t, runs.Runs, 2)
}

func TestApplyEndpoint_RefusedSheetNeverTouchesLedger(t *testing.T) {
	srv := newTestServer(t)
	seedRoster(t, srv)

	grid := cleanGrid()
	grid[1][2] = -5 // negative amount blocks

	resp := postJSON(t, srv, "/api/apply", parseBody(grid))
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	ledgerResp, err := http.Get(srv.URL + "/api/boutiques/riyadh-01/ledger/2026-03")
	require.NoError(t, err)
	defer ledgerResp.Body.Close()
	var ledger api.LedgerResponse
	decode(t, ledgerResp, &ledger)
	assert.Empty(t, ledger.Lines)
}

// =============================================================================
// RECONCILE
// =============================================================================

func TestReconcileEndpoint_DiffAgainstLedger(t *testing.T) {
	srv := newTestServer(t)
	seedRoster(t, srv)

	resp := postJSON(t, srv, "/api/apply", parseBody(cleanGrid()))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Same sheet with one changed amount and one new row.
	grid := [][]any{
		{"Date", "Day", "Ali", "Omar", "Total"},
		{"2026-03-01", "Sunday", 120, 150, 270}, // Ali changed 100 -> 120
		{"2026-03-02", "Monday", "-", 80, 80},
		{"2026-03-03", "Tuesday", 60, "-", 60}, // new row
		{"Total", nil, 999, 999, 999},
	}

	resp = postJSON(t, srv, "/api/reconcile", parseBody(grid))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ReconcileResponse
	decode(t, resp, &out)

	require.Len(t, out.Diff, 2)
	assert.Equal(t, recon.Mismatch, out.Diff[0].Kind)
	assert.Equal(t, int64(20), out.Diff[0].Delta)
	assert.Equal(t, recon.MissingInStore, out.Diff[1].Kind)

	assert.Equal(t, 1, out.Summary.Missing)
	assert.Equal(t, 1, out.Summary.Mismatched)
}

// =============================================================================
// ROSTER
// =============================================================================

func TestRosterEndpoints_RoundTripInOrder(t *testing.T) {
	srv := newTestServer(t)
	seedRoster(t, srv)

	resp, err := http.Get(srv.URL + "/api/boutiques/riyadh-01/roster")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out api.RosterRequest
	decode(t, resp, &out)
	require.Len(t, out.Employees, 2)
	assert.Equal(t, "E1", out.Employees[0].ID)
	assert.Equal(t, "E2", out.Employees[1].ID)
}

func TestRosterEndpoints_RejectsIncompleteEmployee(t *testing.T) {
	srv := newTestServer(t)

	resp := putJSON(t, srv, "/api/boutiques/riyadh-01/roster", map[string]any{
		"employees": []map[string]string{{"id": "E1"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
