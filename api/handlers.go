/*
handlers.go - HTTP API handlers for the sales reconciliation engine

PURPOSE:
  Exposes the parsing/reconciliation engine via REST. Handlers own HTTP
  concerns only; all parsing, diffing, and gating happens in the pure
  sheet/recon packages, and persistence in store/sqlite.

ENDPOINTS:
  Parsing:
    POST   /api/parse                    Parse a sheet, return result + gate verdict
    POST   /api/reconcile                Parse and diff against the ledger
    POST   /api/apply                    Parse, gate, and persist (or audit the refusal)

  Ledger:
    GET    /api/boutiques/{id}/ledger/{period}  Persisted lines
    GET    /api/boutiques/{id}/runs/{period}    Import run history
    POST   /api/periods/lock                     Set/clear a period lock

  Roster:
    GET    /api/boutiques/{id}/roster    Roster snapshot (stable order)
    PUT    /api/boutiques/{id}/roster    Replace roster

ERROR HANDLING:
  Hard parse failures (no header, empty grid) come back as 422 with the
  error text; collected blocking errors ride inside the ParseResult with
  status 200 - they are findings, not transport failures.

SEE ALSO:
  - dto.go:    Request/response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/sales-recon/recon"
	"github.com/warp/sales-recon/sheet"
	"github.com/warp/sales-recon/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Log   *logrus.Logger
}

// NewHandler creates a handler with the given store and logger.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{Store: store, Log: log}
}

// =============================================================================
// PARSING HANDLERS
// =============================================================================

// ParseSheet parses one posted grid and returns the result together with
// the apply-gate verdict for the target period.
func (h *Handler) ParseSheet(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, locked, err := h.parse(r, req)
	if err != nil {
		h.writeParseFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ParseResponse{
		Result:   res,
		Decision: recon.CanApply(res, locked),
		Locked:   locked,
	})
}

// ReconcileSheet parses one posted grid and diffs it against the persisted
// ledger for the same boutique and period.
func (h *Handler) ReconcileSheet(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, _, err := h.parse(r, req.ParseRequest)
	if err != nil {
		h.writeParseFailure(w, err)
		return
	}

	ledger, err := h.Store.LedgerMap(r.Context(), req.BoutiqueID, req.Period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	fileMap := recon.FileMap(res, req.IncludeZero)
	var diff []recon.DiffEntry
	if req.Tolerance > 0 {
		diff = recon.ReconcileWithTolerance(fileMap, ledger, req.Tolerance)
	} else {
		diff = recon.Reconcile(fileMap, ledger)
	}

	writeJSON(w, http.StatusOK, ReconcileResponse{
		Result:  res,
		Diff:    diff,
		Summary: recon.Summarize(diff),
	})
}

// ApplySheet parses, gates, and persists. Refused applies are still recorded
// as import runs so the upload history stays complete.
func (h *Handler) ApplySheet(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, locked, err := h.parse(r, req)
	if err != nil {
		h.writeParseFailure(w, err)
		return
	}

	decision := recon.CanApply(res, locked)
	if !decision.Allowed {
		runID, err := h.Store.RecordRejectedRun(r.Context(), req.BoutiqueID, req.Period,
			"api:"+req.Mode, len(res.Records), len(res.BlockingErrors))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to record run", err)
			return
		}
		h.Log.WithFields(logrus.Fields{
			"boutique": req.BoutiqueID,
			"period":   req.Period,
			"run_id":   runID,
			"reasons":  decision.Reasons,
		}).Warn("apply refused")
		writeJSON(w, http.StatusConflict, ApplyResponse{
			Applied:  false,
			RunID:    runID,
			Decision: decision,
			Records:  len(res.Records),
		})
		return
	}

	runID, err := h.Store.ApplyRecords(r.Context(), req.BoutiqueID, req.Period, "api:"+req.Mode, res.Records)
	if errors.Is(err, sqlite.ErrPeriodLocked) {
		// Lock acquired between gate evaluation and the write transaction.
		writeJSON(w, http.StatusConflict, ApplyResponse{
			Applied:  false,
			Decision: recon.Decision{Allowed: false, Reasons: []recon.Reason{recon.ReasonPeriodLocked}},
			Records:  len(res.Records),
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to apply records", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"boutique": req.BoutiqueID,
		"period":   req.Period,
		"run_id":   runID,
		"records":  len(res.Records),
	}).Info("ledger applied")
	writeJSON(w, http.StatusOK, ApplyResponse{
		Applied:  true,
		RunID:    runID,
		Decision: decision,
		Records:  len(res.Records),
	})
}

// parse runs the engine for one request: roster snapshot, layout dispatch,
// lock read.
func (h *Handler) parse(r *http.Request, req ParseRequest) (*sheet.ParseResult, bool, error) {
	roster, err := h.Store.Roster(r.Context(), req.BoutiqueID)
	if err != nil {
		return nil, false, err
	}

	opts := sheet.Options{
		InferredYear: yearFromPeriod(req.Period),
		Override:     req.Override,
	}
	grid := gridFromJSON(req.Grid)

	var res *sheet.ParseResult
	if req.Mode == "matrix" {
		res, err = sheet.ParseMatrix(grid, roster, opts)
	} else {
		res, err = sheet.ParseMonthly(grid, roster, opts)
	}
	if err != nil {
		return nil, false, err
	}

	locked, err := h.Store.IsLocked(r.Context(), req.BoutiqueID, req.Period)
	if err != nil {
		return nil, false, err
	}
	return res, locked, nil
}

func (h *Handler) writeParseFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sheet.ErrHeaderNotFound):
		writeError(w, http.StatusUnprocessableEntity, "Header row not found", err)
	case errors.Is(err, sheet.ErrNoSheet):
		writeError(w, http.StatusUnprocessableEntity, "Sheet is empty", err)
	default:
		writeError(w, http.StatusInternalServerError, "Parse failed", err)
	}
}

// yearFromPeriod extracts the year from a YYYY-MM period, or 0 (engine
// default) when the period is absent or malformed.
func yearFromPeriod(period string) int {
	y, _, _ := strings.Cut(period, "-")
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return year
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetLedger returns the persisted lines for one boutique and period.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	boutiqueID := chi.URLParam(r, "id")
	period := chi.URLParam(r, "period")

	lines, err := h.Store.LedgerLines(r.Context(), boutiqueID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, LedgerResponse{
		BoutiqueID: boutiqueID,
		Period:     period,
		Lines:      lines,
	})
}

// ListRuns returns import run history for one boutique and period.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ImportRuns(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

// LockPeriod sets or clears the lock flag for one (boutique, period).
func (h *Handler) LockPeriod(w http.ResponseWriter, r *http.Request) {
	var req LockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BoutiqueID == "" || req.Period == "" {
		writeError(w, http.StatusBadRequest, "boutique_id and period are required", nil)
		return
	}

	if err := h.Store.SetLocked(r.Context(), req.BoutiqueID, req.Period, req.Locked); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update lock", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// GetRoster returns a boutique's roster in stable order.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.Store.Roster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}
	writeJSON(w, http.StatusOK, RosterRequest{Employees: roster})
}

// PutRoster replaces a boutique's roster, preserving the submitted order.
func (h *Handler) PutRoster(w http.ResponseWriter, r *http.Request) {
	var req RosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	for _, emp := range req.Employees {
		if emp.ID == "" || emp.DisplayName == "" {
			writeError(w, http.StatusBadRequest, "Every employee needs id and display_name", nil)
			return
		}
	}

	if err := h.Store.ReplaceRoster(r.Context(), chi.URLParam(r, "id"), req.Employees); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replace roster", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
