/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the engine's types from
  the wire contract. The ParseResult itself is primitives-only and is
  embedded in responses as-is.

GRID ENCODING:
  Clients post the decoded worksheet as a 2-D array of JSON values:
  null (blank), string (text, including the "-" sentinel and textual
  dates), or number. gridFromJSON maps those onto the sheet.Cell union;
  unrecognized value types become text so validation can reject them
  visibly instead of dropping them.

SEE ALSO:
  - handlers.go: Uses these types
  - sheet:       ParseResult definition
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/sales-recon/recon"
	"github.com/warp/sales-recon/sheet"
	"github.com/warp/sales-recon/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ParseRequest carries one decoded sheet plus its parsing context. Period is
// YYYY-MM; its year completes short dates on monthly sheets.
type ParseRequest struct {
	BoutiqueID string            `json:"boutique_id"`
	Period     string            `json:"period"`
	Mode       string            `json:"mode"` // "monthly" or "matrix"
	Grid       [][]any           `json:"grid"`
	Override   map[string]string `json:"override,omitempty"`
}

// ReconcileRequest is a ParseRequest plus reconciliation knobs.
type ReconcileRequest struct {
	ParseRequest
	IncludeZero bool  `json:"include_zero,omitempty"`
	Tolerance   int64 `json:"tolerance,omitempty"`
}

// LockRequest sets or clears a period lock.
type LockRequest struct {
	BoutiqueID string `json:"boutique_id"`
	Period     string `json:"period"`
	Locked     bool   `json:"locked"`
}

// RosterRequest replaces a boutique's roster. Order is preserved and drives
// resolution tie-breaks.
type RosterRequest struct {
	Employees []sheet.EmployeeRecord `json:"employees"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ParseResponse pairs the parse result with the gate's verdict so a client
// renders errors, unmapped headers, and apply eligibility from one call.
type ParseResponse struct {
	Result   *sheet.ParseResult `json:"result"`
	Decision recon.Decision     `json:"decision"`
	Locked   bool               `json:"locked"`
}

// ReconcileResponse is the diff report for one sheet against the ledger.
type ReconcileResponse struct {
	Result  *sheet.ParseResult `json:"result"`
	Diff    []recon.DiffEntry  `json:"diff"`
	Summary recon.Summary      `json:"summary"`
}

// ApplyResponse reports the outcome of an apply attempt. RunID is set for
// both applied and rejected runs (rejections are audited too).
type ApplyResponse struct {
	Applied  bool           `json:"applied"`
	RunID    string         `json:"run_id"`
	Decision recon.Decision `json:"decision"`
	Records  int            `json:"records"`
}

// LedgerResponse lists the persisted lines for one boutique and period.
type LedgerResponse struct {
	BoutiqueID string              `json:"boutique_id"`
	Period     string              `json:"period"`
	Lines      []sheet.DailyRecord `json:"lines"`
}

// RunsResponse lists import runs, newest first.
type RunsResponse struct {
	Runs []sqlite.ImportRun `json:"runs"`
}

// =============================================================================
// GRID DECODING
// =============================================================================

// gridFromJSON maps the wire grid onto the cell union. encoding/json decodes
// numbers as float64; decimal.NewFromFloat keeps enough precision for the
// integer-or-reject policy downstream.
func gridFromJSON(raw [][]any) sheet.Grid {
	grid := make(sheet.Grid, len(raw))
	for i, row := range raw {
		cells := make([]sheet.Cell, len(row))
		for j, v := range row {
			cells[j] = cellFromJSON(v)
		}
		grid[i] = cells
	}
	return grid
}

func cellFromJSON(v any) sheet.Cell {
	switch t := v.(type) {
	case nil:
		return sheet.BlankCell()
	case string:
		if t == "" {
			return sheet.BlankCell()
		}
		return sheet.TextCell(t)
	case float64:
		return sheet.NumberCell(decimal.NewFromFloat(t))
	default:
		return sheet.TextCell(fmt.Sprint(t))
	}
}
