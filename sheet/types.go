/*
Package sheet parses semi-structured spreadsheet exports into normalized,
validated daily sales facts.

PURPOSE:
  This package contains the pure parsing engine: schema discovery on
  untrusted tabular input (header row position and employee-column
  boundaries are not fixed), resolution of human-entered column labels to
  canonical employee identities, and strict numeric-format validation.
  It has no I/O and no persistence; callers supply a decoded cell grid and
  a roster, and receive a ParseResult.

KEY CONCEPTS IN THIS FILE (types.go):
  - Cell/Grid: A closed tagged union of cell values and the 2-D grid
  - EmployeeRecord: One roster entry (caller-supplied, order matters)
  - EmployeeColumn: A header column resolved (or not) to an employee
  - DailyRecord: The atomic (date, employee, amount) fact
  - ParseResult: Aggregate output of one parse pass

DESIGN PRINCIPLES:
  1. Purity: No I/O, no globals beyond immutable lookup tables
  2. Collect-all-errors: Validation failures accumulate; parsing never
     stops at the first bad cell
  3. Determinism: Identical inputs yield byte-identical output; no
     reliance on map iteration order
  4. Precision: decimal.Decimal for numeric cells, never float64

USAGE:
  grid := sheet.Grid{...}
  res, err := sheet.ParseMonthly(grid, roster, sheet.Options{InferredYear: 2026})
  if err != nil {
      // hard failure: no header, empty grid
  }
  for _, rec := range res.Records { ... }

SEE ALSO:
  - normalize.go: Text normalization (Arabic folding, whitespace)
  - header.go:    Header row discovery
  - resolve.go:   Employee column resolution
  - rows.go:      Row assembly and numeric policy
  - parse.go:     Entry points for monthly and matrix layouts
*/
package sheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CELL - Closed tagged union for untrusted spreadsheet values
// =============================================================================

type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one decoded spreadsheet cell. Exactly one of the payload fields is
// meaningful, selected by Kind. The literal dash sentinel ("-" or "—") stays
// a CellText; the numeric policy in rows.go handles it explicitly.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Date   time.Time
}

func BlankCell() Cell           { return Cell{Kind: CellBlank} }
func TextCell(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Date: t} }

func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Number: d}
}

func NumberCellFromInt(n int64) Cell {
	return NumberCell(decimal.NewFromInt(n))
}

// IsBlank reports whether the cell carries no value at all. A text cell that
// trims to nothing counts as blank.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellBlank:
		return true
	case CellText:
		return len(Normalize(c)) == 0
	default:
		return false
	}
}

// Grid is a row-major, 0-indexed matrix of cells, as decoded from one
// worksheet. Rows may be ragged; At compensates.
type Grid [][]Cell

// At returns the cell at (row, col), or a blank cell when the coordinates
// fall outside the grid. Ragged rows are common in real exports.
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) {
		return BlankCell()
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return BlankCell()
	}
	return r[col]
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int { return len(g) }

// Cols returns the widest row length in the grid.
func (g Grid) Cols() int {
	max := 0
	for _, r := range g {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

// =============================================================================
// ROSTER - Caller-supplied employee identities
// =============================================================================

// EmployeeRecord is one known employee for the organizational scope being
// parsed. The slice order is significant: when several roster entries could
// satisfy the same header (first-name, substring), the earliest entry wins.
type EmployeeRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// =============================================================================
// EMPLOYEE COLUMNS - Header columns after resolution
// =============================================================================

// EmployeeColumn is one column inside the detected employee range. A column
// is either resolved (EmployeeID set) or unmapped (NormalizedText set so an
// operator can review the label). Unmapped columns are never dropped.
type EmployeeColumn struct {
	ColumnIndex    int    `json:"column_index"`
	RawText        string `json:"raw_text"`
	EmployeeID     string `json:"employee_id,omitempty"`
	NormalizedText string `json:"normalized_text,omitempty"`
}

// Resolved reports whether the column was matched to a roster entry.
func (c EmployeeColumn) Resolved() bool { return c.EmployeeID != "" }

// =============================================================================
// DAILY RECORD - The atomic parsed fact
// =============================================================================

// DailyRecord is one validated (date, employee, amount) fact. The amount is
// a non-negative integer in the currency's minor unit; fractional values are
// rejected before a record is ever built.
type DailyRecord struct {
	DateKey          string `json:"date_key"` // YYYY-MM-DD
	EmployeeID       string `json:"employee_id"`
	AmountMinorUnits int64  `json:"amount_minor_units"`
}

// =============================================================================
// DIAGNOSTICS - Parse-pass bookkeeping surfaced to callers
// =============================================================================

// RowSkipCount records how many cells were silently skipped (blank or dash)
// in one data row. Kept as a sorted slice so output stays deterministic and
// JSON-friendly.
type RowSkipCount struct {
	RowIndex int `json:"row_index"`
	Skipped  int `json:"skipped"`
}

type Diagnostics struct {
	RowsScanned     int            `json:"rows_scanned"`
	ColumnsScanned  int            `json:"columns_scanned"`
	RecordCount     int            `json:"record_count"`
	SkippedCells    int            `json:"skipped_cells"`
	RowSkips        []RowSkipCount `json:"row_skips,omitempty"`
	UnmappedHeaders []string       `json:"unmapped_headers,omitempty"`
}

// =============================================================================
// PARSE RESULT - Aggregate output of one parse pass
// =============================================================================

// ParseResult is constructed once per sheet parse and not mutated afterward.
// All fields are primitives, slices, and records; it is safe to hand back to
// an HTTP caller as JSON.
type ParseResult struct {
	HeaderRowIndex  int              `json:"header_row_index"`
	EmployeeColumns []EmployeeColumn `json:"employee_columns"`
	Records         []DailyRecord    `json:"records"`
	BlockingErrors  []BlockingError  `json:"blocking_errors"`
	Diagnostics     Diagnostics      `json:"diagnostics"`
}

// Blocked reports whether any blocking error was collected. A blocked result
// still carries every record that did validate.
func (r *ParseResult) Blocked() bool { return len(r.BlockingErrors) > 0 }

// ResolvedColumns returns only the columns matched to a roster entry, in
// sheet order.
func (r *ParseResult) ResolvedColumns() []EmployeeColumn {
	var out []EmployeeColumn
	for _, c := range r.EmployeeColumns {
		if c.Resolved() {
			out = append(out, c)
		}
	}
	return out
}

// UnmappedColumns returns the columns no resolution strategy matched.
func (r *ParseResult) UnmappedColumns() []EmployeeColumn {
	var out []EmployeeColumn
	for _, c := range r.EmployeeColumns {
		if !c.Resolved() {
			out = append(out, c)
		}
	}
	return out
}
