/*
errors.go - Error taxonomy for the parsing engine

PURPOSE:
  Two distinct failure families live here:

  1. Hard errors - abort the parse call entirely and are returned as a
     single Go error (empty grid, header not found). Check with errors.Is.
  2. Blocking errors - per-cell/per-row validation failures collected into
     the ParseResult. They are data, not Go errors: parsing is best-effort
     and never stops at the first bad cell.

  Advisory findings (unmapped columns) are neither; they live on the
  ParseResult as EmployeeColumn values with no EmployeeID.

USAGE:
  res, err := sheet.ParseMonthly(grid, roster, opts)
  if errors.Is(err, sheet.ErrHeaderNotFound) { ... }
  for _, be := range res.BlockingErrors { fmt.Println(be.Message) }

SEE ALSO:
  - rows.go:   Emits NotANumber/Decimal/Negative/InvalidDate
  - header.go: Emits ErrHeaderNotFound
  - recon/gate.go: Turns blocking errors into an apply refusal
*/
package sheet

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Hard failures, use with errors.Is()
// =============================================================================

var (
	// ErrNoSheet is returned when the supplied grid is empty or nil.
	ErrNoSheet = errors.New("no sheet data")

	// ErrHeaderNotFound is returned when no row within the scan bound
	// qualifies as a header row. Parsing cannot proceed without one.
	ErrHeaderNotFound = errors.New("header row not found")
)

// HeaderNotFoundError carries the scanned range for diagnostics.
type HeaderNotFoundError struct {
	ScannedRows int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header row not found in first %d rows", e.ScannedRows)
}

func (e *HeaderNotFoundError) Unwrap() error { return ErrHeaderNotFound }

// =============================================================================
// BLOCKING ERRORS - Collected validation failures
// =============================================================================

type BlockingErrorKind string

const (
	KindInvalidDate       BlockingErrorKind = "invalid_date"
	KindNotANumber        BlockingErrorKind = "not_a_number"
	KindDecimal           BlockingErrorKind = "decimal"
	KindNegative          BlockingErrorKind = "negative"
	KindNoEmployeeColumns BlockingErrorKind = "no_employee_columns"
	KindHeaderNotFound    BlockingErrorKind = "header_not_found"
)

// BlockingError is one validation failure severe enough that applying the
// parsed data must be refused until corrected. RowIndex/ColumnIndex are
// 0-based grid coordinates; ColumnIndex is -1 for row-level failures.
type BlockingError struct {
	Kind        BlockingErrorKind `json:"kind"`
	RowIndex    int               `json:"row_index"`
	ColumnIndex int               `json:"column_index"`
	RawValue    string            `json:"raw_value"`
	Message     string            `json:"message"`
}

func blockingErr(kind BlockingErrorKind, row, col int, raw, format string, args ...any) BlockingError {
	return BlockingError{
		Kind:        kind,
		RowIndex:    row,
		ColumnIndex: col,
		RawValue:    raw,
		Message:     fmt.Sprintf(format, args...),
	}
}
