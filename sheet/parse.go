/*
parse.go - Entry points for the two supported sheet layouts

PURPOSE:
  Wires discovery, resolution, and row assembly into one pass per layout:

  ParseMonthly - header position is unknown (scanned within a bound);
    employee columns start after the date/day pair. One sheet per calendar
    month, year implicit from context.

  ParseMatrix  - the fixed template: header is always row 0 with columns
    scope id, date, day, then employee columns from a fixed offset.

  Both return a best-effort ParseResult plus a hard error only for the
  conditions nothing can recover from (empty grid, no header).

SEE ALSO:
  - header.go, resolve.go, rows.go: The stages composed here
  - recon: Consumes the ParseResult for diffing and the apply gate
*/
package sheet

import "time"

// Matrix-template fixed layout. The template generator always emits scope
// id, date, day, then one column per employee.
const (
	matrixHeaderRow    = 0
	matrixDateColumn   = 1
	matrixStartColumn  = 3
	monthlyStartColumn = 2
)

// Options tune one parse pass. Zero values fall back to sensible defaults;
// InferredYear defaults to the current year when unset.
type Options struct {
	// MaxScanRows bounds the monthly header scan (default 15).
	MaxScanRows int

	// StartColumn is the first candidate employee column, counted past the
	// date/day columns. Defaults per layout.
	StartColumn int

	// InferredYear completes D-Mon short dates on monthly sheets.
	InferredYear int

	// Override maps normalized header text or emp_<id> tokens to canonical
	// employee IDs, typically loaded from an Employees_Map sheet.
	Override map[string]string
}

func (o Options) withDefaults(defaultStart int) Options {
	if o.MaxScanRows <= 0 {
		o.MaxScanRows = DefaultMaxScanRows
	}
	if o.StartColumn <= 0 {
		o.StartColumn = defaultStart
	}
	if o.InferredYear <= 0 {
		o.InferredYear = time.Now().UTC().Year()
	}
	return o
}

// ParseMonthly parses a variable-layout monthly sheet. The roster must be
// supplied in stable order; it is read-only for the duration of the call.
func ParseMonthly(grid Grid, roster []EmployeeRecord, opts Options) (*ParseResult, error) {
	if grid.Rows() == 0 {
		return nil, ErrNoSheet
	}
	opts = opts.withDefaults(monthlyStartColumn)

	headerRow, err := FindHeaderRow(grid, opts.MaxScanRows)
	if err != nil {
		return nil, err
	}

	dateColumn := findDateColumn(grid[headerRow])
	return parseFrom(grid, roster, opts, headerRow, dateColumn)
}

// ParseMatrix parses the fixed matrix template: one row per day, one column
// per employee, header at row 0.
func ParseMatrix(grid Grid, roster []EmployeeRecord, opts Options) (*ParseResult, error) {
	if grid.Rows() == 0 {
		return nil, ErrNoSheet
	}
	opts = opts.withDefaults(matrixStartColumn)
	return parseFrom(grid, roster, opts, matrixHeaderRow, matrixDateColumn)
}

// parseFrom is the shared back half of both layouts: resolve the employee
// range, then assemble and validate the data rows.
func parseFrom(grid Grid, roster []EmployeeRecord, opts Options, headerRow, dateColumn int) (*ParseResult, error) {
	columns := ResolveEmployeeColumns(grid[headerRow], opts.StartColumn, roster, opts.Override)

	var errs []BlockingError
	if len(columns) == 0 {
		errs = append(errs, blockingErr(KindNoEmployeeColumns, headerRow, opts.StartColumn, "",
			"no employee columns found at or after column %d", opts.StartColumn))
	}

	records, rowErrs, rowSkips := assembleRows(grid, headerRow, dateColumn, opts.InferredYear, columns)
	errs = append(errs, rowErrs...)

	res := &ParseResult{
		HeaderRowIndex:  headerRow,
		EmployeeColumns: columns,
		Records:         records,
		BlockingErrors:  errs,
		Diagnostics: Diagnostics{
			RowsScanned:    grid.Rows() - headerRow - 1,
			ColumnsScanned: grid.Cols(),
			RecordCount:    len(records),
			RowSkips:       rowSkips,
		},
	}
	for _, rs := range rowSkips {
		res.Diagnostics.SkippedCells += rs.Skipped
	}
	for _, c := range columns {
		if !c.Resolved() {
			res.Diagnostics.UnmappedHeaders = append(res.Diagnostics.UnmappedHeaders, c.RawText)
		}
	}
	return res, nil
}
