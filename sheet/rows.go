/*
rows.go - Row assembly and per-cell numeric policy

PURPOSE:
  Walks the data rows below the header and turns valid cells into
  DailyRecords. Validation failures are collected, never thrown: the whole
  sheet is scanned so an operator gets every problem in one pass.

AMOUNT POLICY (strict, minor currency units):
  blank or lone dash       -> silent skip (counted in diagnostics)
  decimal / fractional     -> Decimal blocking error
  negative                 -> Negative blocking error
  not a number at all      -> NotANumber blocking error
  non-negative integer     -> one DailyRecord

DATE POLICY:
  Native date cells pass through; textual dates accept YYYY-MM-DD,
  DD/MM/YYYY, DD-MM-YYYY, and D-Mon / D/Mon short forms completed with the
  caller's inferred year (monthly sheets leave the year implicit). Anything
  else is an InvalidDate blocking error and the row is skipped.

STOP CONDITION:
  A date cell whose text contains "total" marks the summary footer. That
  row and everything below it is not data; assembly stops there entirely.

SEE ALSO:
  - errors.go: Blocking error kinds emitted here
  - parse.go:  Supplies the date column and employee columns
*/
package sheet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE PARSING
// =============================================================================

// textDateLayouts are tried in order for full textual dates. Non-padded
// layouts also accept zero-padded values.
var textDateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"2-1-2006",
}

// shortDateLayouts cover D-Mon and D/Mon forms; the parsed year is zero and
// gets replaced by the caller's inferred year.
var shortDateLayouts = []string{
	"2-Jan",
	"2/Jan",
	"2-January",
	"2/January",
}

// footerTokens in a date cell mark the summary footer that ends the data
// region.
var footerTokens = []string{"total", "اجمالي", "مجموع"}

// parseDateCell converts a date cell to its YYYY-MM-DD key. ok=false means
// the cell did not parse; the caller decides whether that is a skip (blank)
// or an InvalidDate error (non-empty garbage).
func parseDateCell(c Cell, inferredYear int) (string, bool) {
	switch c.Kind {
	case CellDate:
		return c.Date.Format("2006-01-02"), true
	case CellText:
		return parseTextDate(strings.TrimSpace(c.Text), inferredYear)
	default:
		return "", false
	}
}

func parseTextDate(s string, inferredYear int) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	for _, layout := range shortDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(inferredYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// =============================================================================
// ROW ASSEMBLY
// =============================================================================

// assembleRows walks every row strictly after the header, applies the date
// and amount policies, and accumulates records, blocking errors, and
// per-row skip counts. It never aborts: a bad row is recorded and the scan
// continues, except for the footer stop condition which ends the data
// region for good.
func assembleRows(grid Grid, headerRowIndex, dateColumn, inferredYear int, employeeColumns []EmployeeColumn) ([]DailyRecord, []BlockingError, []RowSkipCount) {
	var (
		records  []DailyRecord
		errs     []BlockingError
		rowSkips []RowSkipCount
	)

	for row := headerRowIndex + 1; row < grid.Rows(); row++ {
		dateCell := grid.At(row, dateColumn)

		// Footer rows ("Total", "الاجمالي") end the data region. Hard stop,
		// not a skip: everything below belongs to the summary.
		if dateCell.Kind == CellText && containsAny(NormalizeText(dateCell.Text), footerTokens) {
			break
		}

		dateKey, ok := parseDateCell(dateCell, inferredYear)
		if !ok {
			if !dateCell.IsBlank() {
				errs = append(errs, blockingErr(KindInvalidDate, row, dateColumn, rawText(dateCell),
					"unrecognized date %q", rawText(dateCell)))
			}
			continue
		}

		skipped := 0
		for _, col := range employeeColumns {
			if !col.Resolved() {
				continue
			}
			cell := grid.At(row, col.ColumnIndex)
			amount, verdict := classifyAmount(cell)
			switch verdict {
			case amountSkip:
				skipped++
			case amountOK:
				records = append(records, DailyRecord{
					DateKey:          dateKey,
					EmployeeID:       col.EmployeeID,
					AmountMinorUnits: amount,
				})
			default:
				errs = append(errs, blockingErr(verdict.kind(), row, col.ColumnIndex, rawText(cell),
					"%s at row %d column %d: %q", verdict.kind(), row, col.ColumnIndex, rawText(cell)))
			}
		}
		if skipped > 0 {
			rowSkips = append(rowSkips, RowSkipCount{RowIndex: row, Skipped: skipped})
		}
	}

	return records, errs, rowSkips
}

// =============================================================================
// AMOUNT POLICY
// =============================================================================

type amountVerdict int

const (
	amountOK amountVerdict = iota
	amountSkip
	amountDecimal
	amountNegative
	amountNotANumber
)

func (v amountVerdict) kind() BlockingErrorKind {
	switch v {
	case amountDecimal:
		return KindDecimal
	case amountNegative:
		return KindNegative
	default:
		return KindNotANumber
	}
}

// dashSentinels are the literal "no sales today" markers entered by hand.
var dashSentinels = map[string]bool{"-": true, "—": true}

// classifyAmount applies the strict numeric policy to one employee cell and
// returns the accepted minor-unit amount when the verdict is amountOK.
func classifyAmount(c Cell) (int64, amountVerdict) {
	switch c.Kind {
	case CellBlank:
		return 0, amountSkip

	case CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" || dashSentinels[s] {
			return 0, amountSkip
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, amountNotANumber
		}
		// A written decimal point blocks even when the value is whole
		// ("50.0" is not acceptable ledger input).
		if strings.Contains(s, ".") || !d.IsInteger() {
			return 0, amountDecimal
		}
		if d.IsNegative() {
			return 0, amountNegative
		}
		return d.IntPart(), amountOK

	case CellNumber:
		if !c.Number.IsInteger() {
			return 0, amountDecimal
		}
		if c.Number.IsNegative() {
			return 0, amountNegative
		}
		return c.Number.IntPart(), amountOK

	default: // a date in an amount column is garbage
		return 0, amountNotANumber
	}
}
