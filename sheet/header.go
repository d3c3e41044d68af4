/*
header.go - Header row discovery

PURPOSE:
  Monthly sheets are hand-made: title rows, boutique names, and blank
  padding float above the real header. Discovery scans a bounded number of
  rows and picks the first one that carries both a "date" token and a "day"
  token in any cells (possibly the same cell). First match wins; if several
  rows could qualify, the earliest is authoritative.

  Matrix-template sheets skip discovery entirely - their header is always
  row 0 with fixed column positions (see parse.go).

FAILURE:
  No qualifying row within the bound is a hard error (ErrHeaderNotFound),
  never a collected one: nothing downstream can run without a header.

SEE ALSO:
  - parse.go: Chooses between scanned and fixed header modes
*/
package sheet

import "strings"

// DefaultMaxScanRows bounds the header scan when the caller does not say
// otherwise.
const DefaultMaxScanRows = 15

// Header tokens accepted in English and Arabic. Matching is substring-based
// over normalized text, so "Sale Date" and "التاريخ" both qualify.
var (
	dateTokens = []string{"date", "تاريخ"}
	dayTokens  = []string{"day", "يوم"}
)

// FindHeaderRow scans rows [0, maxScanRows) in order and returns the index
// of the first row whose normalized cells contain both a date token and a
// day token. Returns a HeaderNotFoundError when no row qualifies.
func FindHeaderRow(grid Grid, maxScanRows int) (int, error) {
	if maxScanRows <= 0 {
		maxScanRows = DefaultMaxScanRows
	}
	limit := maxScanRows
	if limit > grid.Rows() {
		limit = grid.Rows()
	}

	for row := 0; row < limit; row++ {
		if rowHasToken(grid[row], dateTokens) && rowHasToken(grid[row], dayTokens) {
			return row, nil
		}
	}
	return -1, &HeaderNotFoundError{ScannedRows: limit}
}

// findDateColumn returns the index of the first header cell containing a
// date token, falling back to column 0. The date column anchors row
// assembly for monthly sheets.
func findDateColumn(headerRow []Cell) int {
	for col, c := range headerRow {
		if containsAny(Normalize(c), dateTokens) {
			return col
		}
	}
	return 0
}

func rowHasToken(row []Cell, tokens []string) bool {
	for _, c := range row {
		if containsAny(Normalize(c), tokens) {
			return true
		}
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	if s == "" {
		return false
	}
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
