package sheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-recon/sheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func txt(vals ...string) []sheet.Cell {
	row := make([]sheet.Cell, len(vals))
	for i, v := range vals {
		if v == "" {
			row[i] = sheet.BlankCell()
			continue
		}
		row[i] = sheet.TextCell(v)
	}
	return row
}

// =============================================================================
// HEADER DISCOVERY
// =============================================================================

func TestFindHeaderRow_SkipsTitleRows(t *testing.T) {
	// GIVEN: two noise rows above the real header
	grid := sheet.Grid{
		txt("Boutique Sales Report"),
		txt(""),
		txt("Date", "Day", "Ali", "Omar"),
	}

	row, err := sheet.FindHeaderRow(grid, 15)
	require.NoError(t, err)
	assert.Equal(t, 2, row)
}

func TestFindHeaderRow_NeedsBothTokens(t *testing.T) {
	// A row with only "Date" does not qualify; the first row carrying both
	// tokens wins.
	grid := sheet.Grid{
		txt("Date", "Amount"),
		txt("Date", "Day", "Ali"),
	}

	row, err := sheet.FindHeaderRow(grid, 15)
	require.NoError(t, err)
	assert.Equal(t, 1, row)
}

func TestFindHeaderRow_FirstMatchWins(t *testing.T) {
	// Two qualifying rows: the earliest is authoritative.
	grid := sheet.Grid{
		txt("Date", "Day", "Ali"),
		txt("Date", "Day", "Omar"),
	}

	row, err := sheet.FindHeaderRow(grid, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, row)
}

func TestFindHeaderRow_TokensMaySitInOneCell(t *testing.T) {
	grid := sheet.Grid{
		txt("Date / Day", "Ali"),
	}

	row, err := sheet.FindHeaderRow(grid, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, row)
}

func TestFindHeaderRow_ArabicTokens(t *testing.T) {
	grid := sheet.Grid{
		txt("التاريخ", "اليوم", "علي"),
	}

	row, err := sheet.FindHeaderRow(grid, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, row)
}

func TestFindHeaderRow_ScanBound(t *testing.T) {
	// GIVEN: a header at index k >= maxScanRows
	// THEN: discovery fails with the hard HeaderNotFound error
	grid := make(sheet.Grid, 0, 16)
	for i := 0; i < 15; i++ {
		grid = append(grid, txt("noise"))
	}
	grid = append(grid, txt("Date", "Day", "Ali")) // row 15

	_, err := sheet.FindHeaderRow(grid, 15)
	require.Error(t, err)
	assert.ErrorIs(t, err, sheet.ErrHeaderNotFound)

	var notFound *sheet.HeaderNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 15, notFound.ScannedRows)
}

func TestFindHeaderRow_WithinBound(t *testing.T) {
	// GIVEN: a header at index k < maxScanRows
	// THEN: discovery returns k
	grid := sheet.Grid{
		txt("noise"),
		txt("noise"),
		txt("Date", "Day", "Ali"),
	}

	row, err := sheet.FindHeaderRow(grid, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, row)
}
