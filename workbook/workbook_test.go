package workbook_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/sales-recon/sheet"
	"github.com/warp/sales-recon/workbook"
)

// writeFixture builds a small xlsx on disk so the decoder is exercised
// end to end, not against a mocked reader.
func writeFixture(t *testing.T) string {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Sales"))
	rows := [][]any{
		{"Date", "Day", "Ali", "Omar"},
		{"2026-03-01", "Sunday", 100, "-"},
		{"2026-03-02", "Monday", "50.5", 200},
	}
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sales", addr, &row))
	}

	_, err := f.NewSheet("Employees_Map")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Employees_Map", "A1", &[]any{"Ali", "E001"}))

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadGrid_Classification(t *testing.T) {
	path := writeFixture(t)

	grid, err := workbook.ReadGrid(path, "Sales")
	require.NoError(t, err)
	require.Len(t, grid, 3)

	// Header row is all text.
	assert.Equal(t, sheet.CellText, grid.At(0, 0).Kind)
	assert.Equal(t, "Date", grid.At(0, 0).Text)

	// Integer amount becomes a number cell.
	amount := grid.At(1, 2)
	assert.Equal(t, sheet.CellNumber, amount.Kind)
	assert.Equal(t, "100", amount.Number.String())

	// The dash sentinel stays text for the skip policy.
	assert.Equal(t, sheet.CellText, grid.At(1, 3).Kind)
	assert.Equal(t, "-", grid.At(1, 3).Text)

	// A written decimal point stays text so validation rejects it visibly.
	assert.Equal(t, sheet.CellText, grid.At(2, 2).Kind)
	assert.Equal(t, "50.5", grid.At(2, 2).Text)
}

func TestReadGrid_DefaultsToFirstSheet(t *testing.T) {
	path := writeFixture(t)

	grid, err := workbook.ReadGrid(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Date", grid.At(0, 0).Text)
}

func TestReadGrid_MissingSheet(t *testing.T) {
	path := writeFixture(t)

	_, err := workbook.ReadGrid(path, "Nope")
	assert.Error(t, err)
}

func TestReadGrid_MissingFile(t *testing.T) {
	_, err := workbook.ReadGrid(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.Error(t, err)
}

func TestSheetNames(t *testing.T) {
	path := writeFixture(t)

	names, err := workbook.SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales", "Employees_Map"}, names)
}
