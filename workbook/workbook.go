/*
Package workbook decodes xlsx worksheets into the cell grid the parsing
engine consumes.

PURPOSE:
  The engine treats "read a 2-D grid of typed cell values" as a supplied
  primitive; this package is that supplier. It wraps excelize and maps each
  cell's formatted value onto the sheet.Cell tagged union:

    empty string       -> blank cell
    parses as decimal  -> number cell
    anything else      -> text cell (dates included - the engine's date
                          layouts handle textual dates)

  Keeping the classification here means the engine never touches file
  formats, and tests can feed grids built by hand.

USAGE:
  grid, err := workbook.ReadGrid("march.xlsx", "")   // "" = first sheet

SEE ALSO:
  - sheet: The grid consumer
*/
package workbook

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/sales-recon/sheet"
)

// ReadGrid opens an xlsx file and decodes one worksheet into a grid.
// An empty sheetName selects the workbook's first sheet.
func ReadGrid(path, sheetName string) (sheet.Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return Grid(f, sheetName)
}

// Grid decodes one worksheet of an already-open workbook.
func Grid(f *excelize.File, sheetName string) (sheet.Grid, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	grid := make(sheet.Grid, len(rows))
	for i, row := range rows {
		cells := make([]sheet.Cell, len(row))
		for j, raw := range row {
			cells[j] = classify(raw)
		}
		grid[i] = cells
	}
	return grid, nil
}

// SheetNames lists the worksheets of an xlsx file, in workbook order.
// Callers use this to locate auxiliary sheets such as Employees_Map.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// classify maps one formatted cell value onto the tagged union. The dash
// sentinel stays text, and so does anything with a written decimal point:
// the engine's numeric policy must see the textual form to reject it.
func classify(raw string) sheet.Cell {
	if raw == "" {
		return sheet.BlankCell()
	}
	if !strings.Contains(raw, ".") {
		if d, err := decimal.NewFromString(raw); err == nil {
			return sheet.NumberCell(d)
		}
	}
	return sheet.TextCell(raw)
}
