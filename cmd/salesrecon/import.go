package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/warp/sales-recon/recon"
	"github.com/warp/sales-recon/sheet"
	"github.com/warp/sales-recon/store/sqlite"
	"github.com/warp/sales-recon/workbook"
)

// overrideSheetName is the auxiliary mapping sheet some exports carry.
const overrideSheetName = "Employees_Map"

var (
	importBoutique string
	importPeriod   string
	importSheet    string
	importMode     string
	importApply    bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Parse a sales sheet export and optionally apply it to the ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := parseWorkbook(ctx, store, args[0])
		if err != nil {
			return err
		}

		printParseReport(res)

		if !importApply {
			return nil
		}

		locked, err := store.IsLocked(ctx, importBoutique, importPeriod)
		if err != nil {
			return err
		}
		decision := recon.CanApply(res, locked)
		if !decision.Allowed {
			if _, err := store.RecordRejectedRun(ctx, importBoutique, importPeriod,
				"cli:"+importMode, len(res.Records), len(res.BlockingErrors)); err != nil {
				return err
			}
			return fmt.Errorf("apply refused: %s", joinReasons(decision.Reasons))
		}

		runID, err := store.ApplyRecords(ctx, importBoutique, importPeriod, "cli:"+importMode, res.Records)
		if err != nil {
			return err
		}
		fmt.Printf("Applied %d records to %s %s (run %s)\n",
			len(res.Records), importBoutique, importPeriod, runID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importBoutique, "boutique", "", "Boutique ID (required)")
	importCmd.Flags().StringVar(&importPeriod, "period", "", "Target period YYYY-MM (required)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "Worksheet name (default: first sheet)")
	importCmd.Flags().StringVar(&importMode, "mode", "monthly", "Sheet layout: monthly or matrix")
	importCmd.Flags().BoolVar(&importApply, "apply", false, "Persist records when the gate allows")
	importCmd.MarkFlagRequired("boutique")
	importCmd.MarkFlagRequired("period")
}

func openStore() (*sqlite.Store, error) {
	path := dbPath
	if path == "" {
		path = "sales.db"
	}
	return sqlite.New(path)
}

// parseWorkbook decodes the worksheet (and the Employees_Map override sheet
// when present) and runs the engine with the stored roster.
func parseWorkbook(ctx context.Context, store *sqlite.Store, path string) (*sheet.ParseResult, error) {
	roster, err := store.Roster(ctx, importBoutique)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	grid, err := workbook.Grid(f, importSheet)
	if err != nil {
		return nil, err
	}

	opts := sheet.Options{InferredYear: yearOf(importPeriod)}
	for _, name := range f.GetSheetList() {
		if name == overrideSheetName {
			overrideGrid, err := workbook.Grid(f, name)
			if err != nil {
				return nil, err
			}
			opts.Override = sheet.OverrideFromGrid(overrideGrid)
			break
		}
	}

	if importMode == "matrix" {
		return sheet.ParseMatrix(grid, roster, opts)
	}
	return sheet.ParseMonthly(grid, roster, opts)
}

func printParseReport(res *sheet.ParseResult) {
	fmt.Printf("Header row: %d, employee columns: %d (%d resolved), records: %d\n",
		res.HeaderRowIndex, len(res.EmployeeColumns), len(res.ResolvedColumns()), len(res.Records))

	for _, col := range res.UnmappedColumns() {
		fmt.Printf("  unmapped header at column %d: %q\n", col.ColumnIndex, col.RawText)
	}
	for _, be := range res.BlockingErrors {
		fmt.Printf("  blocking [%s] row %d col %d: %s\n", be.Kind, be.RowIndex, be.ColumnIndex, be.Message)
	}
}

func joinReasons(reasons []recon.Reason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

func yearOf(period string) int {
	y, _, _ := strings.Cut(period, "-")
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return year
}
