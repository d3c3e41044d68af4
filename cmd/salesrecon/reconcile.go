package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/sales-recon/recon"
)

var (
	reconBoutique    string
	reconPeriod      string
	reconSheet       string
	reconMode        string
	reconIncludeZero bool
	reconTolerance   int64
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <file.xlsx>",
	Short: "Diff a sales sheet export against the persisted ledger",
	Long: `Parses the export and reports every (date, employee) fact that is
missing from the ledger, present only in the ledger, or present in both
with a different amount. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		// Reuse the import command's workbook plumbing.
		importBoutique, importPeriod = reconBoutique, reconPeriod
		importSheet, importMode = reconSheet, reconMode

		res, err := parseWorkbook(ctx, store, args[0])
		if err != nil {
			return err
		}

		ledger, err := store.LedgerMap(ctx, reconBoutique, reconPeriod)
		if err != nil {
			return err
		}

		fileMap := recon.FileMap(res, reconIncludeZero)
		var diff []recon.DiffEntry
		if reconTolerance > 0 {
			diff = recon.ReconcileWithTolerance(fileMap, ledger, reconTolerance)
		} else {
			diff = recon.Reconcile(fileMap, ledger)
		}

		for _, e := range diff {
			switch e.Kind {
			case recon.MissingInStore:
				fmt.Printf("missing   %s %s  file=%d\n", e.Key.DateKey, e.Key.EmployeeID, e.FileAmount)
			case recon.ExtraInStore:
				fmt.Printf("extra     %s %s  store=%d\n", e.Key.DateKey, e.Key.EmployeeID, e.StoreAmount)
			case recon.Mismatch:
				fmt.Printf("mismatch  %s %s  file=%d store=%d delta=%+d\n",
					e.Key.DateKey, e.Key.EmployeeID, e.FileAmount, e.StoreAmount, e.Delta)
			}
		}

		s := recon.Summarize(diff)
		fmt.Printf("Missing: %d, extra: %d, mismatched: %d, net delta: %+d\n",
			s.Missing, s.Extra, s.Mismatched, s.NetDelta)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().StringVar(&reconBoutique, "boutique", "", "Boutique ID (required)")
	reconcileCmd.Flags().StringVar(&reconPeriod, "period", "", "Ledger period YYYY-MM (required)")
	reconcileCmd.Flags().StringVar(&reconSheet, "sheet", "", "Worksheet name (default: first sheet)")
	reconcileCmd.Flags().StringVar(&reconMode, "mode", "monthly", "Sheet layout: monthly or matrix")
	reconcileCmd.Flags().BoolVar(&reconIncludeZero, "include-zero", false, "Materialize zero-amount records as keys")
	reconcileCmd.Flags().Int64Var(&reconTolerance, "tolerance", 0, "Mismatch tolerance band in currency units")
	reconcileCmd.MarkFlagRequired("boutique")
	reconcileCmd.MarkFlagRequired("period")
}
