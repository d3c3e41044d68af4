/*
main.go - salesrecon command-line entry point

PURPOSE:
  One binary, four subcommands:

    serve      Run the HTTP API server
    import     Parse an xlsx export and (optionally) apply it to the ledger
    reconcile  Parse an xlsx export and diff it against the ledger
    lock       Set or clear a period lock

  Parsing and reconciliation logic lives in the sheet/recon packages; the
  commands here only wire files, flags, and the store together.

EXAMPLES:
  salesrecon serve --config ./salesrecon.yaml
  salesrecon import march.xlsx --boutique riyadh-01 --period 2026-03 --apply
  salesrecon reconcile march.xlsx --boutique riyadh-01 --period 2026-03
  salesrecon lock --boutique riyadh-01 --period 2026-02

SEE ALSO:
  - serve.go, import.go, reconcile.go, lock.go: Subcommand implementations
*/
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	log = logrus.New()

	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "salesrecon",
	Short: "Parse boutique sales sheets and reconcile them against the ledger",
	Long: `salesrecon ingests monthly per-employee sales sheets and matrix-template
exports, validates them, and reconciles the parsed facts against the
persisted ledger. Nothing is written unless the apply gate allows it.`,
	SilenceUsage: true,
}

func main() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
