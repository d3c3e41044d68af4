package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	lockBoutique string
	lockPeriod   string
	lockUnlock   bool
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock or unlock a ledger period",
	Long: `A locked period refuses every apply, both at the gate and again inside
the write transaction. Lock a period once its figures are signed off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		locked := !lockUnlock
		if err := store.SetLocked(context.Background(), lockBoutique, lockPeriod, locked); err != nil {
			return err
		}

		state := "locked"
		if !locked {
			state = "unlocked"
		}
		fmt.Printf("%s %s is now %s\n", lockBoutique, lockPeriod, state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.Flags().StringVar(&lockBoutique, "boutique", "", "Boutique ID (required)")
	lockCmd.Flags().StringVar(&lockPeriod, "period", "", "Period YYYY-MM (required)")
	lockCmd.Flags().BoolVar(&lockUnlock, "unlock", false, "Clear the lock instead of setting it")
	lockCmd.MarkFlagRequired("boutique")
	lockCmd.MarkFlagRequired("period")
}
