package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jewelstock.GO/config"
	inventoryService "jewelstock.GO/service/inventory"
)

var deriveBatch int

var deriveCmd = &cobra.Command{
	Use:   "lots:derive",
	Short: "Derive material lots for purchases that have none",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		res, err := inventoryService.DeriveMissingLots(db, deriveBatch)
		if err != nil {
			fmt.Printf("Backfill failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Backfill Report ===
Purchases scanned: %d
Lots created:      %d
Skipped:           %d
=======================
`, res.Scanned, res.Created, res.Skipped)
	},
}

func init() {
	deriveCmd.Flags().IntVar(&deriveBatch, "batch-size", 500, "Batch size for the purchase scan")
	rootCmd.AddCommand(deriveCmd)
}
