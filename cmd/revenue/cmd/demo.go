package cmd

import (
	"fmt"
	"os"

	"revenue-analytics-service/internal/store"

	"github.com/spf13/cobra"
)

var demoOut string

// demoCmd writes a small sample ledger so users can try the analyzer
// without real data.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Write a sample contract ledger CSV",
	Long: `Demo writes a small multi-currency contract ledger to disk so the
analyzer can be tried without real data.

Example:
  revenue demo --out sample.csv
  revenue analyze --ledger sample.csv`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoOut, "out", "sample_ledger.csv", "path to write the sample ledger to")
}

func runDemo(cmd *cobra.Command, args []string) error {
	f, err := os.Create(demoOut)
	if err != nil {
		return fmt.Errorf("failed to create sample ledger: %w", err)
	}
	defer f.Close()

	if err := store.WriteDemoLedger(f); err != nil {
		return fmt.Errorf("failed to write sample ledger: %w", err)
	}

	fmt.Printf("Sample ledger written to %s\n", demoOut)
	return nil
}
