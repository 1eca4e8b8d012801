package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"revenue-analytics-service/cmd/revenue/config"
	"revenue-analytics-service/internal/engine"
	"revenue-analytics-service/internal/models"
	"revenue-analytics-service/internal/normalizer"
	"revenue-analytics-service/internal/parsers"
	"revenue-analytics-service/internal/rates"
	"revenue-analytics-service/internal/reporter"
	"revenue-analytics-service/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the analyze command
var (
	ledgerFile   string
	snapshotFile string
	currency     string
	outputFormat string
	outputFile   string
	asOf         string
	topClients   int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute recurring-revenue analytics over a contract ledger",
	Long: `Analyze ingests a contract ledger — either a CSV export or a saved
JSON snapshot — and derives the full set of recurring-revenue analytics
under the selected display currency.

Examples:
  # Analyze a CSV ledger in CAD
  revenue analyze --ledger contracts.csv

  # Analyze a snapshot in USD, write the full result as JSON
  revenue analyze --snapshot data.json --currency USD \
    --output-format json --output-file report.json

  # Deterministic run pinned to a reference date
  revenue analyze --ledger contracts.csv --as-of 2024-12-01`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags (exactly one required)
	analyzeCmd.Flags().StringVarP(&ledgerFile, "ledger", "l", "", "path to contract ledger CSV file")
	analyzeCmd.Flags().StringVarP(&snapshotFile, "snapshot", "s", "", "path to JSON snapshot file")

	// Analysis flags
	analyzeCmd.Flags().StringVarP(&currency, "currency", "c", rates.PivotCurrency, "display currency code")
	analyzeCmd.Flags().StringVar(&asOf, "as-of", "", "reference date for 'current month' semantics (YYYY-MM-DD, default: today)")
	analyzeCmd.Flags().IntVar(&topClients, "top-clients", 10, "size of the top-clients ranking")

	// Output flags
	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	analyzeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	viper.BindPFlag("ledger", analyzeCmd.Flags().Lookup("ledger"))
	viper.BindPFlag("snapshot", analyzeCmd.Flags().Lookup("snapshot"))
	viper.BindPFlag("currency", analyzeCmd.Flags().Lookup("currency"))
	viper.BindPFlag("as-of", analyzeCmd.Flags().Lookup("as-of"))
	viper.BindPFlag("top-clients", analyzeCmd.Flags().Lookup("top-clients"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", analyzeCmd.Flags().Lookup("output-file"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file and env)
	ledgerFile = viper.GetString("ledger")
	snapshotFile = viper.GetString("snapshot")
	currency = viper.GetString("currency")
	asOf = viper.GetString("as-of")
	topClients = viper.GetInt("top-clients")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")

	if ledgerFile == "" && snapshotFile == "" {
		return fmt.Errorf("either --ledger or --snapshot is required")
	}
	if ledgerFile != "" && snapshotFile != "" {
		return fmt.Errorf("--ledger and --snapshot are mutually exclusive")
	}

	input := ledgerFile
	if input == "" {
		input = snapshotFile
	}
	if err := validateFileExists(input, "input file"); err != nil {
		return err
	}

	if currency == "" {
		return fmt.Errorf("display currency cannot be empty")
	}
	if !store.DefaultSnapshotConfig().HasCurrency(currency) {
		return fmt.Errorf("unknown display currency %q. Valid currencies: %v",
			currency, store.DefaultSnapshotConfig().Currencies)
	}

	if asOf != "" {
		if _, err := time.Parse("2006-01-02", asOf); err != nil {
			return fmt.Errorf("invalid as-of date format. Use YYYY-MM-DD: %w", err)
		}
	}

	if topClients <= 0 {
		return fmt.Errorf("top-clients must be positive")
	}

	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format %q. Valid formats: console, json, csv", outputFormat)
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	records, err := loadRecords()
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	contracts := normalizer.New(nil).NormalizeAll(records)

	analyticsEngine, err := engine.New(rates.DefaultRateService(), config.CreateEngineConfig(topClients, asOf))
	if err != nil {
		return fmt.Errorf("failed to create analytics engine: %w", err)
	}

	result := analyticsEngine.Analyze(contracts, currency)

	rep, err := reporter.NewReporter(config.CreateReportConfig(outputFormat))
	if err != nil {
		return fmt.Errorf("failed to create reporter: %w", err)
	}

	out, cleanup, err := openOutput()
	if err != nil {
		os.Exit(handler.HandleError(err))
	}
	defer cleanup()

	if err := rep.WriteReport(out, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func loadRecords() ([]models.RawRecord, error) {
	if snapshotFile != "" {
		snap, err := store.NewFileStore(snapshotFile).Load()
		if err != nil {
			return nil, err
		}
		return snap.Contracts, nil
	}

	parser, err := parsers.NewLedgerParser(config.CreateLedgerConfig())
	if err != nil {
		return nil, err
	}
	records, _, err := parser.ParseFile(ledgerFile)
	return records, err
}

func openOutput() (io.Writer, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
