// Package config assembles component configurations from CLI flag values.
package config

import (
	"time"

	"revenue-analytics-service/internal/engine"
	"revenue-analytics-service/internal/parsers"
	"revenue-analytics-service/internal/reporter"
	"revenue-analytics-service/pkg/logger"
)

// CreateLedgerConfig builds the parser configuration for contract
// ledger CSV files.
func CreateLedgerConfig() *parsers.LedgerConfig {
	return parsers.DefaultLedgerConfig()
}

// CreateEngineConfig builds the analytics engine configuration. An
// empty asOf pins the analysis to the wall clock; a YYYY-MM-DD value
// pins it to that date for deterministic runs.
func CreateEngineConfig(topClients int, asOf string) *engine.Config {
	config := engine.DefaultConfig()
	config.Logger = logger.GetGlobalLogger()

	if topClients > 0 {
		config.TopClients = topClients
	}

	if asOf != "" {
		// Flag validation has already checked the format.
		if ref, err := time.Parse("2006-01-02", asOf); err == nil {
			config.Now = func() time.Time { return ref.UTC() }
		}
	}

	return config
}

// CreateReportConfig builds the reporter configuration for the chosen
// output format.
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(format)
	return config
}
