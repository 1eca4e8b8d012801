package parsers

import (
	"fmt"
	"strings"

	"revenue-analytics-service/internal/normalizer"
)

// LedgerConfig holds configuration for parsing contract ledger CSV files.
// Column aliases map alternative header spellings onto the canonical
// ledger column names the normalizer consumes.
type LedgerConfig struct {
	HasHeader     bool              `json:"has_header"`
	Delimiter     rune              `json:"delimiter"`
	ColumnAliases map[string]string `json:"column_aliases,omitempty"`

	// RequiredColumns must all be present in the header (after alias
	// resolution) for the file to be accepted.
	RequiredColumns []string `json:"required_columns,omitempty"`
}

// DefaultLedgerConfig returns a configuration accepting the spreadsheet
// export vocabulary plus common English shorthand headers.
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		HasHeader: true,
		Delimiter: ',',
		ColumnAliases: map[string]string{
			"client":         normalizer.ColClientName,
			"client name":    normalizer.ColClientName,
			"name":           normalizer.ColClientName,
			"client id":      normalizer.ColClientID,
			"client_id":      normalizer.ColClientID,
			"contract":       normalizer.ColContractSeq,
			"contract id":    normalizer.ColContractID,
			"contract_id":    normalizer.ColContractID,
			"ae":             normalizer.ColAE,
			"account exec":   normalizer.ColAE,
			"csm":            normalizer.ColCSM,
			"start status":   normalizer.ColStartStatus,
			"start date":     normalizer.ColStartDate,
			"start":          normalizer.ColStartDate,
			"sales type":     normalizer.ColSalesType,
			"type":           normalizer.ColSalesType,
			"end status":     normalizer.ColEndStatus,
			"end date":       normalizer.ColEndDate,
			"end":            normalizer.ColEndDate,
			"currency":       normalizer.ColCurrency,
			"devise":         normalizer.ColCurrency,
			"licenses":       normalizer.ColLicenses,
			"license count":  normalizer.ColLicenses,
			"license price":  normalizer.ColUnitPrice,
			"unit price":     normalizer.ColUnitPrice,
			"price":          normalizer.ColUnitPrice,
			"mrr":            normalizer.ColMRR,
		},
		RequiredColumns: []string{
			normalizer.ColClientName,
			normalizer.ColStartDate,
		},
	}
}

// Validate checks if the ledger configuration is valid
func (lc *LedgerConfig) Validate() error {
	if lc.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}

	for _, col := range lc.RequiredColumns {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("required column name cannot be empty")
		}
	}

	return nil
}

// ResolveColumn maps a raw header to its canonical ledger column name,
// checking aliases case-insensitively and passing unknown headers through
// unchanged.
func (lc *LedgerConfig) ResolveColumn(header string) string {
	header = strings.TrimSpace(header)
	if canonical, ok := lc.ColumnAliases[strings.ToLower(header)]; ok {
		return canonical
	}
	return header
}
