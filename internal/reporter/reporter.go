// Package reporter renders aggregation results for human and machine
// consumers.
//
// Supported output formats:
//   - Console: readable tabular output for terminal display
//   - JSON: the full result object for programmatic consumption
//   - CSV: the financial roll-up table for spreadsheet applications
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"revenue-analytics-service/internal/engine"

	"github.com/shopspring/decimal"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Console section toggles
	IncludeEvolution    bool `json:"include_evolution"`
	IncludeVariation    bool `json:"include_variation"`
	IncludeFinancial    bool `json:"include_financial"`
	IncludeLeaderboards bool `json:"include_leaderboards"`
	IncludeChurn        bool `json:"include_churn"`
	IncludeTopClients   bool `json:"include_top_clients"`

	// MaxRows caps per-section console rows; 0 means unlimited.
	MaxRows int `json:"max_rows"`

	CSVDelimiter rune `json:"csv_delimiter"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:              FormatConsole,
		IncludeEvolution:    true,
		IncludeVariation:    true,
		IncludeFinancial:    true,
		IncludeLeaderboards: true,
		IncludeChurn:        true,
		IncludeTopClients:   true,
		MaxRows:             24,
		CSVDelimiter:        ',',
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max rows cannot be negative, got %d", c.MaxRows)
	}
	return nil
}

// Reporter renders analytics results.
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a reporter. A nil config uses defaults.
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &Reporter{config: config}, nil
}

// WriteReport renders the result in the configured format.
func (r *Reporter) WriteReport(w io.Writer, result *engine.Result) error {
	switch r.config.Format {
	case FormatJSON:
		return r.writeJSON(w, result)
	case FormatCSV:
		return r.writeCSV(w, result)
	default:
		return r.writeConsole(w, result)
	}
}

func (r *Reporter) writeJSON(w io.Writer, result *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// writeCSV emits the financial roll-up table, one row per month.
func (r *Reporter) writeCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = r.config.CSVDelimiter

	header := []string{
		"month", "beginning_mrr", "new", "upsell", "cross_sell", "churn",
		"ending_mrr", "net_growth", "growth_pct", "yoy_growth_pct", "churn_rate_pct",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range result.FinancialTable {
		yoy := ""
		if row.YoYGrowthPct != nil {
			yoy = row.YoYGrowthPct.String()
		}
		record := []string{
			row.Label,
			row.BeginningMRR.String(),
			row.NewSales.String(),
			row.Upsell.String(),
			row.CrossSell.String(),
			row.Churn.String(),
			row.EndingMRR.String(),
			row.NetGrowth.String(),
			row.GrowthPct.String(),
			yoy,
			row.ChurnRatePct.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (r *Reporter) writeConsole(w io.Writer, result *engine.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "RECURRING REVENUE REPORT (%s)\n", result.DisplayCurrency)
	fmt.Fprintf(&b, "Generated: %s\n", result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString(strings.Repeat("=", 68) + "\n\n")

	t := result.Totals
	b.WriteString("TOTALS\n")
	fmt.Fprintf(&b, "  Active MRR:        %s\n", money(t.MRR, result.DisplayCurrency))
	fmt.Fprintf(&b, "  Active contracts:  %d of %d\n", t.ActiveContracts, t.TotalContracts)
	fmt.Fprintf(&b, "  Active clients:    %d (of %d known)\n", t.ActiveClients, t.TotalClients)
	fmt.Fprintf(&b, "  Avg MRR / client:  %s\n", money(t.AvgMRRPerClient, result.DisplayCurrency))
	fmt.Fprintf(&b, "  Churned contracts: %d (%s%%)\n", t.ChurnCount, t.ChurnRatePct.String())
	fmt.Fprintf(&b, "  Total lost MRR:    %s\n", money(t.TotalLostMRR, result.DisplayCurrency))
	b.WriteString("\n")

	if r.config.IncludeEvolution && len(result.Evolution) > 0 {
		b.WriteString("MRR EVOLUTION\n")
		fmt.Fprintf(&b, "  %-8s %12s %12s %12s %12s %6s\n",
			"Month", "New", "Upsell", "Cross-sell", "Total", "Cts")
		for _, p := range tail(result.Evolution, r.config.MaxRows) {
			fmt.Fprintf(&b, "  %-8s %12s %12s %12s %12s %6d\n",
				p.Label, p.New.String(), p.Upsell.String(), p.CrossSell.String(),
				p.TotalMRR.String(), p.ActiveContracts)
		}
		b.WriteString("\n")
	}

	if r.config.IncludeVariation && len(result.Variation) > 0 {
		b.WriteString("MONTHLY MOVEMENT\n")
		fmt.Fprintf(&b, "  %-8s %10s %10s %10s %10s %10s\n",
			"Month", "New", "Upsell", "Cross", "Churn", "Net")
		for _, p := range tail(result.Variation, r.config.MaxRows) {
			fmt.Fprintf(&b, "  %-8s %10s %10s %10s %10s %10s\n",
				p.Label, p.New.String(), p.Upsell.String(), p.CrossSell.String(),
				p.Churn.String(), p.Net.String())
		}
		b.WriteString("\n")
	}

	if r.config.IncludeFinancial && len(result.FinancialTable) > 0 {
		b.WriteString("FINANCIAL ROLL-UP\n")
		fmt.Fprintf(&b, "  %-8s %12s %12s %10s %8s %8s %8s\n",
			"Month", "Beginning", "Ending", "Growth", "Grow%", "YoY%", "Churn%")
		for _, row := range tail(result.FinancialTable, r.config.MaxRows) {
			yoy := "-"
			if row.YoYGrowthPct != nil {
				yoy = row.YoYGrowthPct.String()
			}
			fmt.Fprintf(&b, "  %-8s %12s %12s %10s %8s %8s %8s\n",
				row.Label, row.BeginningMRR.String(), row.EndingMRR.String(),
				row.NetGrowth.String(), row.GrowthPct.String(), yoy,
				row.ChurnRatePct.String())
		}
		b.WriteString("\n")
	}

	if r.config.IncludeLeaderboards {
		writeBoard(&b, "CSM LEADERBOARD", result.Leaderboards.CSM, result.DisplayCurrency, r.config.MaxRows)
		writeBoard(&b, "AE LEADERBOARD", result.Leaderboards.AE, result.DisplayCurrency, r.config.MaxRows)
	}

	if r.config.IncludeTopClients && len(result.TopClients) > 0 {
		b.WriteString("TOP CLIENTS\n")
		for i, c := range result.TopClients {
			fmt.Fprintf(&b, "  %2d. %-28s %s\n", i+1, c.Name, money(c.MRR, result.DisplayCurrency))
		}
		b.WriteString("\n")
	}

	if r.config.IncludeChurn && len(result.Churn.List) > 0 {
		b.WriteString("CHURN\n")
		for _, f := range head(result.Churn.List, r.config.MaxRows) {
			month := f.Label
			if month == "" {
				month = "(no end date)"
			}
			fmt.Fprintf(&b, "  %-28s %-12s CSM: %-18s %s\n",
				f.ClientName, month, f.OwnerCSM, money(f.LostMRR, result.DisplayCurrency))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBoard(b *strings.Builder, title string, entries []engine.LeaderboardEntry, currency string, max int) {
	if len(entries) == 0 {
		return
	}
	b.WriteString(title + "\n")
	for i, e := range head(entries, max) {
		fmt.Fprintf(b, "  %2d. %-24s %12s  (%d contracts, %d clients)\n",
			i+1, e.Name, money(e.MRR, currency), e.Contracts, e.Clients)
	}
	b.WriteString("\n")
}

func money(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", amount.Round(0).String(), currency)
}

// tail returns the last max items, or all of them when max is 0. Time
// series are capped from the end so the most recent months stay visible.
func tail[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[len(items)-max:]
}

// head returns the first max items, or all of them when max is 0. Ranked
// lists are capped from the front.
func head[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}
