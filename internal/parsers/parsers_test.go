package parsers

import (
	"strings"
	"testing"

	"revenue-analytics-service/internal/normalizer"
	apperrors "revenue-analytics-service/pkg/errors"
)

func newTestParser(t *testing.T) *LedgerParser {
	t.Helper()
	p, err := NewLedgerParser(nil)
	if err != nil {
		t.Fatalf("NewLedgerParser() error = %v", err)
	}
	return p
}

func TestResolveColumn(t *testing.T) {
	config := DefaultLedgerConfig()

	tests := []struct {
		header string
		want   string
	}{
		{"Client Name", normalizer.ColClientName},
		{"client name", normalizer.ColClientName},
		{"  Start Date  ", normalizer.ColStartDate},
		{"DEVISE", normalizer.ColCurrency},
		{"MRR", normalizer.ColMRR},
		// Canonical spreadsheet headers pass through unchanged.
		{"Nom", "Nom"},
		{"# client ID", "# client ID"},
		{"Something Custom", "Something Custom"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := config.ResolveColumn(tt.header); got != tt.want {
				t.Errorf("ResolveColumn(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestLedgerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LedgerConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *LedgerConfig) {}, false},
		{"zero delimiter", func(c *LedgerConfig) { c.Delimiter = 0 }, true},
		{"blank required column", func(c *LedgerConfig) { c.RequiredColumns = []string{" "} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultLedgerConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	p := newTestParser(t)

	t.Run("aliased headers resolve to canonical columns", func(t *testing.T) {
		input := "Client Name,Start Date,Currency,MRR\n" +
			"Acme Corp,2024-01-01,USD,850\n"

		records, stats, err := p.Parse(strings.NewReader(input), "test.csv")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if stats.RowsParsed != 1 || stats.RowsSkipped != 0 {
			t.Errorf("stats = %+v, want 1 parsed, 0 skipped", stats)
		}

		rec := records[0]
		if got := rec.Get(normalizer.ColClientName); got != "Acme Corp" {
			t.Errorf("client name = %q, want Acme Corp", got)
		}
		if got := rec.Get(normalizer.ColStartDate); got != "2024-01-01" {
			t.Errorf("start date = %q", got)
		}
		if got := rec.Get(normalizer.ColCurrency); got != "USD" {
			t.Errorf("currency = %q", got)
		}
	})

	t.Run("canonical spreadsheet headers work unaliased", func(t *testing.T) {
		input := "Nom,# client ID,Start Date,Devise,MRR\n" +
			"Acme,CL-1,2024-01-01,CAD,100\n"

		records, _, err := p.Parse(strings.NewReader(input), "test.csv")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got := records[0].Get(normalizer.ColClientID); got != "CL-1" {
			t.Errorf("client ID = %q, want CL-1", got)
		}
	})

	t.Run("empty and blank rows are skipped", func(t *testing.T) {
		input := "Client Name,Start Date\n" +
			"Acme,2024-01-01\n" +
			",\n" +
			"   ,  \n" +
			"Beta,2024-02-01\n"

		records, stats, err := p.Parse(strings.NewReader(input), "test.csv")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(records) != 2 {
			t.Errorf("got %d records, want 2", len(records))
		}
		if stats.RowsSkipped != 2 {
			t.Errorf("RowsSkipped = %d, want 2", stats.RowsSkipped)
		}
	})

	t.Run("ragged rows keep the columns they have", func(t *testing.T) {
		input := "Client Name,Start Date,MRR\n" +
			"Acme,2024-01-01\n"

		records, _, err := p.Parse(strings.NewReader(input), "test.csv")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		rec := records[0]
		if got := rec.Get(normalizer.ColClientName); got != "Acme" {
			t.Errorf("client name = %q", got)
		}
		if got := rec.Get(normalizer.ColMRR); got != "" {
			t.Errorf("MRR = %q, want empty", got)
		}
	})

	t.Run("invalid UTF-8 rows are skipped", func(t *testing.T) {
		input := "Client Name,Start Date\n" +
			"Acme,2024-01-01\n" +
			"Bad\xff\xfe,2024-02-01\n"

		records, stats, err := p.Parse(strings.NewReader(input), "test.csv")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(records) != 1 {
			t.Errorf("got %d records, want 1", len(records))
		}
		if stats.RowsSkipped != 1 {
			t.Errorf("RowsSkipped = %d, want 1", stats.RowsSkipped)
		}
	})

	t.Run("missing required column fails", func(t *testing.T) {
		input := "Client Name,MRR\nAcme,100\n"

		_, _, err := p.Parse(strings.NewReader(input), "test.csv")
		if err == nil {
			t.Fatal("Parse() should fail without a start date column")
		}
		appErr, ok := apperrors.AsAnalyticsError(err)
		if !ok || appErr.Code != apperrors.CodeMissingColumn {
			t.Errorf("error = %v, want code %s", err, apperrors.CodeMissingColumn)
		}
	})

	t.Run("empty file fails", func(t *testing.T) {
		_, _, err := p.Parse(strings.NewReader(""), "empty.csv")
		if err == nil {
			t.Fatal("Parse() should fail on an empty file")
		}
		if appErr, ok := apperrors.AsAnalyticsError(err); !ok || appErr.Category != apperrors.CategoryParse {
			t.Errorf("error = %v, want parse category", err)
		}
	})
}

func TestParseFileNotFound(t *testing.T) {
	p := newTestParser(t)

	_, _, err := p.ParseFile("/nonexistent/ledger.csv")
	if err == nil {
		t.Fatal("ParseFile() should fail for a missing file")
	}
	appErr, ok := apperrors.AsAnalyticsError(err)
	if !ok || appErr.Code != apperrors.CodeFileNotFound {
		t.Errorf("error = %v, want code %s", err, apperrors.CodeFileNotFound)
	}
}

func TestHeaderlessConfigRejected(t *testing.T) {
	config := DefaultLedgerConfig()
	config.HasHeader = false
	p, err := NewLedgerParser(config)
	if err != nil {
		t.Fatalf("NewLedgerParser() error = %v", err)
	}

	_, _, err = p.Parse(strings.NewReader("Acme,2024-01-01\n"), "test.csv")
	if err == nil {
		t.Fatal("Parse() should reject headerless configuration")
	}
	if appErr, ok := apperrors.AsAnalyticsError(err); !ok || appErr.Category != apperrors.CategoryConfiguration {
		t.Errorf("error = %v, want configuration category", err)
	}
}
