package config

import (
	"testing"
	"time"

	"revenue-analytics-service/internal/reporter"
)

func TestCreateEngineConfig(t *testing.T) {
	t.Run("pins the clock to as-of", func(t *testing.T) {
		config := CreateEngineConfig(5, "2024-12-01")
		if config.TopClients != 5 {
			t.Errorf("TopClients = %d, want 5", config.TopClients)
		}
		want := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
		if got := config.Now(); !got.Equal(want) {
			t.Errorf("Now() = %v, want %v", got, want)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("empty as-of keeps the wall clock", func(t *testing.T) {
		config := CreateEngineConfig(10, "")
		before := time.Now().Add(-time.Minute)
		if got := config.Now(); got.Before(before) {
			t.Errorf("Now() = %v, want roughly the current time", got)
		}
	})

	t.Run("non-positive top count keeps the default", func(t *testing.T) {
		config := CreateEngineConfig(0, "")
		if config.TopClients <= 0 {
			t.Errorf("TopClients = %d, want positive default", config.TopClients)
		}
	})
}

func TestCreateReportConfig(t *testing.T) {
	config := CreateReportConfig("json")
	if config.Format != reporter.FormatJSON {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestCreateLedgerConfig(t *testing.T) {
	config := CreateLedgerConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if !config.HasHeader {
		t.Error("ledger config should expect a header row")
	}
}
