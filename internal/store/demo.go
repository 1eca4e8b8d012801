package store

import (
	"encoding/csv"
	"io"

	"revenue-analytics-service/internal/models"
	"revenue-analytics-service/internal/normalizer"
)

// demoColumns is the header of the demo ledger, in spreadsheet order.
var demoColumns = []string{
	normalizer.ColClientName,
	normalizer.ColClientID,
	normalizer.ColContractSeq,
	normalizer.ColContractID,
	normalizer.ColAE,
	normalizer.ColCSM,
	normalizer.ColStartStatus,
	normalizer.ColStartDate,
	normalizer.ColSalesType,
	normalizer.ColEndStatus,
	normalizer.ColEndDate,
	normalizer.ColCurrency,
	normalizer.ColLicenses,
	normalizer.ColUnitPrice,
	normalizer.ColMRR,
}

// DemoRecords returns a small realistic ledger used to try the pipeline:
// multi-currency clients, an upsell, and a churned contract.
func DemoRecords() []models.RawRecord {
	rows := [][]string{
		{"Abbott", "1", "1", "1-1", "John Doe", "Alice Smith", "Active", "2023-02-01", "N", "", "", "CAD", "10", "50", "500"},
		{"Beaumont", "2", "1", "2-1", "Jane Smith", "Bob Johnson", "Active", "2023-07-01", "N", "", "", "USD", "20", "45", "900"},
		{"Abipa", "3", "1", "3-1", "John Doe", "Alice Smith", "Active", "2023-04-01", "N", "", "", "EUR", "15", "55", "825"},
		{"Abipa", "3", "2", "3-2", "John Doe", "Alice Smith", "Active", "2023-10-01", "U", "", "", "EUR", "5", "55", "275"},
		{"Acme Corp", "4", "1", "4-1", "Jane Smith", "Bob Johnson", "Active", "2024-02-01", "N", "Churn", "2024-08-31", "CAD", "8", "60", "480"},
		{"TechStart Inc", "5", "1", "5-1", "Mike Brown", "Carol White", "Active", "2023-06-01", "N", "", "", "CAD", "12", "40", "480"},
		{"TechStart Inc", "5", "2", "5-2", "Mike Brown", "Carol White", "Active", "2024-03-01", "C", "", "", "CAD", "4", "40", "160"},
	}

	records := make([]models.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := make(models.RawRecord, len(demoColumns))
		for i, col := range demoColumns {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
	return records
}

// WriteDemoLedger writes the demo ledger as CSV.
func WriteDemoLedger(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(demoColumns); err != nil {
		return err
	}
	for _, rec := range DemoRecords() {
		row := make([]string, len(demoColumns))
		for i, col := range demoColumns {
			row[i] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
