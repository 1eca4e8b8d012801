package rates

import "github.com/shopspring/decimal"

// Built-in rate tables, expressed as the value of one unit of each
// currency in the pivot currency (CAD). The historical table covers the
// months the ledger data spans; anything outside it falls back to the
// current table.

func currentRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD": decimal.NewFromFloat(1.37),
		"EUR": decimal.NewFromFloat(1.47),
	}
}

func historicalRates() map[string]map[string]decimal.Decimal {
	table := map[string]map[string]float64{
		"2023-01": {"USD": 1.35, "EUR": 1.45},
		"2023-02": {"USD": 1.35, "EUR": 1.45},
		"2023-03": {"USD": 1.37, "EUR": 1.47},
		"2023-04": {"USD": 1.36, "EUR": 1.49},
		"2023-05": {"USD": 1.35, "EUR": 1.45},
		"2023-06": {"USD": 1.32, "EUR": 1.45},
		"2023-07": {"USD": 1.32, "EUR": 1.47},
		"2023-08": {"USD": 1.35, "EUR": 1.47},
		"2023-09": {"USD": 1.35, "EUR": 1.45},
		"2023-10": {"USD": 1.37, "EUR": 1.45},
		"2023-11": {"USD": 1.37, "EUR": 1.49},
		"2023-12": {"USD": 1.33, "EUR": 1.47},
		"2024-01": {"USD": 1.34, "EUR": 1.45},
		"2024-02": {"USD": 1.35, "EUR": 1.45},
		"2024-03": {"USD": 1.35, "EUR": 1.47},
		"2024-04": {"USD": 1.37, "EUR": 1.47},
		"2024-05": {"USD": 1.37, "EUR": 1.49},
		"2024-06": {"USD": 1.37, "EUR": 1.47},
		"2024-07": {"USD": 1.37, "EUR": 1.49},
		"2024-08": {"USD": 1.37, "EUR": 1.52},
		"2024-09": {"USD": 1.35, "EUR": 1.49},
		"2024-10": {"USD": 1.39, "EUR": 1.52},
		"2024-11": {"USD": 1.41, "EUR": 1.49},
		"2024-12": {"USD": 1.43, "EUR": 1.49},
	}

	out := make(map[string]map[string]decimal.Decimal, len(table))
	for month, currencies := range table {
		out[month] = make(map[string]decimal.Decimal, len(currencies))
		for currency, rate := range currencies {
			out[month][currency] = decimal.NewFromFloat(rate)
		}
	}
	return out
}

// CurrencySymbol returns the display symbol for a currency code.
func CurrencySymbol(currency string) string {
	switch currency {
	case "EUR":
		return "€"
	default:
		return "$"
	}
}
