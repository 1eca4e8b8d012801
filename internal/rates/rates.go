// Package rates provides point-in-time currency conversion rates.
//
// Every conversion in the system routes through a single pivot currency:
// a contract amount is multiplied by rate(origin, month) to reach the
// pivot, then divided by rate(display, month) to reach the display
// currency. The service is therefore defined as the multiplicative rate
// from one unit of a currency into the pivot at a point in time.
//
// Lookups are total: the pivot itself is always exactly 1, unknown
// month/currency pairs fall back to the current static table, and finally
// to 1. Rates are bucketed by calendar month, matching the monthly
// granularity of every other computation.
package rates

import (
	"fmt"
	"time"

	"revenue-analytics-service/internal/models"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// PivotCurrency is the currency all conversions route through.
const PivotCurrency = "CAD"

// RateService returns the multiplicative rate converting one unit of the
// given currency into the pivot currency at the given instant.
//
// Implementations must be deterministic and total: identical arguments
// always return identical results, the pivot currency returns exactly 1,
// and unknown inputs degrade to a best-effort rate rather than failing.
type RateService interface {
	Rate(currency string, at time.Time) decimal.Decimal
}

// StaticRateService serves rates from an in-memory monthly table with a
// current-rate fallback. Lookups are memoized per (currency, month) so
// the two hops of every conversion observe the same value.
type StaticRateService struct {
	historical map[string]map[string]decimal.Decimal // "YYYY-MM" -> currency -> rate to pivot
	current    map[string]decimal.Decimal            // currency -> rate to pivot
	cache      *gocache.Cache
}

// NewStaticRateService creates a service over the given tables. Nil maps
// are treated as empty; the built-in default tables are available through
// DefaultRateService.
func NewStaticRateService(historical map[string]map[string]decimal.Decimal, current map[string]decimal.Decimal) *StaticRateService {
	if historical == nil {
		historical = map[string]map[string]decimal.Decimal{}
	}
	if current == nil {
		current = map[string]decimal.Decimal{}
	}
	return &StaticRateService{
		historical: historical,
		current:    current,
		cache:      gocache.New(gocache.NoExpiration, 0),
	}
}

// DefaultRateService returns a service over the built-in CAD/USD/EUR
// tables (see table.go).
func DefaultRateService() *StaticRateService {
	return NewStaticRateService(historicalRates(), currentRates())
}

// Rate implements RateService.
func (s *StaticRateService) Rate(currency string, at time.Time) decimal.Decimal {
	if currency == PivotCurrency {
		return decimal.NewFromInt(1)
	}

	monthKey := models.MonthKey(at)
	cacheKey := fmt.Sprintf("%s|%s", currency, monthKey)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(decimal.Decimal)
	}

	rate := s.lookup(currency, monthKey)
	s.cache.Set(cacheKey, rate, gocache.NoExpiration)
	return rate
}

func (s *StaticRateService) lookup(currency, monthKey string) decimal.Decimal {
	if month, ok := s.historical[monthKey]; ok {
		if rate, ok := month[currency]; ok && rate.IsPositive() {
			return rate
		}
	}

	if rate, ok := s.current[currency]; ok && rate.IsPositive() {
		return rate
	}

	// Unknown currency: treat as pivot-equivalent rather than failing.
	return decimal.NewFromInt(1)
}

// Convert translates an amount from one currency to another at the given
// instant, routing through the pivot currency. This two-hop chain is the
// only conversion formula in the system; no direct cross-rate table exists.
func Convert(svc RateService, amount decimal.Decimal, from, to string, at time.Time) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.Mul(svc.Rate(from, at)).Div(svc.Rate(to, at))
}
