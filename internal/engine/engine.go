// Package engine implements the revenue aggregation core: it turns a
// flat list of canonical contracts into time-bucketed, currency-normalized
// financial aggregates — the monthly evolution and variation series, the
// client × month matrix, the financial roll-up table, global totals,
// owner leaderboards and churn attribution.
//
// The engine holds no mutable state. Analyze is a pure function of
// (contracts, display currency, injected clock and rate service) and is
// safe to call repeatedly or concurrently; every run recomputes the full
// result from scratch.
package engine

import (
	"fmt"
	"sort"
	"time"

	"revenue-analytics-service/internal/models"
	"revenue-analytics-service/internal/rates"
	"revenue-analytics-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Config holds configuration options for the analytics engine.
type Config struct {
	// TopClients is the size of the top-clients ranking.
	TopClients int

	// Now supplies the current time, injectable for deterministic runs.
	Now func() time.Time

	// Logger receives diagnostics such as defensive rate clamps.
	Logger logger.Logger
}

// DefaultConfig returns a default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		TopClients: 10,
		Now:        time.Now,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.TopClients <= 0 {
		return fmt.Errorf("top clients count must be positive, got %d", c.TopClients)
	}
	return nil
}

// Engine computes recurring-revenue analytics over a contract set.
type Engine struct {
	rates  rates.RateService
	now    func() time.Time
	log    logger.Logger
	config *Config
}

// New creates an analytics engine over the given rate service. A nil
// config uses defaults.
func New(rateSvc rates.RateService, config *Config) (*Engine, error) {
	if rateSvc == nil {
		return nil, fmt.Errorf("rate service is required")
	}

	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}
	log := config.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &Engine{
		rates:  rateSvc,
		now:    now,
		log:    log.WithComponent("engine"),
		config: config,
	}, nil
}

// rate returns the pivot rate for a currency at an instant, defensively
// clamped to 1 when the service violates its positive-rate contract.
func (e *Engine) rate(currency string, at time.Time) decimal.Decimal {
	rate := e.rates.Rate(currency, at)
	if !rate.IsPositive() {
		e.log.WithFields(logger.Fields{
			"currency": currency,
			"month":    models.MonthKey(at),
			"rate":     rate.String(),
		}).Warn("rate service returned non-positive rate, clamping to 1")
		return decimal.NewFromInt(1)
	}
	return rate
}

// convert translates an amount from its origin currency to the display
// currency at the given instant, routing through the pivot currency. This
// chain is used for every converted amount in the result so snapshot and
// delta views agree on the same facts.
func (e *Engine) convert(amount decimal.Decimal, from, to string, at time.Time) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.Mul(e.rate(from, at)).Div(e.rate(to, at))
}

// Analyze runs one full aggregation pass over the contract set under the
// given display currency. An empty contract set (or one with no parseable
// start date) yields empty series and zero totals, not an error.
func (e *Engine) Analyze(contracts []models.Contract, displayCurrency string) *Result {
	now := e.now().UTC()
	result := emptyResult(displayCurrency, now)

	if len(contracts) == 0 {
		return result
	}

	months := BuildCalendar(contracts, now)
	idx := buildMonthIndex(contracts)

	matrix := newMatrixAccumulator()

	for _, month := range months {
		ts := month.UnixMilli()
		label := models.MonthLabel(month)
		result.MatrixHeaders = append(result.MatrixHeaders, MonthRef{Timestamp: ts, Label: label})

		result.Evolution = append(result.Evolution,
			e.snapshotMonth(contracts, month, displayCurrency, matrix))
		result.Variation = append(result.Variation,
			e.movementMonth(contracts, idx, month, displayCurrency))
	}

	result.MatrixRows = matrix.rows(lastTimestamp(result.MatrixHeaders))
	result.FinancialTable = buildFinancialTable(result.Evolution, result.Variation)
	e.aggregateGlobal(contracts, displayCurrency, now, result)

	return result
}

// snapshotMonth accumulates the month's active-revenue snapshot and feeds
// the client matrix. A contract is active in the month when it started on
// or before the month's first instant and has not ended by it.
func (e *Engine) snapshotMonth(contracts []models.Contract, month time.Time, displayCurrency string, matrix *matrixAccumulator) EvolutionPoint {
	ts := month.UnixMilli()
	var totalNew, totalUpsell, totalCross, total decimal.Decimal
	activeContracts := 0
	activeClientIDs := make(map[string]struct{})

	for i := range contracts {
		c := &contracts[i]
		if !c.IsActiveAt(month) {
			continue
		}

		amount := e.convert(c.MRR, c.Currency, displayCurrency, month)

		switch c.Movement {
		case models.MovementUpsell:
			totalUpsell = totalUpsell.Add(amount)
		case models.MovementCrossSell:
			totalCross = totalCross.Add(amount)
		default:
			totalNew = totalNew.Add(amount)
		}
		total = total.Add(amount)
		activeContracts++
		if c.ClientID != "" {
			activeClientIDs[c.ClientID] = struct{}{}
		}

		matrix.add(c, ts, amount)
	}

	return EvolutionPoint{
		Timestamp:       ts,
		Label:           models.MonthLabel(month),
		New:             totalNew.Round(0),
		Upsell:          totalUpsell.Round(0),
		CrossSell:       totalCross.Round(0),
		TotalMRR:        total.Round(0),
		ActiveContracts: activeContracts,
		ActiveClients:   len(activeClientIDs),
	}
}

// movementMonth accumulates the month's deltas: contracts starting in
// exactly this month add under their movement type, churn-qualifying ends
// in this month subtract. Net is rounded from the unrounded component sum
// so it never drifts from the individually rounded parts by more than
// rounding error.
func (e *Engine) movementMonth(contracts []models.Contract, idx *monthIndex, month time.Time, displayCurrency string) VariationPoint {
	ts := month.UnixMilli()
	var vNew, vUpsell, vCross, vChurn decimal.Decimal

	for _, i := range idx.startsIn(ts) {
		c := &contracts[i]
		amount := e.convert(c.MRR, c.Currency, displayCurrency, month)
		switch c.Movement {
		case models.MovementUpsell:
			vUpsell = vUpsell.Add(amount)
		case models.MovementCrossSell:
			vCross = vCross.Add(amount)
		default:
			vNew = vNew.Add(amount)
		}
	}

	for _, i := range idx.churnsIn(ts) {
		c := &contracts[i]
		amount := e.convert(c.MRR, c.Currency, displayCurrency, month)
		vChurn = vChurn.Sub(amount)
	}

	return VariationPoint{
		Timestamp: ts,
		Label:     models.MonthLabel(month),
		New:       vNew.Round(0),
		Upsell:    vUpsell.Round(0),
		CrossSell: vCross.Round(0),
		Churn:     vChurn.Round(0),
		Net:       vNew.Add(vUpsell).Add(vCross).Add(vChurn).Round(0),
	}
}

// aggregateGlobal computes the non-monthly aggregates over all contracts
// at the current month: totals, owner leaderboards, top clients and churn
// attribution. Active amounts convert at the current month's rate; each
// churn loss converts at its own churn month's rate (at the current month
// when the churned contract has no end date). The asymmetry is
// intentional: losses are valued when they happened.
func (e *Engine) aggregateGlobal(contracts []models.Contract, displayCurrency string, now time.Time, result *Result) {
	var (
		totalActiveMRR decimal.Decimal
		totalLostMRR   decimal.Decimal
		churnCount     int
		activeCount    int

		clientIDs        = make(map[string]struct{})
		activeClientKeys = make(map[string]struct{})

		csmBoard = newLeaderboardAccumulator()
		aeBoard  = newLeaderboardAccumulator()
		clients  = newClientAccumulator()
		churn    = newChurnAccumulator()
	)

	for i := range contracts {
		c := &contracts[i]
		if c.ClientID != "" {
			clientIDs[c.ClientID] = struct{}{}
		}

		if c.IsChurned() {
			churnCount++
			churnAt := now
			if c.HasEnd() {
				churnAt = c.EndDate
			}
			lost := e.convert(c.MRR, c.Currency, displayCurrency, churnAt)
			totalLostMRR = totalLostMRR.Add(lost)
			churn.add(c, lost, churnAt, c.HasEnd())
			continue
		}

		if !c.IsActiveAt(now) {
			continue
		}

		activeCount++
		amount := e.convert(c.MRR, c.Currency, displayCurrency, now)
		totalActiveMRR = totalActiveMRR.Add(amount)
		activeClientKeys[c.ClientKey()] = struct{}{}

		csmBoard.add(c.OwnerCSM, c.ClientID, amount)
		aeBoard.add(c.OwnerAE, c.ClientID, amount)
		clients.add(c.ClientKey(), c.ClientName, amount)
	}

	totalClients := len(clientIDs)
	totals := Totals{
		MRR:             totalActiveMRR.Round(0),
		ActiveClients:   len(activeClientKeys),
		TotalClients:    totalClients,
		AvgMRRPerClient: decimal.Zero,
		TotalContracts:  len(contracts),
		ActiveContracts: activeCount,
		ChurnCount:      churnCount,
		ChurnRatePct:    decimal.Zero,
		TotalLostMRR:    totalLostMRR.Round(0),
	}
	if totalClients > 0 {
		totals.AvgMRRPerClient = totalActiveMRR.Div(decimal.NewFromInt(int64(totalClients))).Round(2)
	}
	if len(contracts) > 0 {
		totals.ChurnRatePct = decimal.NewFromInt(int64(churnCount)).
			Div(decimal.NewFromInt(int64(len(contracts)))).
			Mul(decimal.NewFromInt(100)).Round(2)
	}

	result.Totals = totals
	result.Leaderboards = Leaderboards{CSM: csmBoard.entries(), AE: aeBoard.entries()}
	result.TopClients = clients.top(e.config.TopClients)
	result.Churn = churn.attribution()
}

func lastTimestamp(headers []MonthRef) int64 {
	if len(headers) == 0 {
		return 0
	}
	return headers[len(headers)-1].Timestamp
}

// buildFinancialTable derives the month-over-month roll-up from the
// evolution and variation series. Beginning MRR is the prior month's
// ending value (zero for the first month); growth and churn-rate
// percentages guard division by zero; year-over-year growth stays nil
// until twelve prior months exist so consumers can tell "unavailable"
// from "0%".
func buildFinancialTable(evolution []EvolutionPoint, variation []VariationPoint) []FinancialRow {
	table := make([]FinancialRow, 0, len(evolution))
	hundred := decimal.NewFromInt(100)

	for i, evo := range evolution {
		vari := VariationPoint{}
		if i < len(variation) {
			vari = variation[i]
		}

		beginning := decimal.Zero
		if i > 0 {
			beginning = evolution[i-1].TotalMRR
		}
		ending := evo.TotalMRR
		netGrowth := ending.Sub(beginning)

		row := FinancialRow{
			Timestamp:    evo.Timestamp,
			Label:        evo.Label,
			BeginningMRR: beginning,
			Churn:        vari.Churn,
			Upsell:       vari.Upsell,
			NewSales:     vari.New,
			CrossSell:    vari.CrossSell,
			EndingMRR:    ending,
			NetGrowth:    netGrowth,
			GrowthPct:    decimal.Zero,
			ChurnRatePct: decimal.Zero,
		}

		if !beginning.IsZero() {
			row.GrowthPct = netGrowth.Div(beginning).Mul(hundred).Round(2)
			row.ChurnRatePct = vari.Churn.Abs().Div(beginning).Mul(hundred).Round(2)
		}

		if i >= 12 {
			prevYear := evolution[i-12].TotalMRR
			yoy := decimal.Zero
			if !prevYear.IsZero() {
				yoy = ending.Sub(prevYear).Div(prevYear).Mul(hundred).Round(2)
			}
			row.YoYGrowthPct = &yoy
		}

		table = append(table, row)
	}

	return table
}

// sortStableDesc sorts entries descending by the given amount extractor,
// preserving input order on ties.
func sortStableDesc[T any](items []T, amount func(T) decimal.Decimal) {
	sort.SliceStable(items, func(i, j int) bool {
		return amount(items[i]).GreaterThan(amount(items[j]))
	})
}
