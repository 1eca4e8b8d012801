package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthRef identifies one calendar month of the analysis range. Timestamp
// is the epoch-millisecond instant of the first day of the month (UTC).
type MonthRef struct {
	Timestamp int64  `json:"timestamp"`
	Label     string `json:"label"`
}

// EvolutionPoint is one month's snapshot of all active revenue, broken
// down by the movement type that originated each contract. Monetary
// fields are rounded to whole display-currency units.
type EvolutionPoint struct {
	Timestamp       int64           `json:"timestamp"`
	Label           string          `json:"label"`
	New             decimal.Decimal `json:"new"`
	Upsell          decimal.Decimal `json:"upsell"`
	CrossSell       decimal.Decimal `json:"crossSell"`
	TotalMRR        decimal.Decimal `json:"totalMRR"`
	ActiveContracts int             `json:"activeContracts"`
	ActiveClients   int             `json:"activeClients"`
}

// VariationPoint is one month's movement decomposition: revenue added by
// contracts starting that month and revenue lost to contracts churning
// that month. Churn is negative; Net is the rounded sum of the unrounded
// components.
type VariationPoint struct {
	Timestamp int64           `json:"timestamp"`
	Label     string          `json:"label"`
	New       decimal.Decimal `json:"new"`
	Upsell    decimal.Decimal `json:"upsell"`
	CrossSell decimal.Decimal `json:"crossSell"`
	Churn     decimal.Decimal `json:"churn"`
	Net       decimal.Decimal `json:"net"`
}

// ContractHistory is the per-month active MRR of a single contract line,
// used for drill-down inside a client's matrix row.
type ContractHistory struct {
	ID      string                    `json:"id"`
	Name    string                    `json:"name"`
	History map[int64]decimal.Decimal `json:"history"`
}

// MatrixRow is one client's per-month active-revenue history. Total is
// the value at the latest calendar month; rows are sorted descending by
// it, ties in input order.
type MatrixRow struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Total     decimal.Decimal           `json:"total"`
	History   map[int64]decimal.Decimal `json:"history"`
	Contracts []ContractHistory         `json:"contracts"`
}

// FinancialRow is one month of the financial roll-up table. YoYGrowthPct
// is nil until twelve prior months exist, so consumers can render it as
// unavailable rather than zero.
type FinancialRow struct {
	Timestamp    int64            `json:"timestamp"`
	Label        string           `json:"label"`
	BeginningMRR decimal.Decimal  `json:"beginningMRR"`
	Churn        decimal.Decimal  `json:"churn"`
	Upsell       decimal.Decimal  `json:"upsell"`
	NewSales     decimal.Decimal  `json:"newSales"`
	CrossSell    decimal.Decimal  `json:"crossSell"`
	EndingMRR    decimal.Decimal  `json:"endingMRR"`
	NetGrowth    decimal.Decimal  `json:"netGrowth"`
	GrowthPct    decimal.Decimal  `json:"growthPct"`
	YoYGrowthPct *decimal.Decimal `json:"yoyGrowthPct,omitempty"`
	ChurnRatePct decimal.Decimal  `json:"churnRatePct"`
}

// LeaderboardEntry ranks one CSM or AE by the active MRR they own at the
// time of the run.
type LeaderboardEntry struct {
	Name      string          `json:"name"`
	MRR       decimal.Decimal `json:"mrr"`
	Contracts int             `json:"contracts"`
	Clients   int             `json:"clients"`
}

// ChurnBucket aggregates churn losses attributed to one CSM or AE.
type ChurnBucket struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	LostMRR decimal.Decimal `json:"lostMRR"`
}

// ChurnFact records one churned contract: who lost it and how much,
// converted at the churn month's rate.
type ChurnFact struct {
	ClientName string          `json:"clientName"`
	OwnerCSM   string          `json:"ownerCSM"`
	OwnerAE    string          `json:"ownerAE"`
	LostMRR    decimal.Decimal `json:"lostMRR"`
	Timestamp  int64           `json:"timestamp"`
	Label      string          `json:"label"`
}

// TimelinePoint aggregates churn per calendar month.
type TimelinePoint struct {
	Timestamp int64           `json:"timestamp"`
	Label     string          `json:"label"`
	Count     int             `json:"count"`
	LostMRR   decimal.Decimal `json:"lostMRR"`
}

// ClientTotal ranks one client by active MRR at the time of the run.
type ClientTotal struct {
	Key  string          `json:"key"`
	Name string          `json:"name"`
	MRR  decimal.Decimal `json:"mrr"`
}

// Totals are the global, non-monthly aggregates computed over all
// contracts at the current wall-clock month. Active amounts convert at
// the current month's rate; lost amounts convert at each contract's own
// churn month.
type Totals struct {
	MRR             decimal.Decimal `json:"mrr"`
	ActiveClients   int             `json:"activeClients"`
	TotalClients    int             `json:"totalClients"`
	AvgMRRPerClient decimal.Decimal `json:"avgMRRPerClient"`
	TotalContracts  int             `json:"totalContracts"`
	ActiveContracts int             `json:"activeContracts"`
	ChurnCount      int             `json:"churnCount"`
	ChurnRatePct    decimal.Decimal `json:"churnRatePct"`
	TotalLostMRR    decimal.Decimal `json:"totalLostMRR"`
}

// Leaderboards holds the CSM and AE rankings by owned active MRR.
type Leaderboards struct {
	CSM []LeaderboardEntry `json:"csm"`
	AE  []LeaderboardEntry `json:"ae"`
}

// ChurnAttribution groups every churn-derived view: per-owner buckets,
// the monthly timeline, and the individual facts sorted by lost amount.
type ChurnAttribution struct {
	ByCSM    []ChurnBucket   `json:"byCSM"`
	ByAE     []ChurnBucket   `json:"byAE"`
	Timeline []TimelinePoint `json:"timeline"`
	List     []ChurnFact     `json:"list"`
}

// Result is the complete output of one aggregation run. It is recomputed
// wholesale on every call; consumers must not mutate it.
type Result struct {
	DisplayCurrency string           `json:"displayCurrency"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Evolution       []EvolutionPoint `json:"evolution"`
	Variation       []VariationPoint `json:"variation"`
	MatrixHeaders   []MonthRef       `json:"matrixHeaders"`
	MatrixRows      []MatrixRow      `json:"matrixRows"`
	FinancialTable  []FinancialRow   `json:"financialTable"`
	Totals          Totals           `json:"totals"`
	Leaderboards    Leaderboards     `json:"leaderboards"`
	Churn           ChurnAttribution `json:"churn"`
	TopClients      []ClientTotal    `json:"topClients"`
}

func emptyResult(displayCurrency string, generatedAt time.Time) *Result {
	return &Result{
		DisplayCurrency: displayCurrency,
		GeneratedAt:     generatedAt,
		Evolution:       []EvolutionPoint{},
		Variation:       []VariationPoint{},
		MatrixHeaders:   []MonthRef{},
		MatrixRows:      []MatrixRow{},
		FinancialTable:  []FinancialRow{},
		Totals: Totals{
			MRR:             decimal.Zero,
			AvgMRRPerClient: decimal.Zero,
			ChurnRatePct:    decimal.Zero,
			TotalLostMRR:    decimal.Zero,
		},
		Leaderboards: Leaderboards{CSM: []LeaderboardEntry{}, AE: []LeaderboardEntry{}},
		Churn: ChurnAttribution{
			ByCSM:    []ChurnBucket{},
			ByAE:     []ChurnBucket{},
			Timeline: []TimelinePoint{},
			List:     []ChurnFact{},
		},
		TopClients: []ClientTotal{},
	}
}
