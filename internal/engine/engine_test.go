package engine

import (
	"reflect"
	"testing"
	"time"

	"revenue-analytics-service/internal/models"
	"revenue-analytics-service/internal/rates"

	"github.com/shopspring/decimal"
)

func newTestEngine(t *testing.T, now time.Time, topClients int) *Engine {
	t.Helper()
	config := DefaultConfig()
	config.Now = func() time.Time { return now }
	if topClients > 0 {
		config.TopClients = topClients
	}
	e, err := New(rates.DefaultRateService(), config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func ts(y int, m time.Month) int64 {
	return date(y, m, 1).UnixMilli()
}

// fixtureContracts is a small multi-month book: two January starts, a
// March upsell, and one contract churning at the June month boundary.
func fixtureContracts() []models.Contract {
	return []models.Contract{
		{
			ClientID: "CL-A", ClientName: "Acme Corp", ContractID: "CT-A", ContractSeq: "1",
			StartDate: date(2023, time.January, 10), EndDate: date(2023, time.June, 1),
			StatusText: "Churned", Movement: models.MovementNew,
			MRR: dec(100), Currency: "CAD", OwnerCSM: "Alice", OwnerAE: "Dana",
		},
		{
			ClientID: "CL-B", ClientName: "Beta Inc", ContractID: "CT-B", ContractSeq: "1",
			StartDate:  date(2023, time.January, 20),
			StatusText: "Active", Movement: models.MovementNew,
			MRR: dec(100), Currency: "CAD", OwnerCSM: "Alice", OwnerAE: "Eve",
		},
		{
			ClientID: "CL-C", ClientName: "Gamma LLC", ContractID: "CT-C", ContractSeq: "2",
			StartDate:  date(2023, time.March, 5),
			StatusText: "Active", Movement: models.MovementUpsell,
			MRR: dec(50), Currency: "CAD", OwnerCSM: "Bob", OwnerAE: "Dana",
		},
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	e := newTestEngine(t, date(2024, time.June, 15), 0)

	for _, contracts := range [][]models.Contract{nil, {}} {
		result := e.Analyze(contracts, "CAD")

		if result.DisplayCurrency != "CAD" {
			t.Errorf("DisplayCurrency = %q, want CAD", result.DisplayCurrency)
		}
		if len(result.Evolution) != 0 || len(result.Variation) != 0 ||
			len(result.MatrixRows) != 0 || len(result.FinancialTable) != 0 {
			t.Error("empty input should yield empty series")
		}
		if !result.Totals.MRR.IsZero() || result.Totals.TotalContracts != 0 {
			t.Errorf("empty input should yield zero totals, got %+v", result.Totals)
		}
	}
}

func TestAnalyzeEvolution(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	result := e.Analyze(fixtureContracts(), "CAD")

	if len(result.Evolution) != 8 {
		t.Fatalf("Evolution has %d points, want 8 (Jan-Aug 2023)", len(result.Evolution))
	}

	byTs := make(map[int64]EvolutionPoint, len(result.Evolution))
	for _, p := range result.Evolution {
		byTs[p.Timestamp] = p
	}

	tests := []struct {
		month         time.Month
		wantNew       int64
		wantUpsell    int64
		wantTotal     int64
		wantContracts int
		wantClients   int
	}{
		{time.January, 200, 0, 200, 2, 2},
		{time.February, 200, 0, 200, 2, 2},
		{time.March, 200, 50, 250, 3, 3},
		{time.May, 200, 50, 250, 3, 3},
		// Acme's end date falls on the June boundary, so it is out of June.
		{time.June, 100, 50, 150, 2, 2},
		{time.August, 100, 50, 150, 2, 2},
	}

	for _, tt := range tests {
		p, ok := byTs[ts(2023, tt.month)]
		if !ok {
			t.Fatalf("no evolution point for %v 2023", tt.month)
		}
		if !p.New.Equal(dec(tt.wantNew)) || !p.Upsell.Equal(dec(tt.wantUpsell)) || !p.TotalMRR.Equal(dec(tt.wantTotal)) {
			t.Errorf("%v: new=%s upsell=%s total=%s, want %d/%d/%d",
				tt.month, p.New, p.Upsell, p.TotalMRR, tt.wantNew, tt.wantUpsell, tt.wantTotal)
		}
		if p.ActiveContracts != tt.wantContracts || p.ActiveClients != tt.wantClients {
			t.Errorf("%v: contracts=%d clients=%d, want %d/%d",
				tt.month, p.ActiveContracts, p.ActiveClients, tt.wantContracts, tt.wantClients)
		}
	}

	if result.Evolution[0].Label != "Jan 23" {
		t.Errorf("first label = %q, want %q", result.Evolution[0].Label, "Jan 23")
	}
}

func TestAnalyzeVariation(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	result := e.Analyze(fixtureContracts(), "CAD")

	byTs := make(map[int64]VariationPoint, len(result.Variation))
	for _, p := range result.Variation {
		byTs[p.Timestamp] = p
	}

	jan := byTs[ts(2023, time.January)]
	if !jan.New.Equal(dec(200)) || !jan.Net.Equal(dec(200)) {
		t.Errorf("January: new=%s net=%s, want 200/200", jan.New, jan.Net)
	}

	mar := byTs[ts(2023, time.March)]
	if !mar.Upsell.Equal(dec(50)) || !mar.Net.Equal(dec(50)) {
		t.Errorf("March: upsell=%s net=%s, want 50/50", mar.Upsell, mar.Net)
	}

	jun := byTs[ts(2023, time.June)]
	if !jun.Churn.Equal(dec(-100)) || !jun.Net.Equal(dec(-100)) {
		t.Errorf("June: churn=%s net=%s, want -100/-100", jun.Churn, jun.Net)
	}

	// Months with no starts or churns are all-zero.
	for _, m := range []time.Month{time.February, time.April, time.July} {
		p := byTs[ts(2023, m)]
		if !p.New.IsZero() || !p.Upsell.IsZero() || !p.CrossSell.IsZero() || !p.Churn.IsZero() || !p.Net.IsZero() {
			t.Errorf("%v should be all-zero, got %+v", m, p)
		}
	}
}

func TestAnalyzeTotals(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	result := e.Analyze(fixtureContracts(), "CAD")

	totals := result.Totals
	if !totals.MRR.Equal(dec(150)) {
		t.Errorf("MRR = %s, want 150", totals.MRR)
	}
	if totals.ActiveClients != 2 || totals.TotalClients != 3 {
		t.Errorf("clients = %d active / %d total, want 2/3", totals.ActiveClients, totals.TotalClients)
	}
	if totals.TotalContracts != 3 || totals.ActiveContracts != 2 {
		t.Errorf("contracts = %d total / %d active, want 3/2", totals.TotalContracts, totals.ActiveContracts)
	}
	if totals.ChurnCount != 1 {
		t.Errorf("ChurnCount = %d, want 1", totals.ChurnCount)
	}
	if !totals.TotalLostMRR.Equal(dec(100)) {
		t.Errorf("TotalLostMRR = %s, want 100", totals.TotalLostMRR)
	}
	// 150 active MRR over 3 known clients.
	if !totals.AvgMRRPerClient.Equal(dec(50)) {
		t.Errorf("AvgMRRPerClient = %s, want 50", totals.AvgMRRPerClient)
	}
	// 1 churned of 3 contracts.
	if !totals.ChurnRatePct.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("ChurnRatePct = %s, want 33.33", totals.ChurnRatePct)
	}
}

func TestAnalyzeLeaderboards(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	result := e.Analyze(fixtureContracts(), "CAD")

	// The churned Acme contract is out of both boards.
	csm := result.Leaderboards.CSM
	if len(csm) != 2 {
		t.Fatalf("CSM board has %d entries, want 2", len(csm))
	}
	if csm[0].Name != "Alice" || !csm[0].MRR.Equal(dec(100)) || csm[0].Contracts != 1 || csm[0].Clients != 1 {
		t.Errorf("CSM[0] = %+v, want Alice 100/1/1", csm[0])
	}
	if csm[1].Name != "Bob" || !csm[1].MRR.Equal(dec(50)) {
		t.Errorf("CSM[1] = %+v, want Bob 50", csm[1])
	}

	ae := result.Leaderboards.AE
	if len(ae) != 2 {
		t.Fatalf("AE board has %d entries, want 2", len(ae))
	}
	if ae[0].Name != "Eve" || !ae[0].MRR.Equal(dec(100)) {
		t.Errorf("AE[0] = %+v, want Eve 100", ae[0])
	}
	if ae[1].Name != "Dana" || !ae[1].MRR.Equal(dec(50)) {
		t.Errorf("AE[1] = %+v, want Dana 50", ae[1])
	}
}

func TestAnalyzeTopClients(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 2)
	result := e.Analyze(fixtureContracts(), "CAD")

	if len(result.TopClients) != 2 {
		t.Fatalf("TopClients has %d entries, want 2", len(result.TopClients))
	}
	if result.TopClients[0].Key != "CL-B" || !result.TopClients[0].MRR.Equal(dec(100)) {
		t.Errorf("TopClients[0] = %+v, want CL-B 100", result.TopClients[0])
	}
	if result.TopClients[1].Key != "CL-C" || !result.TopClients[1].MRR.Equal(dec(50)) {
		t.Errorf("TopClients[1] = %+v, want CL-C 50", result.TopClients[1])
	}
}

func TestAnalyzeChurnAttribution(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	result := e.Analyze(fixtureContracts(), "CAD")
	churn := result.Churn

	if len(churn.ByCSM) != 1 || churn.ByCSM[0].Name != "Alice" ||
		churn.ByCSM[0].Count != 1 || !churn.ByCSM[0].LostMRR.Equal(dec(100)) {
		t.Errorf("ByCSM = %+v, want [Alice 1x100]", churn.ByCSM)
	}
	if len(churn.ByAE) != 1 || churn.ByAE[0].Name != "Dana" {
		t.Errorf("ByAE = %+v, want [Dana]", churn.ByAE)
	}

	if len(churn.Timeline) != 1 {
		t.Fatalf("Timeline has %d points, want 1", len(churn.Timeline))
	}
	point := churn.Timeline[0]
	if point.Timestamp != ts(2023, time.June) || point.Count != 1 || !point.LostMRR.Equal(dec(100)) {
		t.Errorf("Timeline[0] = %+v, want June 2023 1x100", point)
	}

	if len(churn.List) != 1 {
		t.Fatalf("List has %d facts, want 1", len(churn.List))
	}
	fact := churn.List[0]
	if fact.ClientName != "Acme Corp" || !fact.LostMRR.Equal(dec(100)) || fact.Label != "Jun 23" {
		t.Errorf("List[0] = %+v, want Acme Corp 100 Jun 23", fact)
	}
}

func TestAnalyzeMatrix(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	result := e.Analyze(fixtureContracts(), "CAD")

	if len(result.MatrixHeaders) != 8 {
		t.Fatalf("MatrixHeaders has %d months, want 8", len(result.MatrixHeaders))
	}
	if len(result.MatrixRows) != 3 {
		t.Fatalf("MatrixRows has %d rows, want 3", len(result.MatrixRows))
	}

	// Rows sort descending by the latest month's value: Beta (100),
	// Gamma (50), then churned Acme (0).
	wantOrder := []string{"CL-B", "CL-C", "CL-A"}
	for i, want := range wantOrder {
		if result.MatrixRows[i].ID != want {
			t.Errorf("MatrixRows[%d].ID = %q, want %q", i, result.MatrixRows[i].ID, want)
		}
	}

	acme := result.MatrixRows[2]
	if !acme.History[ts(2023, time.May)].Equal(dec(100)) {
		t.Errorf("Acme May value = %s, want 100", acme.History[ts(2023, time.May)])
	}
	if _, ok := acme.History[ts(2023, time.June)]; ok {
		t.Error("Acme should have no June value after churning")
	}
	if !acme.Total.IsZero() {
		t.Errorf("Acme Total = %s, want 0", acme.Total)
	}
	if len(acme.Contracts) != 1 || acme.Contracts[0].ID != "CT-A" {
		t.Errorf("Acme contracts = %+v, want one CT-A drill-down", acme.Contracts)
	}

	// The matrix and the evolution series describe the same facts: per
	// month, client rows sum to the snapshot total.
	for _, header := range result.MatrixHeaders {
		var sum decimal.Decimal
		for _, row := range result.MatrixRows {
			sum = sum.Add(row.History[header.Timestamp])
		}
		var snapshot decimal.Decimal
		for _, p := range result.Evolution {
			if p.Timestamp == header.Timestamp {
				snapshot = p.TotalMRR
			}
		}
		if !sum.Round(0).Equal(snapshot) {
			t.Errorf("%s: matrix sum %s != evolution total %s", header.Label, sum, snapshot)
		}
	}
}

func TestFinancialTableConservation(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	result := e.Analyze(fixtureContracts(), "CAD")

	table := result.FinancialTable
	if len(table) != 8 {
		t.Fatalf("FinancialTable has %d rows, want 8", len(table))
	}

	if !table[0].BeginningMRR.IsZero() {
		t.Errorf("first BeginningMRR = %s, want 0", table[0].BeginningMRR)
	}

	for i, row := range table {
		// Ending = Beginning + New + Upsell + CrossSell + Churn. Holds
		// exactly here because every transition is at a month boundary.
		derived := row.BeginningMRR.Add(row.NewSales).Add(row.Upsell).Add(row.CrossSell).Add(row.Churn)
		if !derived.Equal(row.EndingMRR) {
			t.Errorf("row %d (%s): beginning+movements = %s, ending = %s", i, row.Label, derived, row.EndingMRR)
		}

		if i > 0 && !row.BeginningMRR.Equal(table[i-1].EndingMRR) {
			t.Errorf("row %d: BeginningMRR %s != prior EndingMRR %s", i, row.BeginningMRR, table[i-1].EndingMRR)
		}

		if row.YoYGrowthPct != nil {
			t.Errorf("row %d: YoYGrowthPct should be nil before 12 prior months", i)
		}
	}

	// June: churn of 100 against a beginning of 250.
	jun := table[5]
	if !jun.GrowthPct.Equal(dec(-40)) {
		t.Errorf("June GrowthPct = %s, want -40", jun.GrowthPct)
	}
	if !jun.ChurnRatePct.Equal(dec(40)) {
		t.Errorf("June ChurnRatePct = %s, want 40", jun.ChurnRatePct)
	}
}

func TestFinancialTableYoYGrowth(t *testing.T) {
	contracts := []models.Contract{
		{
			ClientID: "CL-1", ClientName: "Steady", ContractID: "CT-1",
			StartDate: date(2023, time.January, 1), StatusText: "Active",
			Movement: models.MovementNew, MRR: dec(100), Currency: "CAD",
			OwnerCSM: "Alice", OwnerAE: "Dana",
		},
	}

	e := newTestEngine(t, date(2024, time.March, 10), 0)
	result := e.Analyze(contracts, "CAD")

	table := result.FinancialTable
	if len(table) != 15 {
		t.Fatalf("FinancialTable has %d rows, want 15 (Jan 2023 - Mar 2024)", len(table))
	}

	for i := 0; i < 12; i++ {
		if table[i].YoYGrowthPct != nil {
			t.Errorf("row %d: YoYGrowthPct = %s, want nil", i, table[i].YoYGrowthPct)
		}
	}
	for i := 12; i < 15; i++ {
		if table[i].YoYGrowthPct == nil {
			t.Fatalf("row %d: YoYGrowthPct is nil, want 0", i)
		}
		if !table[i].YoYGrowthPct.IsZero() {
			t.Errorf("row %d: YoYGrowthPct = %s, want 0 for flat revenue", i, table[i].YoYGrowthPct)
		}
	}
}

func TestAnalyzeCurrencyConversion(t *testing.T) {
	contracts := []models.Contract{
		{
			ClientID: "CL-1", ClientName: "Dollar Co", ContractID: "CT-1",
			StartDate: date(2023, time.June, 1), StatusText: "Active",
			Movement: models.MovementNew, MRR: dec(100), Currency: "USD",
			OwnerCSM: "Alice", OwnerAE: "Dana",
		},
	}
	e := newTestEngine(t, date(2023, time.June, 15), 0)

	tests := []struct {
		display string
		want    int64
	}{
		// June 2023: USD 1.32, EUR 1.45 to the pivot.
		{"CAD", 132},
		{"USD", 100},
		// 100 USD -> 132 CAD -> 132/1.45 EUR, rounded.
		{"EUR", 91},
	}

	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			result := e.Analyze(contracts, tt.display)
			if len(result.Evolution) != 1 {
				t.Fatalf("Evolution has %d points, want 1", len(result.Evolution))
			}
			if got := result.Evolution[0].TotalMRR; !got.Equal(dec(tt.want)) {
				t.Errorf("TotalMRR in %s = %s, want %d", tt.display, got, tt.want)
			}
			if got := result.Totals.MRR; !got.Equal(dec(tt.want)) {
				t.Errorf("Totals.MRR in %s = %s, want %d", tt.display, got, tt.want)
			}
		})
	}
}

func TestChurnConvertsAtChurnMonth(t *testing.T) {
	contracts := []models.Contract{
		{
			ClientID: "CL-1", ClientName: "Gone Co", ContractID: "CT-1",
			StartDate: date(2023, time.January, 5), EndDate: date(2023, time.June, 1),
			StatusText: "Churned", Movement: models.MovementNew,
			MRR: dec(100), Currency: "USD", OwnerCSM: "Alice", OwnerAE: "Dana",
		},
	}

	// Run long after the churn: the loss is valued at the June 2023 rate
	// (1.32), not at the December 2024 rate (1.43).
	e := newTestEngine(t, date(2024, time.December, 15), 0)
	result := e.Analyze(contracts, "CAD")

	if !result.Totals.TotalLostMRR.Equal(dec(132)) {
		t.Errorf("TotalLostMRR = %s, want 132", result.Totals.TotalLostMRR)
	}
	if len(result.Churn.List) != 1 || !result.Churn.List[0].LostMRR.Equal(dec(132)) {
		t.Errorf("Churn.List = %+v, want one 132 fact", result.Churn.List)
	}
}

func TestChurnWithoutEndDate(t *testing.T) {
	contracts := []models.Contract{
		{
			ClientID: "CL-1", ClientName: "Vanished Co", ContractID: "CT-1",
			StartDate:  date(2024, time.January, 5),
			StatusText: "Churn confirmed", Movement: models.MovementNew,
			MRR: dec(100), Currency: "USD", OwnerCSM: "Alice", OwnerAE: "Dana",
		},
	}

	e := newTestEngine(t, date(2024, time.December, 15), 0)
	result := e.Analyze(contracts, "CAD")

	if result.Totals.ChurnCount != 1 {
		t.Fatalf("ChurnCount = %d, want 1", result.Totals.ChurnCount)
	}
	// No end date: the loss converts at the current month (Dec 2024, 1.43).
	if !result.Totals.TotalLostMRR.Equal(dec(143)) {
		t.Errorf("TotalLostMRR = %s, want 143", result.Totals.TotalLostMRR)
	}

	// The fact appears in the list and owner buckets but not the timeline.
	if len(result.Churn.Timeline) != 0 {
		t.Errorf("Timeline = %+v, want empty", result.Churn.Timeline)
	}
	if len(result.Churn.List) != 1 {
		t.Fatalf("List has %d facts, want 1", len(result.Churn.List))
	}
	fact := result.Churn.List[0]
	if fact.Timestamp != 0 || fact.Label != "" {
		t.Errorf("fact month = %d %q, want unset", fact.Timestamp, fact.Label)
	}
	if len(result.Churn.ByCSM) != 1 || result.Churn.ByCSM[0].Name != "Alice" {
		t.Errorf("ByCSM = %+v, want [Alice]", result.Churn.ByCSM)
	}

	// A churned contract contributes nothing to active revenue even though
	// its end date never arrived.
	if !result.Totals.MRR.IsZero() {
		t.Errorf("Totals.MRR = %s, want 0", result.Totals.MRR)
	}
}

func TestContractWithoutStartDate(t *testing.T) {
	contracts := []models.Contract{
		{
			ClientID: "CL-1", ClientName: "Anchor Co", ContractID: "CT-1",
			StartDate: date(2024, time.January, 1), StatusText: "Active",
			Movement: models.MovementNew, MRR: dec(100), Currency: "CAD",
			OwnerCSM: "Alice", OwnerAE: "Dana",
		},
		{
			ClientID: "CL-2", ClientName: "Dateless Co", ContractID: "CT-2",
			EndDate:    date(2024, time.March, 1),
			StatusText: "Ended", Movement: models.MovementNew,
			MRR: dec(999), Currency: "CAD", OwnerCSM: "Bob", OwnerAE: "Eve",
		},
	}

	e := newTestEngine(t, date(2024, time.June, 15), 0)
	result := e.Analyze(contracts, "CAD")

	// The dateless contract never enters a monthly bucket.
	for _, p := range result.Evolution {
		if !p.TotalMRR.Equal(dec(100)) {
			t.Errorf("%s: TotalMRR = %s, want 100", p.Label, p.TotalMRR)
		}
	}
	for _, p := range result.Variation {
		if !p.Churn.IsZero() {
			t.Errorf("%s: Churn = %s, want 0 (no parseable start)", p.Label, p.Churn)
		}
	}

	// It still counts in the raw totals and the churn roll-up.
	if result.Totals.TotalContracts != 2 {
		t.Errorf("TotalContracts = %d, want 2", result.Totals.TotalContracts)
	}
	if result.Totals.ChurnCount != 1 {
		t.Errorf("ChurnCount = %d, want 1", result.Totals.ChurnCount)
	}
}

func TestAnalyzeTieBreaksFollowInputOrder(t *testing.T) {
	contracts := []models.Contract{
		{
			ClientID: "CL-Z", ClientName: "Zeta", ContractID: "CT-Z",
			StartDate: date(2024, time.January, 1), StatusText: "Active",
			Movement: models.MovementNew, MRR: dec(100), Currency: "CAD",
			OwnerCSM: "Zoe", OwnerAE: "Zoe",
		},
		{
			ClientID: "CL-A", ClientName: "Alpha", ContractID: "CT-A",
			StartDate: date(2024, time.January, 1), StatusText: "Active",
			Movement: models.MovementNew, MRR: dec(100), Currency: "CAD",
			OwnerCSM: "Amy", OwnerAE: "Amy",
		},
	}

	e := newTestEngine(t, date(2024, time.March, 15), 0)
	result := e.Analyze(contracts, "CAD")

	// Equal MRR everywhere: input order decides, not alphabetical order.
	if result.TopClients[0].Key != "CL-Z" || result.TopClients[1].Key != "CL-A" {
		t.Errorf("TopClients order = %q, %q; want CL-Z then CL-A",
			result.TopClients[0].Key, result.TopClients[1].Key)
	}
	if result.MatrixRows[0].ID != "CL-Z" {
		t.Errorf("MatrixRows[0].ID = %q, want CL-Z", result.MatrixRows[0].ID)
	}
	if result.Leaderboards.CSM[0].Name != "Zoe" {
		t.Errorf("CSM[0] = %q, want Zoe", result.Leaderboards.CSM[0].Name)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	e := newTestEngine(t, date(2023, time.August, 15), 0)
	contracts := fixtureContracts()

	first := e.Analyze(contracts, "CAD")
	second := e.Analyze(contracts, "CAD")

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated runs over the same input differ")
	}
}

func TestTotalsWithoutClientIDs(t *testing.T) {
	contracts := []models.Contract{
		{
			ClientName: "Legacy Co", ContractSeq: "1",
			StartDate: date(2024, time.January, 1), StatusText: "Active",
			Movement: models.MovementNew, MRR: dec(100), Currency: "CAD",
			OwnerCSM: models.OwnerUnassigned, OwnerAE: models.OwnerUnassigned,
		},
	}

	e := newTestEngine(t, date(2024, time.March, 15), 0)
	result := e.Analyze(contracts, "CAD")

	// No client IDs anywhere: the ID-based counts are zero and the average
	// guard holds, but the name-keyed views still see the client.
	if result.Totals.TotalClients != 0 {
		t.Errorf("TotalClients = %d, want 0", result.Totals.TotalClients)
	}
	if !result.Totals.AvgMRRPerClient.IsZero() {
		t.Errorf("AvgMRRPerClient = %s, want 0", result.Totals.AvgMRRPerClient)
	}
	if result.Totals.ActiveClients != 1 {
		t.Errorf("ActiveClients = %d, want 1", result.Totals.ActiveClients)
	}
	if len(result.TopClients) != 1 || result.TopClients[0].Key != "Legacy Co" {
		t.Errorf("TopClients = %+v, want [Legacy Co]", result.TopClients)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil rate service) should fail")
	}

	config := DefaultConfig()
	config.TopClients = 0
	if _, err := New(rates.DefaultRateService(), config); err == nil {
		t.Error("New with non-positive TopClients should fail")
	}
}
