package engine

import (
	"fmt"
	"sort"
	"time"

	"revenue-analytics-service/internal/models"

	"github.com/shopspring/decimal"
)

// matrixAccumulator builds the client × month revenue matrix during the
// monthly walk. Insertion order is tracked so the final descending sort
// stays stable with respect to input order.
type matrixAccumulator struct {
	byClient map[string]*matrixClient
	order    []string
}

type matrixClient struct {
	id          string
	name        string
	history     map[int64]decimal.Decimal
	byContract  map[string]*matrixContract
	contractIDs []string
}

type matrixContract struct {
	id      string
	name    string
	history map[int64]decimal.Decimal
}

func newMatrixAccumulator() *matrixAccumulator {
	return &matrixAccumulator{byClient: make(map[string]*matrixClient)}
}

func (m *matrixAccumulator) add(c *models.Contract, monthTs int64, amount decimal.Decimal) {
	key := c.ClientKey()
	client, ok := m.byClient[key]
	if !ok {
		client = &matrixClient{
			id:         key,
			name:       c.ClientName,
			history:    make(map[int64]decimal.Decimal),
			byContract: make(map[string]*matrixContract),
		}
		m.byClient[key] = client
		m.order = append(m.order, key)
	}
	client.history[monthTs] = client.history[monthTs].Add(amount)

	contractKey := c.ContractKey()
	contract, ok := client.byContract[contractKey]
	if !ok {
		contract = &matrixContract{
			id:      contractKey,
			name:    fmt.Sprintf("Contract #%s (%s)", c.ContractSeq, c.Movement),
			history: make(map[int64]decimal.Decimal),
		}
		client.byContract[contractKey] = contract
		client.contractIDs = append(client.contractIDs, contractKey)
	}
	contract.history[monthTs] = contract.history[monthTs].Add(amount)
}

// rows finalizes the matrix: each client's total is its value at the
// latest calendar month, and rows are sorted descending by it.
func (m *matrixAccumulator) rows(lastMonthTs int64) []MatrixRow {
	rows := make([]MatrixRow, 0, len(m.order))
	for _, key := range m.order {
		client := m.byClient[key]

		contracts := make([]ContractHistory, 0, len(client.contractIDs))
		for _, id := range client.contractIDs {
			contract := client.byContract[id]
			contracts = append(contracts, ContractHistory{
				ID:      contract.id,
				Name:    contract.name,
				History: contract.history,
			})
		}

		rows = append(rows, MatrixRow{
			ID:        client.id,
			Name:      client.name,
			Total:     client.history[lastMonthTs],
			History:   client.history,
			Contracts: contracts,
		})
	}

	sortStableDesc(rows, func(r MatrixRow) decimal.Decimal { return r.Total })
	return rows
}

// leaderboardAccumulator aggregates active MRR per owner (CSM or AE).
type leaderboardAccumulator struct {
	byOwner map[string]*ownerStats
	order   []string
}

type ownerStats struct {
	name      string
	mrr       decimal.Decimal
	contracts int
	clients   map[string]struct{}
}

func newLeaderboardAccumulator() *leaderboardAccumulator {
	return &leaderboardAccumulator{byOwner: make(map[string]*ownerStats)}
}

func (l *leaderboardAccumulator) add(owner, clientID string, amount decimal.Decimal) {
	stats, ok := l.byOwner[owner]
	if !ok {
		stats = &ownerStats{name: owner, clients: make(map[string]struct{})}
		l.byOwner[owner] = stats
		l.order = append(l.order, owner)
	}
	stats.mrr = stats.mrr.Add(amount)
	stats.contracts++
	if clientID != "" {
		stats.clients[clientID] = struct{}{}
	}
}

func (l *leaderboardAccumulator) entries() []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(l.order))
	for _, owner := range l.order {
		stats := l.byOwner[owner]
		entries = append(entries, LeaderboardEntry{
			Name:      stats.name,
			MRR:       stats.mrr.Round(0),
			Contracts: stats.contracts,
			Clients:   len(stats.clients),
		})
	}
	sortStableDesc(entries, func(e LeaderboardEntry) decimal.Decimal { return e.MRR })
	return entries
}

// clientAccumulator aggregates active MRR per client for the top-N view.
type clientAccumulator struct {
	byKey map[string]*ClientTotal
	order []string
}

func newClientAccumulator() *clientAccumulator {
	return &clientAccumulator{byKey: make(map[string]*ClientTotal)}
}

func (ca *clientAccumulator) add(key, name string, amount decimal.Decimal) {
	client, ok := ca.byKey[key]
	if !ok {
		client = &ClientTotal{Key: key, Name: name, MRR: decimal.Zero}
		ca.byKey[key] = client
		ca.order = append(ca.order, key)
	}
	client.MRR = client.MRR.Add(amount)
}

func (ca *clientAccumulator) top(n int) []ClientTotal {
	clients := make([]ClientTotal, 0, len(ca.order))
	for _, key := range ca.order {
		c := *ca.byKey[key]
		c.MRR = c.MRR.Round(0)
		clients = append(clients, c)
	}
	sortStableDesc(clients, func(c ClientTotal) decimal.Decimal { return c.MRR })
	if len(clients) > n {
		clients = clients[:n]
	}
	return clients
}

// churnAccumulator collects per-contract churn facts and their per-owner
// and per-month aggregations.
type churnAccumulator struct {
	byCSM    map[string]*ChurnBucket
	csmOrder []string
	byAE     map[string]*ChurnBucket
	aeOrder  []string
	timeline map[int64]*TimelinePoint
	months   []int64
	facts    []ChurnFact
}

func newChurnAccumulator() *churnAccumulator {
	return &churnAccumulator{
		byCSM:    make(map[string]*ChurnBucket),
		byAE:     make(map[string]*ChurnBucket),
		timeline: make(map[int64]*TimelinePoint),
	}
}

func (ch *churnAccumulator) add(c *models.Contract, lost decimal.Decimal, churnAt time.Time, hasEnd bool) {
	bumpBucket(ch.byCSM, &ch.csmOrder, c.OwnerCSM, lost)
	bumpBucket(ch.byAE, &ch.aeOrder, c.OwnerAE, lost)

	fact := ChurnFact{
		ClientName: c.ClientName,
		OwnerCSM:   c.OwnerCSM,
		OwnerAE:    c.OwnerAE,
		LostMRR:    lost,
	}

	// Contracts churned without a recorded end date carry no month; they
	// appear in the list and owner buckets but not on the timeline.
	if hasEnd {
		month := models.FloorToMonth(churnAt)
		ts := month.UnixMilli()
		fact.Timestamp = ts
		fact.Label = models.MonthLabel(month)

		point, ok := ch.timeline[ts]
		if !ok {
			point = &TimelinePoint{Timestamp: ts, Label: fact.Label}
			ch.timeline[ts] = point
			ch.months = append(ch.months, ts)
		}
		point.Count++
		point.LostMRR = point.LostMRR.Add(lost)
	}

	ch.facts = append(ch.facts, fact)
}

func bumpBucket(buckets map[string]*ChurnBucket, order *[]string, owner string, lost decimal.Decimal) {
	bucket, ok := buckets[owner]
	if !ok {
		bucket = &ChurnBucket{Name: owner}
		buckets[owner] = bucket
		*order = append(*order, owner)
	}
	bucket.Count++
	bucket.LostMRR = bucket.LostMRR.Add(lost)
}

func (ch *churnAccumulator) attribution() ChurnAttribution {
	attr := ChurnAttribution{
		ByCSM:    finalizeBuckets(ch.byCSM, ch.csmOrder),
		ByAE:     finalizeBuckets(ch.byAE, ch.aeOrder),
		Timeline: []TimelinePoint{},
		List:     []ChurnFact{},
	}

	sortInt64s(ch.months)
	for _, ts := range ch.months {
		point := *ch.timeline[ts]
		point.LostMRR = point.LostMRR.Round(0)
		attr.Timeline = append(attr.Timeline, point)
	}

	facts := make([]ChurnFact, len(ch.facts))
	copy(facts, ch.facts)
	sortStableDesc(facts, func(f ChurnFact) decimal.Decimal { return f.LostMRR.Abs() })
	for i := range facts {
		facts[i].LostMRR = facts[i].LostMRR.Round(0)
	}
	attr.List = facts

	return attr
}

func finalizeBuckets(buckets map[string]*ChurnBucket, order []string) []ChurnBucket {
	out := make([]ChurnBucket, 0, len(order))
	for _, owner := range order {
		bucket := *buckets[owner]
		bucket.LostMRR = bucket.LostMRR.Round(0)
		out = append(out, bucket)
	}
	sortStableDesc(out, func(b ChurnBucket) decimal.Decimal { return b.LostMRR })
	return out
}

func sortInt64s(values []int64) {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
}
