package engine

import (
	"revenue-analytics-service/internal/models"
)

// monthIndex pre-buckets contracts by the calendar month of their start
// and of their churn-qualifying end, so the monthly walk resolves
// movement and churn membership with a single map lookup instead of
// re-flooring every contract date per month. Slices preserve input
// order, which is what makes every downstream tie-break stable.
type monthIndex struct {
	startsByMonth map[int64][]int
	churnsByMonth map[int64][]int
}

func buildMonthIndex(contracts []models.Contract) *monthIndex {
	idx := &monthIndex{
		startsByMonth: make(map[int64][]int),
		churnsByMonth: make(map[int64][]int),
	}

	for i, c := range contracts {
		if c.HasStart() {
			key := models.FloorToMonth(c.StartDate).UnixMilli()
			idx.startsByMonth[key] = append(idx.startsByMonth[key], i)
		}
		// An end date only marks churn when the status says so; a present
		// end date with a non-churn status never suppresses activity here.
		// Contracts with no parseable start stay out of every bucket.
		if c.HasStart() && c.HasEnd() && c.IsChurned() {
			key := models.FloorToMonth(c.EndDate).UnixMilli()
			idx.churnsByMonth[key] = append(idx.churnsByMonth[key], i)
		}
	}

	return idx
}

// startsIn returns, in input order, the indexes of contracts whose start
// falls in the given month.
func (idx *monthIndex) startsIn(monthTs int64) []int {
	return idx.startsByMonth[monthTs]
}

// churnsIn returns, in input order, the indexes of contracts whose
// churn-qualifying end falls in the given month.
func (idx *monthIndex) churnsIn(monthTs int64) []int {
	return idx.churnsByMonth[monthTs]
}
