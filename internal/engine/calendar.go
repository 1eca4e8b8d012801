package engine

import (
	"time"

	"revenue-analytics-service/internal/models"
)

// BuildCalendar derives the ordered sequence of calendar months to
// analyze: from the earliest contract start, through at least the current
// month, extended to cover the latest start or end date. Months are
// first-of-month midnight UTC, stepping by one calendar month.
//
// Contracts without a parseable start do not influence the range. When no
// contract has one, the calendar is empty and every derived series is
// empty.
func BuildCalendar(contracts []models.Contract, now time.Time) []time.Time {
	var minDate, maxDate time.Time

	for _, c := range contracts {
		if !c.HasStart() {
			continue
		}
		if minDate.IsZero() || c.StartDate.Before(minDate) {
			minDate = c.StartDate
		}
		if c.StartDate.After(maxDate) {
			maxDate = c.StartDate
		}
		if c.HasEnd() && c.EndDate.After(maxDate) {
			maxDate = c.EndDate
		}
	}

	if minDate.IsZero() {
		return nil
	}

	first := models.FloorToMonth(minDate)
	last := models.FloorToMonth(maxDate)
	if nowMonth := models.FloorToMonth(now); nowMonth.After(last) {
		last = nowMonth
	}

	var months []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}
