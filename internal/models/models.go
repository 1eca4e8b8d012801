package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType classifies the sales motion that originated a contract.
type MovementType string

const (
	// MovementNew represents net-new business with a client.
	MovementNew MovementType = "New"
	// MovementUpsell represents an expansion of an existing contract.
	MovementUpsell MovementType = "Upsell"
	// MovementCrossSell represents a sale of a different product line to an existing client.
	MovementCrossSell MovementType = "Cross-sell"
)

// String returns the string representation of MovementType
func (m MovementType) String() string {
	return string(m)
}

// IsValid checks if the movement type is one of the known classifications
func (m MovementType) IsValid() bool {
	return m == MovementNew || m == MovementUpsell || m == MovementCrossSell
}

// OwnerUnassigned is the sentinel used when a contract has no CSM or AE.
// Aggregation keys by owner, so the value is never left empty.
const OwnerUnassigned = "Unassigned"

// ClientUnknown is the sentinel used when a contract row carries no client name.
const ClientUnknown = "Unknown"

// RawRecord is one row of the imported ledger, keyed by header text.
// It is consumed only by the normalizer; nothing downstream inspects raw keys.
type RawRecord map[string]string

// Get returns the trimmed value for a header, or "" when absent.
func (r RawRecord) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// First returns the first non-empty trimmed value among the given headers.
func (r RawRecord) First(keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Contract is the canonical, immutable representation of one subscription
// contract line. It is produced once by the normalizer; every derived view
// (evolution, variation, matrix, churn) is computed from it without
// re-inspecting raw ledger fields.
type Contract struct {
	ClientID    string `json:"clientId"`
	ClientName  string `json:"clientName"`
	ContractID  string `json:"contractId"`
	ContractSeq string `json:"contractSeq"`

	// StartDate and EndDate are zero when the source field was empty or
	// unparsable. A contract without a start date contributes to no
	// time-bucketed view but still counts toward raw totals.
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	// StatusText is the raw end status (or start status when no end status
	// exists). Churn detection is a case-insensitive substring match on it.
	StatusText string `json:"statusText"`

	Movement MovementType `json:"movement"`

	// MRR is the monthly recurring revenue in the contract's origin
	// currency. Always non-negative; sign is applied only in derived
	// movement views.
	MRR      decimal.Decimal `json:"mrr"`
	Currency string          `json:"currency"`

	OwnerCSM string `json:"ownerCSM"`
	OwnerAE  string `json:"ownerAE"`
}

// Validate checks the invariants the normalizer must have established.
func (c *Contract) Validate() error {
	if !c.Movement.IsValid() {
		return fmt.Errorf("invalid movement type: %q", c.Movement)
	}

	if strings.TrimSpace(c.OwnerCSM) == "" {
		return fmt.Errorf("owner CSM cannot be empty, expected sentinel %q", OwnerUnassigned)
	}

	if strings.TrimSpace(c.OwnerAE) == "" {
		return fmt.Errorf("owner AE cannot be empty, expected sentinel %q", OwnerUnassigned)
	}

	if c.MRR.IsNegative() {
		return fmt.Errorf("MRR cannot be negative, got %s", c.MRR.String())
	}

	if strings.TrimSpace(c.Currency) == "" {
		return fmt.Errorf("currency cannot be empty")
	}

	return nil
}

// HasStart reports whether the contract has a parseable billing start.
func (c *Contract) HasStart() bool {
	return !c.StartDate.IsZero()
}

// HasEnd reports whether the contract has a parseable end date.
func (c *Contract) HasEnd() bool {
	return !c.EndDate.IsZero()
}

// IsChurned reports whether the contract's status marks it as terminated.
// The signal is a case-insensitive substring match on "churn" or "end";
// an end date alone does not suppress ongoing activity.
func (c *Contract) IsChurned() bool {
	status := strings.ToLower(c.StatusText)
	return strings.Contains(status, "churn") || strings.Contains(status, "end")
}

// IsActiveAt reports whether the contract contributes revenue at the given
// instant: started on or before it and not yet ended.
func (c *Contract) IsActiveAt(at time.Time) bool {
	if !c.HasStart() || c.StartDate.After(at) {
		return false
	}
	if c.HasEnd() && !c.EndDate.After(at) {
		return false
	}
	return true
}

// ClientKey returns the key used to group contracts under one client:
// the client ID, falling back to the client name for legacy rows.
func (c *Contract) ClientKey() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.ClientName
}

// ContractKey returns the key used to group monthly history under one
// contract line, synthesized from client ID and sequence when the ledger
// carried no contract ID.
func (c *Contract) ContractKey() string {
	if c.ContractID != "" {
		return c.ContractID
	}
	return fmt.Sprintf("CT-%s-%s", c.ClientID, c.ContractSeq)
}

// String returns a string representation of the Contract
func (c *Contract) String() string {
	return fmt.Sprintf("Contract{Client: %s, ID: %s, Movement: %s, MRR: %s %s}",
		c.ClientName, c.ContractKey(), c.Movement, c.MRR.String(), c.Currency)
}

// MarshalJSON implements custom JSON marshaling for Contract
func (c *Contract) MarshalJSON() ([]byte, error) {
	type Alias Contract
	aux := &struct {
		MRR       string `json:"mrr"`
		StartDate string `json:"startDate,omitempty"`
		EndDate   string `json:"endDate,omitempty"`
		*Alias
	}{
		MRR:   c.MRR.String(),
		Alias: (*Alias)(c),
	}
	if c.HasStart() {
		aux.StartDate = c.StartDate.Format("2006-01-02")
	}
	if c.HasEnd() {
		aux.EndDate = c.EndDate.Format("2006-01-02")
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements custom JSON unmarshaling for Contract
func (c *Contract) UnmarshalJSON(data []byte) error {
	type Alias Contract
	aux := &struct {
		MRR       string `json:"mrr"`
		StartDate string `json:"startDate,omitempty"`
		EndDate   string `json:"endDate,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.MRR == "" {
		c.MRR = decimal.Zero
	} else if c.MRR, err = decimal.NewFromString(aux.MRR); err != nil {
		return fmt.Errorf("invalid MRR format: %w", err)
	}

	c.StartDate = time.Time{}
	if aux.StartDate != "" {
		if c.StartDate, err = ParseDateLenient(aux.StartDate); err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
	}
	c.EndDate = time.Time{}
	if aux.EndDate != "" {
		if c.EndDate, err = ParseDateLenient(aux.EndDate); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	}

	return nil
}

// Utility functions shared by the normalizer and the snapshot store.

// ParseAmountLenient parses a monetary value that may carry currency
// symbols, thousand separators or surrounding whitespace. It never fails:
// unreadable input degrades to zero, matching the fail-soft contract of
// the normalizer.
func ParseAmountLenient(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	// Strip everything that cannot be part of a decimal literal.
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// dateFormats are the layouts accepted for ledger date fields, most
// common first.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDateLenient attempts to parse a date from string using multiple
// common layouts. All values are interpreted in UTC.
func ParseDateLenient(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, lastErr)
}

// FloorToMonth normalizes an instant to the first day of its calendar
// month at midnight UTC. Every monthly bucket boundary in the engine is
// produced by this function.
func FloorToMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the "YYYY-MM" key of an instant's calendar month, the
// granularity at which historical exchange rates are stored.
func MonthKey(t time.Time) string {
	return FloorToMonth(t).Format("2006-01")
}

// MonthLabel returns the short display label of a month, e.g. "Jan 24".
func MonthLabel(t time.Time) string {
	return FloorToMonth(t).Format("Jan 06")
}
