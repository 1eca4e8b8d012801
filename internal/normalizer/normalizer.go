// Package normalizer is the sole translation boundary between raw ledger
// rows and the canonical contract model.
//
// Every fallback policy of the system lives here, each as a single pure
// function applied exactly once per row:
//   - movement-type derivation (priority-ordered substring match),
//   - lenient date parsing (unparsable dates degrade to absent),
//   - MRR derivation (explicit MRR field, else licenses × unit price, else 0),
//   - owner and client-name sentinels,
//   - origin-currency default.
//
// Normalization never fails on malformed data: a bad field degrades that
// contract's contribution, it does not abort the run.
package normalizer

import (
	"strings"
	"time"

	"revenue-analytics-service/internal/models"
	"revenue-analytics-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Column names of the contract ledger. These match the spreadsheet the
// ledger is exported from; the parser maps shorter aliases onto them.
const (
	ColClientName  = "Nom"
	ColClientID    = "# client ID"
	ColContractSeq = "# contract"
	ColContractID  = "# contract ID"
	ColAE          = "A/E"
	ColCSM         = "CSM"
	ColStartStatus = "Start Status"
	ColStartDate   = "Start Date"
	ColSalesType   = "Up sell (U) or new client (N) or cross-sell (C)"
	ColEndStatus   = "End Status"
	ColEndDate     = "End date"
	ColEndDateAlt  = "End Date"
	ColCurrency    = "Devise"
	ColLicenses    = "# License"
	ColUnitPrice   = "License Price"
	ColMRR         = "MRR"
)

// DefaultCurrency is assumed for rows that carry no currency code. It is
// also the pivot currency of the rate service.
const DefaultCurrency = "CAD"

// Normalizer converts raw ledger records into canonical contracts.
type Normalizer struct {
	log logger.Logger
}

// New creates a Normalizer. A nil logger falls back to the global logger.
func New(log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Normalizer{log: log.WithComponent("normalizer")}
}

// NormalizeAll converts a sequence of raw records, preserving input order.
// Order matters downstream: every tie-break in the engine is a stable sort
// over this sequence.
func (n *Normalizer) NormalizeAll(records []models.RawRecord) []models.Contract {
	contracts := make([]models.Contract, 0, len(records))
	for i, rec := range records {
		c := n.Normalize(rec)
		if !c.HasStart() {
			n.log.WithFields(logger.Fields{
				"row":    i + 1,
				"client": c.ClientName,
			}).Debug("contract has no parseable start date, excluded from time-bucketed views")
		}
		contracts = append(contracts, c)
	}
	return contracts
}

// Normalize converts one raw record into a canonical contract.
func (n *Normalizer) Normalize(rec models.RawRecord) models.Contract {
	return models.Contract{
		ClientID:    rec.Get(ColClientID),
		ClientName:  defaultString(rec.Get(ColClientName), models.ClientUnknown),
		ContractID:  rec.Get(ColContractID),
		ContractSeq: defaultString(rec.Get(ColContractSeq), "?"),
		StartDate:   parseDate(rec.Get(ColStartDate)),
		EndDate:     parseDate(rec.First(ColEndDate, ColEndDateAlt)),
		StatusText:  rec.First(ColEndStatus, ColStartStatus),
		Movement:    DeriveMovement(rec.Get(ColSalesType)),
		MRR:         DeriveMRR(rec.Get(ColMRR), rec.Get(ColLicenses), rec.Get(ColUnitPrice)),
		Currency:    defaultString(rec.Get(ColCurrency), DefaultCurrency),
		OwnerCSM:    defaultString(rec.Get(ColCSM), models.OwnerUnassigned),
		OwnerAE:     defaultString(rec.Get(ColAE), models.OwnerUnassigned),
	}
}

// DeriveMovement classifies the raw sales-type code. The match is
// case-insensitive, substring-based and priority-ordered: "U" wins over
// "C", anything else is New. The ledger only ever carries N/U/C, but the
// substring policy is kept verbatim for inputs outside that set.
func DeriveMovement(raw string) models.MovementType {
	code := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(code, "U"):
		return models.MovementUpsell
	case strings.Contains(code, "C"):
		return models.MovementCrossSell
	default:
		return models.MovementNew
	}
}

// DeriveMRR resolves the monthly recurring revenue of a row. An explicit
// numeric MRR field wins; otherwise licenses × unit price; otherwise zero.
// Negative results clamp to zero: stored MRR is non-negative by contract.
func DeriveMRR(mrrField, licensesField, priceField string) decimal.Decimal {
	if strings.TrimSpace(mrrField) != "" {
		if mrr := models.ParseAmountLenient(mrrField); !mrr.IsZero() {
			if mrr.IsNegative() {
				return decimal.Zero
			}
			return mrr
		}
	}

	licenses := models.ParseAmountLenient(licensesField)
	price := models.ParseAmountLenient(priceField)
	mrr := licenses.Mul(price)
	if mrr.IsNegative() {
		return decimal.Zero
	}
	return mrr
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := models.ParseDateLenient(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
