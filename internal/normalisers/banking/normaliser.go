// Package banking normalises raw account and transaction records into the
// canonical shapes returned to callers.
package banking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// DateLayout is the ISO-8601 profile used for transaction dates.
const DateLayout = time.RFC3339

// Ensure Normaliser implements the interface.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// Normaliser converts raw backend records.
type Normaliser struct {
	now func() time.Time
}

// New creates a normaliser reading the system clock.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// NewWithClock creates a normaliser with a fixed clock for the date fallback.
func NewWithClock(now func() time.Time) *Normaliser {
	return &Normaliser{now: now}
}

// NormaliseAccount copies id, label and balance, and includes iban and
// currency only when the backend populated them.
func (n *Normaliser) NormaliseAccount(raw domain.RawAccount) domain.Account {
	acc := domain.Account{
		AccountNumber: raw.ID,
		Label:         raw.Label,
		Balance:       DecimalText(raw.Balance),
	}
	if iban, ok := populated(raw.IBAN); ok {
		acc.IBAN = iban
	}
	if currency, ok := populated(raw.Currency); ok {
		acc.Currency = currency
	}
	return acc
}

// NormaliseTransaction stamps the account id and resolves date and title.
//
// Date: real date, then nominal date, then the current time. The last
// case is a data-quality problem at the source and is logged as a warning;
// the substituted date is not authoritative.
//
// Title: label, then the raw label, then the type name.
func (n *Normaliser) NormaliseTransaction(raw domain.RawTransaction, accountID string) domain.Transaction {
	op := domain.Transaction{
		Account: accountID,
		Amount:  DecimalText(raw.Amount),
		Raw:     raw.Raw,
		Type:    raw.Type,
	}

	date, ok := populatedTime(raw.RDate)
	if !ok {
		date, ok = populatedTime(raw.Date)
	}
	if !ok {
		logger.Warn("No known date property in transaction line: %s", raw.Raw)
		date = n.now()
	}
	op.Date = date.Format(DateLayout)

	switch label, ok := populated(raw.Label); {
	case ok:
		op.Title = label
	case raw.Raw != "":
		op.Title = raw.Raw
	default:
		op.Title = raw.Type.String()
	}

	return op
}

// DecimalText renders a decimal without losing the scale it was given
// with, so "12.30" stays "12.30".
func DecimalText(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// populated reports a string attribute that exists and is not the empty sentinel.
func populated(o domain.Optional[string]) (string, bool) {
	v, ok := o.Get()
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func populatedTime(o domain.Optional[time.Time]) (time.Time, bool) {
	v, ok := o.Get()
	if !ok || v.IsZero() {
		return time.Time{}, false
	}
	return v, true
}
