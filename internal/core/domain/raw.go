package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawAccount is an account as exposed by a source module, before normalisation.
// Attributes a module may not provide are Optional.
type RawAccount struct {
	// ID is the source-assigned account identifier.
	ID string

	// Label is the account name at the source.
	Label string

	// Balance is the current balance.
	Balance decimal.Decimal

	// IBAN is the international account number, when the source knows it.
	IBAN Optional[string]

	// Currency is the ISO 4217 code, when the source knows it.
	Currency Optional[string]

	// Kind is a backend-specific account category (checking, savings, card...).
	Kind string
}

// RawTransaction is a transaction as exposed by a source module, before normalisation.
type RawTransaction struct {
	// Amount is the signed transaction amount.
	Amount decimal.Decimal

	// Raw is the unprocessed label as printed by the source.
	Raw string

	// Type is the source's category tag.
	Type TransactionType

	// RDate is the real (receipt) date of the operation.
	RDate Optional[time.Time]

	// Date is the nominal (booking) date.
	Date Optional[time.Time]

	// Label is the cleaned-up label, when the source computes one.
	Label Optional[string]
}

// TransactionType is the category tag of a transaction.
type TransactionType int

// Transaction types shared by all drivers.
const (
	TransactionUnknown TransactionType = iota
	TransactionTransfer
	TransactionOrder
	TransactionCheck
	TransactionDeposit
	TransactionPayback
	TransactionWithdrawal
	TransactionCard
	TransactionLoanPayment
	TransactionBank
	TransactionCashDeposit
	TransactionCardSummary
	TransactionDeferredCard
)

var transactionTypeNames = map[TransactionType]string{
	TransactionUnknown:      "unknown",
	TransactionTransfer:     "transfer",
	TransactionOrder:        "order",
	TransactionCheck:        "check",
	TransactionDeposit:      "deposit",
	TransactionPayback:      "payback",
	TransactionWithdrawal:   "withdrawal",
	TransactionCard:         "card",
	TransactionLoanPayment:  "loan_payment",
	TransactionBank:         "bank",
	TransactionCashDeposit:  "cash_deposit",
	TransactionCardSummary:  "card_summary",
	TransactionDeferredCard: "deferred_card",
}

// String returns the lowercase name of the type.
func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return transactionTypeNames[TransactionUnknown]
}

// ParseTransactionType maps a name back to its type.
// Unknown names map to TransactionUnknown.
func ParseTransactionType(name string) TransactionType {
	for t, n := range transactionTypeNames {
		if n == name {
			return t
		}
	}
	return TransactionUnknown
}
