package domain

import "fmt"

// Account is the canonical account record returned to callers.
// Balance is decimal text and never passes through a float.
type Account struct {
	AccountNumber string `json:"accountNumber"`
	Label         string `json:"label"`
	Balance       string `json:"balance"`
	IBAN          string `json:"iban,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// Transaction is the canonical transaction record returned to callers.
// Date and Title are never empty.
type Transaction struct {
	Account string          `json:"account"`
	Amount  string          `json:"amount"`
	Raw     string          `json:"raw"`
	Type    TransactionType `json:"type"`
	Date    string          `json:"date"`
	Title   string          `json:"title"`
}

// Operation is a fetch command.
type Operation string

// Supported fetch operations.
const (
	OperationAccounts     Operation = "accounts"
	OperationTransactions Operation = "transactions"
)

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OperationAccounts, OperationTransactions:
		return op, nil
	default:
		return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, s)
	}
}

// String returns the operation name.
func (o Operation) String() string {
	return string(o)
}

// ResultEnvelope is the result of one fetch: either Values, or an error code
// with optional detail. Exactly one of Values and ErrorCode is set.
type ResultEnvelope struct {
	Values       any    `json:"values,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorShort   string `json:"error_short,omitempty"`
	ErrorContent string `json:"error_content,omitempty"`
}

// AccountsResult wraps accounts into a success envelope.
func AccountsResult(accounts []Account) ResultEnvelope {
	if accounts == nil {
		accounts = []Account{}
	}
	return ResultEnvelope{Values: accounts}
}

// TransactionsResult wraps transactions into a success envelope.
func TransactionsResult(transactions []Transaction) ResultEnvelope {
	if transactions == nil {
		transactions = []Transaction{}
	}
	return ResultEnvelope{Values: transactions}
}

// IsError reports whether the envelope carries an error.
func (r ResultEnvelope) IsError() bool {
	return r.ErrorCode != ""
}
