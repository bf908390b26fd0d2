package driven

import "github.com/custodia-labs/finconnect/internal/core/domain"

// RecordNormaliser turns raw backend records into canonical records.
// Implementations are stateless: the same input always yields the same
// output, except for the documented date fallback which reads the clock.
type RecordNormaliser interface {
	// NormaliseAccount converts a raw account.
	NormaliseAccount(raw domain.RawAccount) domain.Account

	// NormaliseTransaction converts a raw transaction of the given account.
	NormaliseTransaction(raw domain.RawTransaction, accountID string) domain.Transaction
}
