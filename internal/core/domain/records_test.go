package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("accounts")
	require.NoError(t, err)
	assert.Equal(t, OperationAccounts, op)

	op, err = ParseOperation("transactions")
	require.NoError(t, err)
	assert.Equal(t, OperationTransactions, op)

	_, err = ParseOperation("operations")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAccount_JSONOmitsEmptyOptionals(t *testing.T) {
	data, err := json.Marshal(Account{AccountNumber: "1", Label: "Main", Balance: "12.34", Currency: "EUR"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"accountNumber":"1","label":"Main","balance":"12.34","currency":"EUR"}`, string(data))
	assert.NotContains(t, string(data), "iban")
}

func TestResultEnvelope_EmptyValuesStillPresent(t *testing.T) {
	data, err := json.Marshal(TransactionsResult(nil))
	require.NoError(t, err)

	assert.JSONEq(t, `{"values":[]}`, string(data))
}

func TestResultEnvelope_ErrorHasNoValues(t *testing.T) {
	env := ResultEnvelope{ErrorCode: "INVALID_PASSWORD"}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	assert.True(t, env.IsError())
	assert.JSONEq(t, `{"error_code":"INVALID_PASSWORD"}`, string(data))
}

func TestTransactionType_String(t *testing.T) {
	assert.Equal(t, "card", TransactionCard.String())
	assert.Equal(t, "unknown", TransactionType(99).String())
	assert.Equal(t, TransactionDeferredCard, ParseTransactionType("deferred_card"))
	assert.Equal(t, TransactionUnknown, ParseTransactionType("nope"))
}
