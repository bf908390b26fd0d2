package driving

import (
	"context"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// FetchRequest describes one fetch invocation.
type FetchRequest struct {
	// SourceID identifies the source module.
	SourceID string

	// Login and Password are the source credentials.
	Login    string
	Password string

	// Fields are the custom fields the source may require.
	Fields []domain.CustomField

	// Operation is accounts or transactions.
	Operation domain.Operation
}

// Connector fetches normalised records from a source.
type Connector interface {
	// Fetch runs one operation and always returns an envelope: values on
	// success, a classified error otherwise.
	Fetch(ctx context.Context, req FetchRequest) domain.ResultEnvelope
}
