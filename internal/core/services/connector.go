package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/core/ports/driving"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// Ensure Connector implements the interface.
var _ driving.Connector = (*Connector)(nil)

// fetchState tracks a run through the connector lifecycle.
type fetchState int

const (
	stateStart fetchState = iota
	stateSessionBuilding
	stateFetching
	stateDone
	stateFailed
)

func (s fetchState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateSessionBuilding:
		return "session_building"
	case stateFetching:
		return "fetching"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Connector fetches accounts or transactions from a source and renders
// the outcome as a result envelope.
type Connector struct {
	sessions   *SessionBuilder
	normaliser driven.RecordNormaliser
	classifier *ErrorClassifier
}

// NewConnector creates a connector.
func NewConnector(
	sessions *SessionBuilder,
	normaliser driven.RecordNormaliser,
	classifier *ErrorClassifier,
) *Connector {
	return &Connector{
		sessions:   sessions,
		normaliser: normaliser,
		classifier: classifier,
	}
}

// fetchRun is the state of one Fetch call.
type fetchRun struct {
	id    string
	state fetchState
	log   *zap.Logger
}

func (r *fetchRun) enter(s fetchState) {
	r.log.Debug("state", zap.Stringer("from", r.state), zap.Stringer("to", s))
	r.state = s
}

// Fetch runs one operation. It never returns a Go error: failures are
// classified exactly once and carried in the envelope.
func (c *Connector) Fetch(ctx context.Context, req driving.FetchRequest) domain.ResultEnvelope {
	run := &fetchRun{id: uuid.NewString(), state: stateStart}
	run.log = logger.L().With(
		zap.String("run", run.id),
		zap.String("module", req.SourceID),
		zap.Stringer("operation", req.Operation),
	)

	envelope, err := c.fetch(ctx, run, req)
	if err != nil {
		run.enter(stateFailed)
		return c.classifier.Envelope(err)
	}
	run.enter(stateDone)
	return envelope
}

func (c *Connector) fetch(ctx context.Context, run *fetchRun, req driving.FetchRequest) (domain.ResultEnvelope, error) {
	if _, err := domain.ParseOperation(req.Operation.String()); err != nil {
		return domain.ResultEnvelope{}, err
	}

	run.enter(stateSessionBuilding)
	creds, err := domain.NewCredentialBundle(req.Login, req.Password, req.Fields)
	if err != nil {
		return domain.ResultEnvelope{}, err
	}
	session, err := c.sessions.Build(ctx, req.SourceID, creds)
	if err != nil {
		return domain.ResultEnvelope{}, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			run.log.Warn("closing backend session failed", zap.Error(err))
		}
	}()

	run.enter(stateFetching)
	accounts, err := collectAccounts(ctx, session)
	if err != nil {
		return domain.ResultEnvelope{}, err
	}
	if len(accounts) == 0 {
		return domain.ResultEnvelope{}, fmt.Errorf("%w for module %s", domain.ErrNoAccounts, req.SourceID)
	}

	switch req.Operation {
	case domain.OperationAccounts:
		results := make([]domain.Account, 0, len(accounts))
		for _, raw := range accounts {
			results = append(results, c.normaliser.NormaliseAccount(raw))
		}
		return domain.AccountsResult(results), nil

	default:
		var results []domain.Transaction
		for _, account := range accounts {
			history, err := collectHistory(ctx, session, account)
			if errors.Is(err, domain.ErrNotImplemented) {
				logger.Warn("This account type has not been implemented: %s (%s)", account.ID, account.Kind)
				continue
			}
			if err != nil {
				return domain.ResultEnvelope{}, fmt.Errorf("history of account %s: %w", account.ID, err)
			}
			for _, raw := range history {
				results = append(results, c.normaliser.NormaliseTransaction(raw, account.ID))
			}
		}
		return domain.TransactionsResult(results), nil
	}
}

// collectAccounts drains the account sequence. Accounts are materialised
// before any history is requested because the sequence cannot be replayed.
func collectAccounts(ctx context.Context, session *Session) ([]domain.RawAccount, error) {
	var accounts []domain.RawAccount
	for account, err := range session.Accounts(ctx) {
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// collectHistory drains one account's history. Transactions yielded before
// a not-implemented error are discarded along with the account.
func collectHistory(ctx context.Context, session *Session, account domain.RawAccount) ([]domain.RawTransaction, error) {
	var txs []domain.RawTransaction
	for tx, err := range session.History(ctx, account) {
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
