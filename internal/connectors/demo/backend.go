// Package demo implements a deterministic fake bank.
//
// The demo driver needs no network access. Every login gets the same
// accounts and history on every run, which makes it suitable for
// integration tests of callers. A few logins trigger failure paths:
//
//   - "invalid": the bank rejects the credentials
//   - "expired": the bank reports an expired password
//   - "empty": the login has no account
//   - "crash": the driver panics while listing accounts
//
// An empty password is always rejected.
package demo

import (
	"context"
	"fmt"
	"hash/fnv"
	"iter"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// Driver is the driver name used in module manifests.
const Driver = "demo"

// Special logins.
const (
	LoginInvalid = "invalid"
	LoginExpired = "expired"
	LoginEmpty   = "empty"
	LoginCrash   = "crash"
)

// Account kinds.
const (
	KindChecking = "checking"
	KindSavings  = "savings"
	KindLoan     = "loan"
	KindCard     = "card"
)

// Ensure Backend implements the interface.
var _ driven.Backend = (*Backend)(nil)

// Backend is a demo bank session.
type Backend struct {
	module   string
	login    string
	password string
	config   *Config
	seed     uint64
	now      func() time.Time
}

// Build is the driven.BackendBuilder of the demo driver.
func Build(_ context.Context, cfg driven.BackendConfig) (driven.Backend, error) {
	parsed, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg.Manifest.ID, cfg.Credentials, parsed, time.Now), nil
}

// New creates a demo backend.
func New(module string, creds domain.CredentialBundle, cfg *Config, now func() time.Time) *Backend {
	h := fnv.New64a()
	_, _ = h.Write([]byte(module))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(creds.Login()))

	return &Backend{
		module:   module,
		login:    creds.Login(),
		password: creds.Password(),
		config:   cfg,
		seed:     h.Sum64(),
		now:      now,
	}
}

// Module returns the module identifier.
func (b *Backend) Module() string {
	return b.module
}

// Accounts yields the accounts of the login.
func (b *Backend) Accounts(ctx context.Context) iter.Seq2[domain.RawAccount, error] {
	return func(yield func(domain.RawAccount, error) bool) {
		if err := b.authenticate(); err != nil {
			yield(domain.RawAccount{}, err)
			return
		}
		if b.login == LoginEmpty {
			return
		}
		for _, account := range b.accounts() {
			if err := ctx.Err(); err != nil {
				yield(domain.RawAccount{}, err)
				return
			}
			if !yield(account, nil) {
				return
			}
		}
	}
}

// History yields the generated transactions of an account. Card accounts
// have no history support.
func (b *Backend) History(ctx context.Context, account domain.RawAccount) iter.Seq2[domain.RawTransaction, error] {
	return func(yield func(domain.RawTransaction, error) bool) {
		if err := b.authenticate(); err != nil {
			yield(domain.RawTransaction{}, err)
			return
		}
		if account.Kind == KindCard {
			yield(domain.RawTransaction{}, fmt.Errorf("history of %s account %s: %w", account.Kind, account.ID, domain.ErrNotImplemented))
			return
		}

		for _, tx := range b.history(account) {
			if err := ctx.Err(); err != nil {
				yield(domain.RawTransaction{}, err)
				return
			}
			if !yield(tx, nil) {
				return
			}
		}
	}
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}

// authenticate checks the credentials.
func (b *Backend) authenticate() error {
	switch {
	case b.password == "", b.login == LoginInvalid:
		return fmt.Errorf("demo bank refused login %q: %w", b.login, domain.ErrIncorrectPassword)
	case b.login == LoginExpired:
		return fmt.Errorf("demo bank login %q: %w", b.login, domain.ErrPasswordExpired)
	case b.login == LoginCrash:
		panic("demo bank crashed while logging in " + b.login)
	}
	return nil
}

func (b *Backend) accountID(n int) string {
	return fmt.Sprintf("%d%d", b.seed%1_000_000_000, n)
}

func (b *Backend) accounts() []domain.RawAccount {
	rng := rand.New(rand.NewPCG(b.seed, 0))
	checking := decimal.New(rng.Int64N(15000), -2)

	return []domain.RawAccount{
		{
			ID:       b.accountID(1),
			Label:    "Compte chèque",
			Balance:  checking,
			IBAN:     domain.Some("FR7630001007941234567890185"),
			Currency: domain.Some("EUR"),
			Kind:     KindChecking,
		},
		{
			ID:       b.accountID(2),
			Label:    "Livret A",
			Balance:  decimal.RequireFromString("500.00"),
			Currency: domain.Some("USD"),
			Kind:     KindSavings,
		},
		{
			ID:      b.accountID(3),
			Label:   "Plan Epargne Logement",
			Balance: decimal.Zero,
			IBAN:    domain.Some(""),
			Kind:    KindLoan,
		},
		{
			ID:       b.accountID(4),
			Label:    "Carte Visa Premier",
			Balance:  decimal.RequireFromString("-123.45"),
			Currency: domain.Some("EUR"),
			Kind:     KindCard,
		},
	}
}

type label struct {
	title string
	raw   string
	typ   domain.TransactionType
}

var debitLabels = []label{
	{"Café Moxka", "Petit expresso rapido Café Moxka", domain.TransactionCard},
	{"MerBnB", "Paiement en ligne MerBNB", domain.TransactionCard},
	{"Tabac Debourg", "Bureau de tabac SARL Clopi Cloppa", domain.TransactionCard},
	{"Polyprix CB", "Courses chez Polyprix", domain.TransactionCard},
	{"PRLV UJC", "PRLV UJC", domain.TransactionOrder},
	{"Impots fonciers", "Prelevement impots fonciers numero reference 47839743892", domain.TransactionOrder},
	{"", "VIR Mr Jean Claude Dusse", domain.TransactionTransfer},
	{"Nuage Douillet", "ESPA Abonnement Nuage Douillet", domain.TransactionOrder},
	{"Antiquaire", "CHQ 0012345 Antiquaire", domain.TransactionCheck},
	{"Retrait DAB", "RETRAIT DAB 12/03 PARIS", domain.TransactionWithdrawal},
}

var creditLabels = []label{
	{"VIR Nuage Douillet", "VIR Nuage Douillet REFERENCE Salaire", domain.TransactionTransfer},
	{"Impots", "Remboursement impots en votre faveur", domain.TransactionTransfer},
	{"Case départ", "Passage par la case depart", domain.TransactionDeposit},
}

// history generates the transactions of one account. The generator is
// seeded by login and account, so a run is reproducible.
func (b *Backend) history(account domain.RawAccount) []domain.RawTransaction {
	h := fnv.New64a()
	_, _ = h.Write([]byte(account.ID))
	rng := rand.New(rand.NewPCG(b.seed, h.Sum64()))

	today := b.now().UTC().Truncate(24 * time.Hour)
	count := b.config.Transactions
	if account.Kind != KindChecking {
		count = max(1, count/4)
	}

	txs := make([]domain.RawTransaction, 0, count)
	for i := 0; i < count; i++ {
		var l label
		var amount decimal.Decimal
		if rng.IntN(100) < 15 {
			l = creditLabels[rng.IntN(len(creditLabels))]
			amount = decimal.New(10000+rng.Int64N(70000), -2)
		} else {
			l = debitLabels[rng.IntN(len(debitLabels))]
			amount = decimal.New(-(100 + rng.Int64N(6000)), -2)
		}

		booked := today.AddDate(0, 0, -rng.IntN(b.config.HistoryDays))
		tx := domain.RawTransaction{
			Amount: amount,
			Raw:    l.raw,
			Type:   l.typ,
			Date:   domain.Some(booked),
		}
		if l.title != "" {
			tx.Label = domain.Some(l.title)
		}
		// Card payments are booked a couple of days after the purchase.
		if l.typ == domain.TransactionCard {
			tx.RDate = domain.Some(booked.AddDate(0, 0, -1-rng.IntN(3)))
		}
		txs = append(txs, tx)
	}

	logger.Debug("demo: generated %d transactions for account %s", len(txs), account.ID)
	return txs
}
