package services

import (
	"context"
	"iter"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finconnect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// fakeBackend is a scripted driven.Backend.
type fakeBackend struct {
	module      string
	accounts    []domain.RawAccount
	accountsErr error
	history     map[string][]domain.RawTransaction
	historyErr  map[string]error

	// panicAccounts panics while producing the second account.
	panicAccounts bool
	// panicOpen panics before returning the account sequence.
	panicOpen bool
	closeErr  error

	mu     sync.Mutex
	closed int
	cfg    driven.BackendConfig
}

func (b *fakeBackend) Module() string { return b.module }

func (b *fakeBackend) Accounts(_ context.Context) iter.Seq2[domain.RawAccount, error] {
	if b.panicOpen {
		panic("open failed")
	}
	return func(yield func(domain.RawAccount, error) bool) {
		if b.accountsErr != nil {
			yield(domain.RawAccount{}, b.accountsErr)
			return
		}
		for i, a := range b.accounts {
			if b.panicAccounts && i == 1 {
				panic("index out of range")
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

func (b *fakeBackend) History(_ context.Context, account domain.RawAccount) iter.Seq2[domain.RawTransaction, error] {
	return func(yield func(domain.RawTransaction, error) bool) {
		for _, tx := range b.history[account.ID] {
			if !yield(tx, nil) {
				return
			}
		}
		if err := b.historyErr[account.ID]; err != nil {
			yield(domain.RawTransaction{}, err)
		}
	}
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return b.closeErr
}

func (b *fakeBackend) closeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// fakeFactory hands out one backend for every module.
type fakeFactory struct {
	backend   *fakeBackend
	createErr error
	panics    bool

	mu    sync.Mutex
	calls int
}

func (f *fakeFactory) Create(_ context.Context, cfg driven.BackendConfig) (driven.Backend, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.panics {
		panic("driver init failed")
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.backend.cfg = cfg
	return f.backend, nil
}

func (f *fakeFactory) Register(string, driven.BackendBuilder) {}

func (f *fakeFactory) SupportedDrivers() []string { return []string{"fake"} }

func bankManifest(id, version string, fields ...domain.ConfigKey) domain.ModuleManifest {
	return domain.ModuleManifest{
		ID:      id,
		Name:    "Bank " + id,
		Version: version,
		Driver:  "fake",
		Fields:  fields,
	}
}

func checkingAccount(id string) domain.RawAccount {
	return domain.RawAccount{
		ID:       id,
		Label:    "Checking " + id,
		Balance:  decimal.RequireFromString("10.50"),
		Currency: domain.Some("EUR"),
		Kind:     "checking",
	}
}

type registryFixture struct {
	repo     *memory.Repository
	cache    *memory.ModuleCache
	registry *ModuleRegistry
}

func newRegistryFixture(manifests ...domain.ModuleManifest) *registryFixture {
	repo := memory.NewRepository(manifests...)
	cache := memory.NewModuleCache()
	return &registryFixture{
		repo:     repo,
		cache:    cache,
		registry: NewModuleRegistry(repo, cache),
	}
}

func mustCreds(login, password string, custom ...domain.CustomField) domain.CredentialBundle {
	creds, err := domain.NewCredentialBundle(login, password, custom)
	if err != nil {
		panic(err)
	}
	return creds
}
