// Package openbank implements a driver for banks exposing a small REST API
// secured with the OAuth2 password grant.
//
// The API is expected at the module's base_url:
//
//	GET /accounts                           {"accounts": [...]}
//	GET /accounts/{id}/transactions?page=N  {"transactions": [...], "next_page": N}
//
// A 501 answer to a transactions request means the account type has no
// history support.
package openbank

import (
	"context"
	"iter"
	"net/http"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// Driver is the driver name used in module manifests.
const Driver = "openbank"

// Ensure Backend implements the interface.
var _ driven.Backend = (*Backend)(nil)

// Backend is an openbank session.
type Backend struct {
	module string
	client *client
}

// Build is the driven.BackendBuilder of the openbank driver.
func Build(ctx context.Context, cfg driven.BackendConfig) (driven.Backend, error) {
	return BuildWithClient(ctx, cfg, nil)
}

// BuildWithClient builds a backend using the given HTTP client.
func BuildWithClient(ctx context.Context, cfg driven.BackendConfig, httpClient *http.Client) (*Backend, error) {
	parsed, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}

	fields := cfg.Credentials.Map()
	delete(fields, domain.FieldLogin)
	delete(fields, domain.FieldPassword)

	return &Backend{
		module: cfg.Manifest.ID,
		client: newClient(ctx, parsed, cfg.Credentials.Login(), cfg.Credentials.Password(), fields, httpClient),
	}, nil
}

// Module returns the module identifier.
func (b *Backend) Module() string {
	return b.module
}

// Accounts yields the accounts of the login.
func (b *Backend) Accounts(ctx context.Context) iter.Seq2[domain.RawAccount, error] {
	return func(yield func(domain.RawAccount, error) bool) {
		accounts, err := b.client.accounts(ctx)
		if err != nil {
			yield(domain.RawAccount{}, err)
			return
		}
		for _, a := range accounts {
			if !yield(a, nil) {
				return
			}
		}
	}
}

// History yields the transactions of an account, page by page.
func (b *Backend) History(ctx context.Context, account domain.RawAccount) iter.Seq2[domain.RawTransaction, error] {
	return func(yield func(domain.RawTransaction, error) bool) {
		page := 1
		for {
			txs, next, err := b.client.transactions(ctx, account.ID, page)
			if err != nil {
				yield(domain.RawTransaction{}, err)
				return
			}
			for _, tx := range txs {
				if !yield(tx, nil) {
					return
				}
			}
			if next <= page {
				return
			}
			page = next
		}
	}
}

// Close releases idle connections.
func (b *Backend) Close() error {
	b.client.http.CloseIdleConnections()
	return nil
}
