package openbank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// fakeBank serves a minimal openbank API.
type fakeBank struct {
	server     *httptest.Server
	tokenCalls atomic.Int32

	mu      sync.Mutex
	headers http.Header
}

func (fb *fakeBank) lastHeaders() http.Header {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.headers
}

func newFakeBank(t *testing.T) *fakeBank {
	t.Helper()
	fb := &fakeBank{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		fb.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		switch r.PostForm.Get("username") {
		case "expired":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"password_expired","error_description":"renew your password"}`))
			return
		}
		if r.PostForm.Get("password") != "secret" || r.PostForm.Get("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-` + r.PostForm.Get("username") + `","token_type":"Bearer","expires_in":3600}`))
	})

	mux.HandleFunc("GET /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.headers = r.Header.Clone()
		fb.mu.Unlock()
		if r.Header.Get("Authorization") == "Bearer tok-locked" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"password_expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"accounts":[
			{"id":"A1","label":"Current","balance":"42.10","iban":"FR7612345","currency":"EUR","type":"checking"},
			{"id":"C1","label":"Card","balance":-12.5,"iban":null,"type":"card"}
		]}`))
	})

	mux.HandleFunc("GET /v1/accounts/A1/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"transactions":[
				{"amount":"-3.50","raw":"CB CAFE","type":"card","rdate":"2024-03-01","date":"2024-03-03","label":"Cafe"}
			],"next_page":2}`))
		case "2":
			_, _ = w.Write([]byte(`{"transactions":[
				{"amount":"1200","raw":"VIR SALAIRE","type":"transfer","date":"2024-02-28T00:00:00Z"}
			]}`))
		}
	})

	mux.HandleFunc("GET /v1/accounts/C1/transactions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})

	mux.HandleFunc("GET /v1/accounts/BAD/transactions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"transactions":[{"amount":"1","raw":"x","date":"yesterday"}]}`))
	})

	fb.server = httptest.NewServer(mux)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBank) backend(t *testing.T, login, password string, custom ...domain.CustomField) *Backend {
	t.Helper()
	creds, err := domain.NewCredentialBundle(login, password, custom)
	require.NoError(t, err)

	b, err := BuildWithClient(context.Background(), driven.BackendConfig{
		Manifest: domain.ModuleManifest{
			ID:     "examplebank",
			Driver: Driver,
			Params: map[string]string{
				"base_url":            fb.server.URL + "/v1/",
				"token_url":           fb.server.URL + "/oauth/token",
				"requests_per_second": "1000",
			},
		},
		Credentials: creds,
	}, fb.server.Client())
	require.NoError(t, err)
	return b
}

func accountsOf(b *Backend) ([]domain.RawAccount, error) {
	var out []domain.RawAccount
	for a, err := range b.Accounts(context.Background()) {
		if err != nil {
			return out, err
		}
		out = append(out, a)
	}
	return out, nil
}

func historyOf(b *Backend, id string) ([]domain.RawTransaction, error) {
	var out []domain.RawTransaction
	for tx, err := range b.History(context.Background(), domain.RawAccount{ID: id}) {
		if err != nil {
			return out, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(driven.BackendConfig{Manifest: domain.ModuleManifest{
		Params: map[string]string{"base_url": "https://api.bank.test/v1/", "scopes": "accounts history"},
	}})

	require.NoError(t, err)
	assert.Equal(t, "https://api.bank.test/v1", cfg.BaseURL.String())
	assert.Equal(t, "https://api.bank.test/v1/oauth/token", cfg.TokenURL)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
	assert.Equal(t, []string{"accounts", "history"}, cfg.Scopes)
	assert.InDelta(t, DefaultRequestsPerSecond, cfg.RequestsPerSecond, 0)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		field  string
	}{
		{"missing base url", nil, "base_url"},
		{"not http", map[string]string{"base_url": "ftp://bank"}, "base_url"},
		{"bad rate", map[string]string{"base_url": "https://bank", "requests_per_second": "-1"}, "requests_per_second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(driven.BackendConfig{Manifest: domain.ModuleManifest{ID: "b", Params: tt.params}})

			ce, ok := domain.IsConfigError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestAccounts(t *testing.T) {
	fb := newFakeBank(t)
	b := fb.backend(t, "alice", "secret", domain.CustomField{Name: "website", Value: "pro"})

	accounts, err := accountsOf(b)

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "A1", accounts[0].ID)
	assert.Equal(t, "42.1", accounts[0].Balance.String())
	assert.Equal(t, domain.Some("FR7612345"), accounts[0].IBAN)
	assert.Equal(t, "checking", accounts[0].Kind)
	assert.Equal(t, "-12.5", accounts[1].Balance.String())
	assert.False(t, accounts[1].IBAN.IsSet())
	assert.False(t, accounts[1].Currency.IsSet())

	assert.Equal(t, "Bearer tok-alice", fb.lastHeaders().Get("Authorization"))
	assert.Equal(t, "pro", fb.lastHeaders().Get(fieldHeaderPrefix+"website"))
	assert.Equal(t, "examplebank", b.Module())
}

func TestAccounts_TokenIsReused(t *testing.T) {
	fb := newFakeBank(t)
	b := fb.backend(t, "alice", "secret")

	_, err := accountsOf(b)
	require.NoError(t, err)
	_, err = historyOf(b, "A1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), fb.tokenCalls.Load())
}

func TestAccounts_AuthErrors(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		pass    string
		wantErr error
	}{
		{"wrong password", "alice", "nope", domain.ErrIncorrectPassword},
		{"expired at token", "expired", "secret", domain.ErrPasswordExpired},
		{"expired at api", "locked", "secret", domain.ErrPasswordExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBank(t)

			_, err := accountsOf(fb.backend(t, tt.login, tt.pass))

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHistory_FollowsPages(t *testing.T) {
	fb := newFakeBank(t)

	txs, err := historyOf(fb.backend(t, "alice", "secret"), "A1")

	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "-3.5", txs[0].Amount.String())
	assert.Equal(t, domain.TransactionCard, txs[0].Type)
	assert.Equal(t, domain.Some("Cafe"), txs[0].Label)
	rdate, ok := txs[0].RDate.Get()
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", rdate.Format("2006-01-02"))

	assert.Equal(t, domain.TransactionTransfer, txs[1].Type)
	assert.False(t, txs[1].RDate.IsSet())
	assert.False(t, txs[1].Label.IsSet())
	assert.True(t, txs[1].Date.IsSet())
}

func TestHistory_NotImplemented(t *testing.T) {
	fb := newFakeBank(t)

	_, err := historyOf(fb.backend(t, "alice", "secret"), "C1")

	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotImplemented, apiErr.StatusCode)
}

func TestHistory_BadDate(t *testing.T) {
	fb := newFakeBank(t)

	_, err := historyOf(fb.backend(t, "alice", "secret"), "BAD")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, strings.Contains(err.Error(), "yesterday"))
}

func TestHistory_UnknownAccount(t *testing.T) {
	fb := newFakeBank(t)

	_, err := historyOf(fb.backend(t, "alice", "secret"), "ZZZ")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClose(t *testing.T) {
	fb := newFakeBank(t)

	assert.NoError(t, fb.backend(t, "alice", "secret").Close())
}
