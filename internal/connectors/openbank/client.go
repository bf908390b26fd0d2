package openbank

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxBodySize bounds a single API response.
	maxBodySize = 8 << 20

	// fieldHeaderPrefix carries custom credential fields on every request.
	fieldHeaderPrefix = "X-Openbank-Field-"
)

// client is a thin openbank REST client. Authentication uses the OAuth2
// resource owner password grant; the token is fetched on the first call.
type client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
}

func newClient(ctx context.Context, cfg *Config, login, password string, fields map[string]string, base *http.Client) *client {
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	plain := &http.Client{
		Timeout:   base.Timeout,
		Transport: &fieldTransport{fields: fields, next: transport},
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL, AuthStyle: oauth2.AuthStyleInParams},
	}

	// The token source outlives the Build context, so it must not be
	// canceled with it.
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, plain)
	src := oauth2.ReuseTokenSource(nil, &passwordTokenSource{
		ctx:      tokenCtx,
		config:   oc,
		login:    login,
		password: password,
	})

	return &client{
		base: cfg.BaseURL,
		http: &http.Client{
			Timeout:   base.Timeout,
			Transport: &oauth2.Transport{Source: src, Base: plain.Transport},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurst),
	}
}

// passwordTokenSource exchanges the credentials for a token.
type passwordTokenSource struct {
	ctx      context.Context
	config   *oauth2.Config
	login    string
	password string
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	logger.Debug("openbank: requesting token from %s", s.config.Endpoint.TokenURL)
	return s.config.PasswordCredentialsToken(s.ctx, s.login, s.password)
}

// fieldTransport sends custom credential fields as request headers.
type fieldTransport struct {
	fields map[string]string
	next   http.RoundTripper
}

func (t *fieldTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.fields) == 0 {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	for name, value := range t.fields {
		clone.Header.Set(fieldHeaderPrefix+name, value)
	}
	return t.next.RoundTrip(clone)
}

type accountJSON struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Balance  decimal.Decimal `json:"balance"`
	IBAN     *string         `json:"iban"`
	Currency *string         `json:"currency"`
	Type     string          `json:"type"`
}

type accountsPage struct {
	Accounts []accountJSON `json:"accounts"`
}

type transactionJSON struct {
	Amount decimal.Decimal `json:"amount"`
	Raw    string          `json:"raw"`
	Type   string          `json:"type"`
	RDate  string          `json:"rdate"`
	Date   string          `json:"date"`
	Label  *string         `json:"label"`
}

type transactionsPage struct {
	Transactions []transactionJSON `json:"transactions"`
	NextPage     int               `json:"next_page"`
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func (c *client) accounts(ctx context.Context) ([]domain.RawAccount, error) {
	var page accountsPage
	if err := c.get(ctx, "/accounts", nil, &page); err != nil {
		return nil, err
	}

	out := make([]domain.RawAccount, 0, len(page.Accounts))
	for _, a := range page.Accounts {
		out = append(out, domain.RawAccount{
			ID:       a.ID,
			Label:    a.Label,
			Balance:  a.Balance,
			IBAN:     optional(a.IBAN),
			Currency: optional(a.Currency),
			Kind:     a.Type,
		})
	}
	return out, nil
}

func (c *client) transactions(ctx context.Context, accountID string, page int) ([]domain.RawTransaction, int, error) {
	query := url.Values{}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	var body transactionsPage
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/transactions", query, &body); err != nil {
		return nil, 0, err
	}

	out := make([]domain.RawTransaction, 0, len(body.Transactions))
	for i, t := range body.Transactions {
		rdate, err := parseDate(t.RDate)
		if err != nil {
			return nil, 0, fmt.Errorf("transaction %d of account %s: rdate: %w", i, accountID, err)
		}
		date, err := parseDate(t.Date)
		if err != nil {
			return nil, 0, fmt.Errorf("transaction %d of account %s: date: %w", i, accountID, err)
		}
		out = append(out, domain.RawTransaction{
			Amount: t.Amount,
			Raw:    t.Raw,
			Type:   domain.ParseTransactionType(t.Type),
			RDate:  rdate,
			Date:   date,
			Label:  optional(t.Label),
		})
	}
	return out, body.NextPage, nil
}

func (c *client) get(ctx context.Context, path string, query url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	target := *c.base
	target.Path += path
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("openbank: GET %s", target.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(fmt.Errorf("get %s: %w", target.Path, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s: %w", target.Path, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Code = eb.Error
			apiErr.Message = eb.Description
		}
		return wrapError(fmt.Errorf("get %s: %w", target.Path, apiErr))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", target.Path, err)
	}
	return nil
}

func optional[T any](p *T) domain.Optional[T] {
	if p == nil {
		return domain.None[T]()
	}
	return domain.Some(*p)
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (domain.Optional[time.Time], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.None[time.Time](), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return domain.Some(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return domain.None[time.Time](), fmt.Errorf("%w: %q is not a date", domain.ErrInvalidInput, s)
	}
	return domain.Some(t), nil
}
