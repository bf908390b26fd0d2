// Package httprepo reads a module repository published over HTTP(S).
package httprepo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/finconnect/internal/adapters/driven/repository"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RequestsPerSecond throttles reads against the repository host.
	RequestsPerSecond = 5

	// MaxDocumentSize bounds index and manifest downloads.
	MaxDocumentSize = 1 << 20
)

// Ensure Repository implements the interface.
var _ driven.ModuleRepository = (*Repository)(nil)

// Repository is a module repository under an HTTP(S) base URL.
type Repository struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures a Repository.
type Option func(*Repository)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Repository) {
		r.client = c
	}
}

// WithRateLimit sets the request rate.
func WithRateLimit(perSecond float64) Option {
	return func(r *Repository) {
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New creates a repository rooted at baseURL.
func New(baseURL string, opts ...Option) (*Repository, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.NewConfigError("repository.location", "%q is not an http(s) URL", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	r := &Repository{
		base:    u,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(RequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Location returns the base URL.
func (r *Repository) Location() string {
	return r.base.String()
}

// Index downloads index.toml.
func (r *Repository) Index(ctx context.Context) (*domain.RepositoryIndex, error) {
	data, err := r.get(ctx, repository.IndexFile)
	if err != nil {
		return nil, err
	}
	return repository.ParseIndex(data)
}

// Manifest downloads modules/<id>.toml.
func (r *Repository) Manifest(ctx context.Context, info domain.ModuleInfo) (*domain.ModuleManifest, error) {
	if !repository.ValidID(info.ID) {
		return nil, fmt.Errorf("%w: module id %q", domain.ErrInvalidInput, info.ID)
	}
	data, err := r.get(ctx, repository.ManifestPath(info.ID))
	if err != nil {
		return nil, err
	}
	return repository.ParseManifest(data, info)
}

func (r *Repository) get(ctx context.Context, path string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	target := r.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	logger.Debug("GET %s", target)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("get %s: %w", target, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target.String()}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", target, MaxDocumentSize)
	}
	return data, nil
}

// StatusError is an unexpected HTTP status from the repository host.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("repository returned %d for %s", e.StatusCode, e.URL)
}
