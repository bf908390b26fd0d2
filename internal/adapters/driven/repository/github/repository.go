package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/finconnect/internal/adapters/driven/repository"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Repository implements the interface.
var _ driven.ModuleRepository = (*Repository)(nil)

// Repository is a module repository hosted on GitHub.
type Repository struct {
	owner       string
	repo        string
	ref         string
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// Option configures a Repository.
type Option func(*Repository) error

// WithBaseURL points the client at another API endpoint, such as a
// GitHub Enterprise server.
func WithBaseURL(base string) Option {
	return func(r *Repository) error {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parse base URL: %w", err)
		}
		r.gh.BaseURL = u
		return nil
	}
}

// New creates a repository from a location of the form owner/repo[@ref].
// An empty token makes unauthenticated requests.
func New(location, token string, opts ...Option) (*Repository, error) {
	owner, repo, ref, err := ParseLocation(location)
	if err != nil {
		return nil, domain.NewConfigError("repository.location", "%v", err)
	}

	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = DefaultTimeout

	r := &Repository{
		owner:       owner,
		repo:        repo,
		ref:         ref,
		gh:          gh.NewClient(httpClient),
		rateLimiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseLocation splits owner/repo[@ref].
func ParseLocation(location string) (owner, repo, ref string, err error) {
	rest := strings.TrimSpace(location)
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest, ref = rest[:at], rest[at+1:]
		if ref == "" {
			return "", "", "", fmt.Errorf("%w: %q has an empty ref", ErrInvalidLocation, location)
		}
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: %q is not owner/repo[@ref]", ErrInvalidLocation, location)
	}
	return parts[0], parts[1], ref, nil
}

// Location returns owner/repo[@ref].
func (r *Repository) Location() string {
	loc := r.owner + "/" + r.repo
	if r.ref != "" {
		loc += "@" + r.ref
	}
	return loc
}

// Index fetches index.toml.
func (r *Repository) Index(ctx context.Context) (*domain.RepositoryIndex, error) {
	content, err := r.fileContent(ctx, repository.IndexFile)
	if err != nil {
		return nil, err
	}
	return repository.ParseIndex([]byte(content))
}

// Manifest fetches modules/<id>.toml.
func (r *Repository) Manifest(ctx context.Context, info domain.ModuleInfo) (*domain.ModuleManifest, error) {
	if !repository.ValidID(info.ID) {
		return nil, fmt.Errorf("%w: module id %q", domain.ErrInvalidInput, info.ID)
	}
	content, err := r.fileContent(ctx, repository.ManifestPath(info.ID))
	if IsNotFound(err) {
		return nil, fmt.Errorf("manifest of %s: %w: %w", info.ID, domain.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return repository.ParseManifest([]byte(content), info)
}

// fileContent fetches the decoded content of a file.
func (r *Repository) fileContent(ctx context.Context, path string) (string, error) {
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	logger.Debug("github contents %s/%s %s@%s", r.owner, r.repo, path, r.ref)
	opts := &gh.RepositoryContentGetOptions{Ref: r.ref}
	content, _, resp, err := r.gh.Repositories.GetContents(ctx, r.owner, r.repo, path, opts)
	if resp != nil && resp.Response != nil {
		r.rateLimiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		return "", r.wrapError(err, "get contents")
	}
	if content == nil {
		return "", fmt.Errorf("%s is a directory, not a file", path)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode content: %w", err)
	}
	return decoded, nil
}

// wrapError converts go-github errors to our error types.
func (r *Repository) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   r.rateLimiter.ResetTime(),
			Remaining: r.rateLimiter.Remaining(),
			Limit:     r.rateLimiter.Limit(),
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
