package openbank

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// Default driver parameters.
const (
	DefaultClientID          = "finconnect"
	DefaultRequestsPerSecond = 4.0
	DefaultBurst             = 2
)

// Config holds the parsed driver parameters of an openbank module.
type Config struct {
	// BaseURL is the API root, e.g. https://api.examplebank.test/v1.
	BaseURL *url.URL

	// TokenURL is the OAuth2 token endpoint.
	// Defaults to <base_url>/oauth/token.
	TokenURL string

	// ClientID and ClientSecret identify finconnect to the bank.
	ClientID     string
	ClientSecret string

	// Scopes requested with the password grant.
	Scopes []string

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond float64
}

// ParseConfig reads the driver parameters from the module manifest.
func ParseConfig(cfg driven.BackendConfig) (*Config, error) {
	raw := cfg.Param("base_url", "")
	if raw == "" {
		return nil, domain.NewConfigError("base_url", "module %s has no base_url", cfg.Manifest.ID)
	}
	base, err := url.Parse(raw)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, domain.NewConfigError("base_url", "%q is not an http(s) URL", raw)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	rps := DefaultRequestsPerSecond
	if v := cfg.Param("requests_per_second", ""); v != "" {
		rps, err = strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, domain.NewConfigError("requests_per_second", "must be a positive number, got %q", v)
		}
	}

	var scopes []string
	if v := cfg.Param("scopes", ""); v != "" {
		scopes = strings.Fields(v)
	}

	return &Config{
		BaseURL:           base,
		TokenURL:          cfg.Param("token_url", base.String()+"/oauth/token"),
		ClientID:          cfg.Param("client_id", DefaultClientID),
		ClientSecret:      cfg.Param("client_secret", ""),
		Scopes:            scopes,
		RequestsPerSecond: rps,
	}, nil
}
