package openbank

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

// Error codes returned by openbank APIs in the "error" member of a body.
const (
	codeInvalidGrant    = "invalid_grant"
	codePasswordExpired = "password_expired"
)

// APIError is an unexpected response from the bank API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("openbank: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("openbank: unexpected status %d", e.StatusCode)
}

// wrapError maps a bank response or token failure onto domain errors.
// The original error stays in the chain.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		switch {
		case rerr.ErrorCode == codePasswordExpired:
			return fmt.Errorf("%w: %w", domain.ErrPasswordExpired, err)
		case rerr.ErrorCode == codeInvalidGrant,
			rerr.Response != nil && rerr.Response.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", domain.ErrIncorrectPassword, err)
		}
		return err
	}

	var aerr *APIError
	if errors.As(err, &aerr) {
		switch {
		case aerr.Code == codePasswordExpired:
			return fmt.Errorf("%w: %w", domain.ErrPasswordExpired, err)
		case aerr.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", domain.ErrIncorrectPassword, err)
		case aerr.StatusCode == http.StatusNotImplemented:
			return fmt.Errorf("%w: %w", domain.ErrNotImplemented, err)
		case aerr.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
	}
	return err
}
