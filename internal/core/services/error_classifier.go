package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// ErrorClassifier maps fetch failures onto the closed error taxonomy and
// renders them with the codes of the injected error table.
type ErrorClassifier struct {
	codes domain.ErrorCodes
}

// NewErrorClassifier creates a classifier using the given code table.
func NewErrorClassifier(codes domain.ErrorCodes) *ErrorClassifier {
	return &ErrorClassifier{codes: codes}
}

// Classify is a total function from a failure to its classification.
// Checks run in a fixed order; the first match wins. Anything unmatched is
// a generic exception carrying the message and the full trace.
func Classify(err error) domain.Classification {
	switch {
	case errors.Is(err, domain.ErrNoAccounts):
		return domain.Classification{Kind: domain.KindNoAccounts}
	case errors.Is(err, domain.ErrUnknownModule):
		return domain.Classification{Kind: domain.KindUnknownModule}
	case errors.Is(err, domain.ErrIncorrectPassword):
		return domain.Classification{Kind: domain.KindInvalidPassword}
	case errors.Is(err, domain.ErrPasswordExpired):
		return domain.Classification{Kind: domain.KindExpiredPassword}
	}

	if ce, ok := domain.IsConfigError(err); ok {
		return domain.Classification{Kind: domain.KindInvalidParameters, Content: ce.Detail}
	}

	short := "unknown error"
	if err != nil {
		short = err.Error()
	}
	return domain.Classification{
		Kind:    domain.KindGenericException,
		Short:   short,
		Content: short + "\n" + Trace(err),
	}
}

// Envelope classifies err and renders the error envelope.
// Generic failures are also written to the diagnostic log in full.
func (c *ErrorClassifier) Envelope(err error) domain.ResultEnvelope {
	cl := Classify(err)
	if cl.Kind == domain.KindGenericException {
		logger.Error("Unknown error: %s", cl.Content)
	}
	return domain.ResultEnvelope{
		ErrorCode:    c.codes.Code(cl.Kind),
		ErrorShort:   cl.Short,
		ErrorContent: cl.Content,
	}
}

// Trace describes the causal chain of err, one wrapped error per line,
// followed by the goroutine stack of any backend panic found in the chain.
func Trace(err error) string {
	var b strings.Builder
	b.WriteString("error chain:\n")
	var panics []*domain.BackendPanic
	writeChain(&b, err, 0, &panics)
	for _, p := range panics {
		fmt.Fprintf(&b, "panic in backend %s:\n%s", p.Module, p.Stack)
	}
	return b.String()
}

func writeChain(b *strings.Builder, err error, depth int, panics *[]*domain.BackendPanic) {
	if err == nil {
		return
	}
	fmt.Fprintf(b, "%s%T: %s\n", strings.Repeat("  ", depth+1), err, err.Error())
	if p, ok := err.(*domain.BackendPanic); ok {
		*panics = append(*panics, p)
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			writeChain(b, inner, depth+1, panics)
		}
	case interface{ Unwrap() error }:
		writeChain(b, u.Unwrap(), depth+1, panics)
	}
}
