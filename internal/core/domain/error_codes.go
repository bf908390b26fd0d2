package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCodes maps error kinds to the opaque codes published by the
// externally supplied error registry. It is immutable once built.
type ErrorCodes struct {
	codes map[ErrorKind]string
}

// NewErrorCodes builds the table from a symbolic-name to code mapping.
// Every kind of the taxonomy must be present; unknown names are ignored
// since the registry is shared with other components.
func NewErrorCodes(table map[string]string) (ErrorCodes, error) {
	codes := make(map[ErrorKind]string, len(AllErrorKinds()))
	var missing []string
	for _, kind := range AllErrorKinds() {
		code, ok := table[kind.String()]
		if !ok || code == "" {
			missing = append(missing, kind.String())
			continue
		}
		codes[kind] = code
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return ErrorCodes{}, fmt.Errorf("%w: error table is missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return ErrorCodes{codes: codes}, nil
}

// DefaultErrorCodes returns a table where every code equals its symbolic name.
func DefaultErrorCodes() ErrorCodes {
	codes := make(map[ErrorKind]string, len(AllErrorKinds()))
	for _, kind := range AllErrorKinds() {
		codes[kind] = kind.String()
	}
	return ErrorCodes{codes: codes}
}

// Code returns the code for the given kind.
// An unknown kind, or a zero table, resolves to the generic exception code.
func (c ErrorCodes) Code(kind ErrorKind) string {
	if code, ok := c.codes[kind]; ok {
		return code
	}
	if code, ok := c.codes[KindGenericException]; ok {
		return code
	}
	return KindGenericException.String()
}
