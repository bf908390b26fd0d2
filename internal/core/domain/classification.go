package domain

// ErrorKind is one of the closed set of failure categories reported to callers.
type ErrorKind string

// Error kinds, named after the symbolic codes of the error table.
const (
	KindUnknownModule     ErrorKind = "UNKNOWN_MODULE"
	KindInvalidPassword   ErrorKind = "INVALID_PASSWORD"
	KindExpiredPassword   ErrorKind = "EXPIRED_PASSWORD"
	KindGenericException  ErrorKind = "GENERIC_EXCEPTION"
	KindInvalidParameters ErrorKind = "INVALID_PARAMETERS"
	KindNoAccounts        ErrorKind = "NO_ACCOUNTS"
)

// AllErrorKinds returns every error kind in classification order.
func AllErrorKinds() []ErrorKind {
	return []ErrorKind{
		KindNoAccounts,
		KindUnknownModule,
		KindInvalidPassword,
		KindExpiredPassword,
		KindInvalidParameters,
		KindGenericException,
	}
}

// IsValid returns true if the kind is part of the taxonomy.
func (k ErrorKind) IsValid() bool {
	for _, known := range AllErrorKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// String returns the symbolic name.
func (k ErrorKind) String() string {
	return string(k)
}

// Classification is the result of classifying a failure.
type Classification struct {
	// Kind is the taxonomy entry the failure maps to.
	Kind ErrorKind

	// Short is a one-line human message. Only set for generic failures.
	Short string

	// Content is the detail reported to the caller. For configuration
	// errors it is the detail message; for generic failures it is the
	// message followed by the diagnostic trace.
	Content string
}
