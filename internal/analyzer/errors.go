package analyzer

import "errors"

var (
	// ErrInvalidInput is returned when a submission is rejected before any network call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflictingInput is returned when mutually exclusive options are both set.
	ErrConflictingInput = errors.New("conflicting input")

	// ErrUnknownAnalysisKind is returned for identifiers without a known kind prefix.
	ErrUnknownAnalysisKind = errors.New("unknown analysis kind")
)
