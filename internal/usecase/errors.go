package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrAnalysisUnavailable means the upstream answered but has no analysis for the match.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrInvalidPayload means the upstream payload has the wrong shape; retrying will not help.
	ErrInvalidPayload = errors.New("invalid analysis payload")
)
