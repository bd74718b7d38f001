package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or contradictory request input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ResolutionError means a station name could not be geolocated after the
// provider client exhausted its retries, or resolved to zero candidates.
type ResolutionError struct {
	Station string
	Err     error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("station %q: %v", e.Station, e.Err)
	}
	return fmt.Sprintf("station %q: no candidates found", e.Station)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ProviderError is a transient upstream failure. Retried internally; once
// surfaced it is tolerated per-station as long as partial success exists.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AggregateError is raised only when every input station failed to resolve
// to any candidate. It is the single request-level failure of the pipeline.
type AggregateError struct {
	Errs []error
}

func (e *AggregateError) Error() string {
	if len(e.Errs) == 0 {
		return "no stations could be resolved"
	}
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	return "no stations could be resolved: " + strings.Join(parts, "; ")
}

func (e *AggregateError) Unwrap() []error { return e.Errs }
