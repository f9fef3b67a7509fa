package airquality

import (
	"fmt"
	"strings"
)

// NotFoundError reports that a place name resolved to no candidates.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("location %q not found", e.Query)
}

// TransportError covers network failures, non-2xx responses, malformed payloads
// and timeouts on any upstream call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CityFailure records why one member of a ranking batch failed.
type CityFailure struct {
	City string
	Err  error
}

// AggregationError is returned when any fetch in a ranking batch fails.
// No partial ranking accompanies it.
type AggregationError struct {
	Failures []CityFailure
}

func (e *AggregationError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.City)
	}
	return fmt.Sprintf("ranking failed for %d of the requested cities: %s", len(e.Failures), strings.Join(names, ", "))
}

// Unwrap exposes the member errors to errors.Is / errors.As.
func (e *AggregationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
