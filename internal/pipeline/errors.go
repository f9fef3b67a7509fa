package pipeline

import (
	"errors"
	"fmt"
)

// FailureMessage is the single user-facing message for every failed request.
const FailureMessage = "Could not load data. Please try another city."

var (
	// ErrSuperseded is returned to a request that was cancelled because a newer
	// one started. A superseded request never commits results.
	ErrSuperseded = errors.New("request superseded by a newer request")

	// ErrUnknownCategory is returned when selecting a category the catalog
	// does not contain.
	ErrUnknownCategory = errors.New("unknown exercise category")

	// ErrGeolocationUnavailable is returned by a Geolocator that has no fix.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
)

// RequestError is a failed request cycle. It unwraps to the underlying
// *airquality.NotFoundError or *airquality.TransportError.
type RequestError struct {
	RequestID string
	Trigger   string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request %s failed: %v", e.Trigger, e.RequestID, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage is what the presentation layer should display.
func (e *RequestError) UserMessage() string { return FailureMessage }
