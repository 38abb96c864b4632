package customer

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput is returned when a search has neither an identifier nor a query.
	ErrInvalidInput = errors.New("invalid input: no search criteria supplied")
	// ErrNotFound is returned when a valid lookup matches no customer.
	ErrNotFound = errors.New("customer not found")
)

// TransportError describes a failed call to the tokenization service.
// Status is zero when no HTTP response was received.
type TransportError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: http status %d: %s", e.Op, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s: http status %d", e.Op, e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}

// IsNotFound reports whether err means "no such customer", including a 404 from the service.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || StatusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the service rejected the session credential.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}
