package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrCatalogFetch means the breed list could not be loaded
	ErrCatalogFetch = goerr.New("failed to fetch breed catalog")

	// ErrExhausted means every known breed is excluded by the current ban list
	ErrExhausted = goerr.New("all breeds are banned")

	// ErrImageFetch means the image lookup failed after a breed was chosen
	ErrImageFetch = goerr.New("failed to fetch breed image")

	// ErrCatalogNotReady means selection was requested before the catalog was loaded
	ErrCatalogNotReady = goerr.New("breed catalog is not loaded")

	ErrEmptyToken       = goerr.New("ban token is empty")
	ErrUnknownAttribute = goerr.New("unknown attribute")
)

// APIError is a non-2xx response from the Cat API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d, body: %s", e.StatusCode, e.Body)
}

type failure struct {
	kind  error
	cause error
}

func (f *failure) Error() string {
	return f.kind.Error() + ": " + f.cause.Error()
}

func (f *failure) Unwrap() []error {
	return []error{f.kind, f.cause}
}

// Fail classifies cause as one of the error kinds above (ErrCatalogFetch,
// ErrImageFetch). errors.Is matches both kind and cause.
func Fail(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &failure{kind: kind, cause: cause}
}

// UserMessage converts an error into the message shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrExhausted):
		return "All breeds are banned! Remove some from the ban list to continue."
	case errors.Is(err, ErrCatalogNotReady):
		return "Cat breeds are not loaded yet. Please wait or check your API key."
	case errors.Is(err, ErrImageFetch):
		return "Failed to fetch cat: " + causeMessage(err)
	case errors.Is(err, ErrCatalogFetch):
		return "Failed to load cat breeds: " + causeMessage(err)
	default:
		return err.Error()
	}
}

func causeMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("HTTP error! status: %d", apiErr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}

	var f *failure
	if errors.As(err, &f) {
		return f.cause.Error()
	}
	return err.Error()
}
