package app

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest is returned when the request body is not valid JSON.
	ErrMalformedRequest = errors.New("malformed request body")
	// ErrInvalidSubscription is the parent of every validation failure.
	ErrInvalidSubscription = errors.New("invalid subscription")
	// ErrMissingFields is returned when email is absent or empty.
	ErrMissingFields = fmt.Errorf("%w: missing fields", ErrInvalidSubscription)
	// ErrValidationFailed is returned when present fields fail the schema.
	ErrValidationFailed = fmt.Errorf("%w: schema validation failed", ErrInvalidSubscription)
	// ErrDuplicateSubscriber is returned when the email is already on the list.
	ErrDuplicateSubscriber = errors.New("email is already in mailing list")
)
