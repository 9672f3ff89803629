// Package apierr defines the error kinds shared by the Pachca client packages.
//
// Packages wrap these sentinels with fmt.Errorf("...: %w", sentinel) and
// callers match them with errors.Is.
package apierr

import "errors"

var (
	// ErrInvalidConfiguration indicates a client or cache was constructed with bad settings.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument indicates an operation was called with arguments that
	// fail local validation. No request is sent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEntryNotFound indicates the server answered 404.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrBadRequest indicates the server answered with a 4xx other than 404.
	ErrBadRequest = errors.New("bad request")

	// ErrUnexpectedResponse indicates any other non-success status (3xx, 5xx, ...).
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrNotResolved indicates a chat or user name did not match any listed entity.
	ErrNotResolved = errors.New("not resolved")

	// ErrAlreadyExists is reserved for duplicate-creation detection.
	ErrAlreadyExists = errors.New("already exists")
)
