// Package merrors provides sentinel and custom error types for the recommendation engine.
package merrors

import "fmt"

// ErrInvalidRecord is the sentinel for profiles with nothing embeddable.
var ErrInvalidRecord = &InvalidRecordError{}

// InvalidRecordError is returned when a profile record lacks a role or has no
// non-empty semantic field, so there is no text to embed.
type InvalidRecordError struct {
	ProfileID string
	Message   string
}

// NewInvalidRecordError creates an InvalidRecordError with a custom message.
func NewInvalidRecordError(profileID, message string) *InvalidRecordError {
	return &InvalidRecordError{
		ProfileID: profileID,
		Message:   message,
	}
}

// Error implements the error interface.
func (e *InvalidRecordError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.ProfileID != "" {
		return "profile " + e.ProfileID + " has no embeddable content"
	}

	return "profile has no embeddable content"
}

// Is implements the error interface for error comparison.
func (e *InvalidRecordError) Is(target error) bool {
	_, ok := target.(*InvalidRecordError)

	return ok
}

// ErrEmbeddingUnavailable is the sentinel for transient embedding provider failures.
var ErrEmbeddingUnavailable = &EmbeddingUnavailableError{}

// EmbeddingUnavailableError is returned when the embedding provider cannot be
// reached or responds with a non-2xx status. The caller decides whether to
// retry, degrade, or propagate; the client itself never retries.
type EmbeddingUnavailableError struct {
	Message string
	Cause   error
}

// NewEmbeddingUnavailableError creates an EmbeddingUnavailableError wrapping cause.
func NewEmbeddingUnavailableError(message string, cause error) *EmbeddingUnavailableError {
	return &EmbeddingUnavailableError{Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *EmbeddingUnavailableError) Error() string {
	if e.Message != "" {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}

		return e.Message
	}

	return "embedding provider unavailable"
}

// Unwrap returns the underlying transport error.
func (e *EmbeddingUnavailableError) Unwrap() error {
	return e.Cause
}

// Is implements the error interface for error comparison.
func (e *EmbeddingUnavailableError) Is(target error) bool {
	_, ok := target.(*EmbeddingUnavailableError)

	return ok
}

// ErrEmbeddingProtocol is the sentinel for malformed embedding provider responses.
var ErrEmbeddingProtocol = &EmbeddingProtocolError{}

// EmbeddingProtocolError is returned when the provider response violates the
// batch contract: wrong vector count or ragged dimensionality. The client never
// pads or truncates, since silent corruption would poison every downstream score.
type EmbeddingProtocolError struct {
	Message string
}

// NewEmbeddingProtocolError creates an EmbeddingProtocolError with a custom message.
func NewEmbeddingProtocolError(message string) *EmbeddingProtocolError {
	return &EmbeddingProtocolError{Message: message}
}

// Error implements the error interface.
func (e *EmbeddingProtocolError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "malformed embedding provider response"
}

// Is implements the error interface for error comparison.
func (e *EmbeddingProtocolError) Is(target error) bool {
	_, ok := target.(*EmbeddingProtocolError)

	return ok
}

// ErrDimensionMismatch is the sentinel for comparing vectors of different lengths.
var ErrDimensionMismatch = &DimensionMismatchError{}

// DimensionMismatchError is returned when two vectors of different
// dimensionality would be compared. Vectors are only comparable when produced
// by the same provider and dimensionality.
type DimensionMismatchError struct {
	Want int
	Got  int
}

// NewDimensionMismatchError creates a DimensionMismatchError for the given lengths.
func NewDimensionMismatchError(want, got int) *DimensionMismatchError {
	return &DimensionMismatchError{Want: want, Got: got}
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	if e.Want != 0 || e.Got != 0 {
		return fmt.Sprintf("embedding dimension mismatch: got %d, want %d", e.Got, e.Want)
	}

	return "embedding dimension mismatch"
}

// Is implements the error interface for error comparison.
func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)

	return ok
}

// ErrInvalidArgument is the sentinel for invalid caller-supplied arguments.
var ErrInvalidArgument = &InvalidArgumentError{}

// InvalidArgumentError is returned for invalid caller input, e.g. a
// non-positive topK.
type InvalidArgumentError struct {
	Argument string
	Message  string
}

// NewInvalidArgumentError creates an InvalidArgumentError with a custom message.
func NewInvalidArgumentError(argument, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Argument: argument, Message: message}
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Argument != "" {
		return "invalid argument: " + e.Argument
	}

	return "invalid argument"
}

// Is implements the error interface for error comparison.
func (e *InvalidArgumentError) Is(target error) bool {
	_, ok := target.(*InvalidArgumentError)

	return ok
}

// ErrNotFound is the sentinel for profile-store misses.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}
