package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Session specific errors
	ErrSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrItemOutOfRange    ErrorCode = "ITEM_OUT_OF_RANGE"
	ErrEmptyAnswer       ErrorCode = "EMPTY_ANSWER"
	ErrEvaluationPending ErrorCode = "EVALUATION_PENDING"

	// Completion backend errors
	ErrBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrMalformedPayload   ErrorCode = "MALFORMED_PAYLOAD"
	ErrUnparsableResponse ErrorCode = "UNPARSABLE_RESPONSE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewInternalError(message string, cause error) *DomainError {
	return NewError(ErrInternal, message, cause)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(ErrSessionNotFound, fmt.Sprintf("Session not found with ID: %s", sessionID), nil)
}

func NewItemOutOfRangeError(index, itemCount int) *DomainError {
	return NewError(ErrItemOutOfRange, fmt.Sprintf("Item index %d out of range (session has %d items)", index, itemCount), nil)
}

func NewEmptyAnswerError(index int) *DomainError {
	return NewError(ErrEmptyAnswer, fmt.Sprintf("Answer for item %d is empty", index), nil)
}

func NewEvaluationPendingError(index int) *DomainError {
	return NewError(ErrEvaluationPending, fmt.Sprintf("An evaluation for item %d is already in flight", index), nil)
}

func NewBackendUnavailableError(cause error) *DomainError {
	return NewError(ErrBackendUnavailable, "Completion backend is unavailable", cause)
}

// NewMalformedPayloadError carries the raw backend text for diagnostics.
func NewMalformedPayloadError(rawText string, cause error) *DomainError {
	err := NewError(ErrMalformedPayload, "No parseable JSON object found in backend response", cause)
	err.Context = map[string]interface{}{"raw_response": rawText}
	return err
}

// NewUnparsableResponseError is the evaluation-path variant of MalformedPayload:
// it is surfaced to the caller instead of being defaulted away.
func NewUnparsableResponseError(rawText string, cause error) *DomainError {
	err := NewError(ErrUnparsableResponse, "Backend evaluation response is not valid JSON", cause)
	err.Context = map[string]interface{}{"raw_response": rawText}
	return err
}
