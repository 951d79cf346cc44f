package domain

import (
	"errors"
	"fmt"
)

// CardReaderError is the typed error surfaced by every session and
// orchestrator operation. Gateway failures keep the title / description /
// failure-reason triple exactly as the gateway supplied it.
type CardReaderError struct {
	Code          string
	Title         string
	Description   string
	FailureReason string
	Err           error
}

func (e *CardReaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Description)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CardReaderError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeReaderUnsupported   = "READER_UNSUPPORTED"
	ErrCodeSessionBusy         = "SESSION_BUSY"
	ErrCodeMissingPaymentToken = "MISSING_PAYMENT_TOKEN"
	ErrCodeMissingReference    = "MISSING_REFERENCE"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeGateway             = "GATEWAY_ERROR"
)

func NewReaderUnsupportedError() *CardReaderError {
	return &CardReaderError{
		Code:        ErrCodeReaderUnsupported,
		Title:       "Reader not supported",
		Description: "this device does not support tap to pay",
	}
}

func NewSessionBusyError(operation string) *CardReaderError {
	return &CardReaderError{
		Code:        ErrCodeSessionBusy,
		Title:       "Session busy",
		Description: fmt.Sprintf("another operation is in flight, %s rejected", operation),
	}
}

func NewMissingPaymentTokenError(operation string) *CardReaderError {
	return &CardReaderError{
		Code:        ErrCodeMissingPaymentToken,
		Title:       operation,
		Description: "expected a pre-existing payment token",
	}
}

func NewMissingReferenceError(operation string) *CardReaderError {
	return &CardReaderError{
		Code:        ErrCodeMissingReference,
		Title:       operation,
		Description: "expected a reference transaction id",
	}
}

func NewInvalidRequestError(operation, reason string) *CardReaderError {
	return &CardReaderError{
		Code:        ErrCodeInvalidRequest,
		Title:       operation,
		Description: reason,
	}
}

// NewGatewayError wraps a transport or gateway-reported failure without
// interpreting it.
func NewGatewayError(title, description, failureReason string, err error) *CardReaderError {
	return &CardReaderError{
		Code:          ErrCodeGateway,
		Title:         title,
		Description:   description,
		FailureReason: failureReason,
		Err:           err,
	}
}

// IsErrorCode reports whether err is a CardReaderError carrying the given code.
func IsErrorCode(err error, code string) bool {
	var cre *CardReaderError
	if errors.As(err, &cre) {
		return cre.Code == code
	}
	return false
}
