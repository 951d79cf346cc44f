package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapterm/tapterm/internal/domain"
)

func TestIsErrorCode(t *testing.T) {
	err := domain.NewSessionBusyError("charge")
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeSessionBusy))
	assert.False(t, domain.IsErrorCode(err, domain.ErrCodeGateway))
	assert.False(t, domain.IsErrorCode(errors.New("plain"), domain.ErrCodeSessionBusy))
	assert.False(t, domain.IsErrorCode(nil, domain.ErrCodeSessionBusy))
}

func TestIsErrorCode_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("running demo: %w", domain.NewMissingReferenceError("Capture"))
	assert.True(t, domain.IsErrorCode(wrapped, domain.ErrCodeMissingReference))
}

func TestGatewayErrorUnwraps(t *testing.T) {
	err := domain.NewGatewayError("Charge", "request cancelled", "context canceled", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "Charge")
	assert.Contains(t, err.Error(), "request cancelled")
}
