package errors

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAssistantError_Format(t *testing.T) {
	err := New(ErrCodeInvalidArgument, "content is required")
	assert.Equal(t, "[INVALID_ARGUMENT] content is required", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestAssistantError_Wrap(t *testing.T) {
	cause := pkgerrors.New("disk on fire")
	err := Wrap(ErrCodeServiceUnavailable, "turn failed", cause)

	assert.Equal(t, "[SERVICE_UNAVAILABLE] turn failed: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
}
