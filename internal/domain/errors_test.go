package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), EINTERNAL},
		{"config", Config("op", "CONTACT_PUBLIC_KEY"), ECONFIG},
		{"wrapped delivery", fmt.Errorf("outer: %w", Delivery(errors.New("bad template"), "op")), EDELIVERY},
		{"conflict", Conflict("op", MsgInFlight), ECONFLICT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage_HidesDetail(t *testing.T) {
	err := Delivery(errors.New("bad template"), "contact.submit")

	assert.Equal(t, MsgDeliveryFailed, ErrorMessage(err))
	assert.NotContains(t, ErrorMessage(err), "bad template")
	assert.Equal(t, "bad template", ErrorDetail(err))
}

func TestErrorMessage_Internal(t *testing.T) {
	err := Internal(errors.New("nil pointer"), "handler", "render failed")
	assert.Equal(t, msgInternal, ErrorMessage(err))
	assert.Equal(t, msgInternal, ErrorMessage(errors.New("raw")))
}

func TestConfigError(t *testing.T) {
	err := Config("contact.load_config", "missing CONTACT_PUBLIC_KEY")

	assert.True(t, IsConfig(err))
	assert.False(t, IsDelivery(err))
	assert.Equal(t, MsgUnavailable, ErrorMessage(err))
	assert.Equal(t, "contact.load_config", ErrorOp(err))
	assert.Contains(t, err.Error(), "CONTACT_PUBLIC_KEY")
}

func TestError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Delivery(sentinel, "op")
	assert.ErrorIs(t, err, sentinel)
}
