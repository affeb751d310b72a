package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/mokarr/appointpro/pkg/errors"
)

func TestWrapfKeepsType(t *testing.T) {
	base := apperrors.NewNotFoundError("facility fac-1 not found")

	wrapped := apperrors.Wrapf(base, "day %s", "2024-01-02")

	assert.Equal(t, apperrors.ErrorTypeNotFound, wrapped.Type)
	assert.Contains(t, wrapped.Error(), "day 2024-01-02")
	assert.True(t, errors.Is(wrapped, base))
}

func TestWrapfPlainErrorBecomesInternal(t *testing.T) {
	wrapped := apperrors.Wrapf(errors.New("connection reset"), "load bookings")

	assert.Equal(t, apperrors.ErrorTypeInternal, wrapped.Type)
	assert.Nil(t, apperrors.Wrapf(nil, "ignored"))
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorType
	}{
		{"invalid argument", apperrors.NewInvalidArgumentError("bad date"), apperrors.ErrorTypeInvalidArgument},
		{"conflict behind fmt wrap", fmt.Errorf("create: %w", apperrors.NewConflictError("taken")), apperrors.ErrorTypeConflict},
		{"plain", errors.New("boom"), apperrors.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.TypeOf(tt.err))
		})
	}

	assert.True(t, apperrors.IsConflict(apperrors.NewConflictError("x")))
	assert.False(t, apperrors.IsNotFound(nil))
}
