package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(StoreUnavailable, "Cannot reach %s", "redis")
	require.Equal(t, "Cannot reach redis", err.Error())
	require.Equal(t, StoreUnavailable, err.Code)
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("claim: %w", New(ConflictExhausted, "busy"))

	require.True(t, errors.Is(wrapped, Error{Code: ConflictExhausted}))
	require.False(t, errors.Is(wrapped, Error{Code: StoreUnavailable}))

	var errx Error
	require.True(t, errors.As(wrapped, &errx))
	require.Equal(t, "busy", errx.Message)
}
