package failure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnavailable_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")

	err := Unavailable(cause, "list orders")

	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "list orders: connection refused")
	require.True(t, IsRetryable(err))
}

func TestUnavailable_NilStaysNil(t *testing.T) {
	require.NoError(t, Unavailable(nil, "noop"))
}

func TestUnavailable_DoesNotDoubleWrap(t *testing.T) {
	first := Unavailable(errors.New("timeout"), "get order")

	second := Unavailable(first, "transition order")

	require.Equal(t, first, second)
}

func TestIsRetryable_DomainErrors(t *testing.T) {
	require.False(t, IsRetryable(errors.New("order not found")))
	require.False(t, IsRetryable(nil))
}
