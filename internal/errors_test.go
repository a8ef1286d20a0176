package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firekit/firekit/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("handler failed: %w", internal.ErrBadRequest("bad request"))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(errors.New("something went wrong")))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("token expired")
		httpErr := internal.ErrUnauthorized("sign in again",
			internal.WithErrorCode("auth/expired"),
			internal.WithRequestID("req-1"),
			internal.WithError(cause),
		)
		err := fmt.Errorf("middleware: %w", httpErr)

		got := internal.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusUnauthorized, got.StatusCode())
		require.Equal(t, "sign in again", got.Message)
		require.Equal(t, "auth/expired", got.ErrorCode)
		require.Equal(t, "req-1", got.RequestID)
		require.ErrorIs(t, err, cause)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(errors.New("plain error")))
	})
}

func TestNewHTTPError_DefaultMessage(t *testing.T) {
	t.Parallel()

	err := internal.ErrServiceUnavailable("")
	require.Equal(t, "Service Unavailable", err.Error())
	require.Equal(t, "Service Unavailable", err.StatusText())
}
