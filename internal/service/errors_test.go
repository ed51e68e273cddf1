package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthErrorIsMatchesKind(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", &AuthError{Kind: KindPendingApproval, Message: "custom"})
	require.ErrorIs(t, wrapped, ErrPendingApproval)
	require.NotErrorIs(t, wrapped, ErrInvalidCredentials)
	require.Equal(t, KindPendingApproval, KindOf(wrapped))
	require.Equal(t, Kind(""), KindOf(errors.New("plain")))

	var ae *AuthError
	require.ErrorAs(t, wrapped, &ae)
	require.Equal(t, "custom", ae.Error())
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := unavailable(cause)
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
	require.ErrorIs(t, err, cause)
	require.Equal(t, ErrRepositoryUnavailable.Message, err.Error())
}

func TestAuthErrorMessageFallback(t *testing.T) {
	require.Equal(t, "boom", (&AuthError{Kind: KindInvalidToken, Err: errors.New("boom")}).Error())
	require.Equal(t, "invalid_token", (&AuthError{Kind: KindInvalidToken}).Error())
}

func TestFromKind(t *testing.T) {
	require.Same(t, ErrDuplicateEmail, FromKind(KindDuplicateEmail, ""))
	require.Same(t, ErrDuplicateEmail, FromKind(KindDuplicateEmail, ErrDuplicateEmail.Message))

	err := FromKind(KindUserNotFound, "gone")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.EqualError(t, err, "gone")

	require.Nil(t, FromKind("nope", "x"))
}
