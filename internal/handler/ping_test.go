package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth-dashboard/internal/cache"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type pingFn func(ctx context.Context) error

func (f pingFn) Ping(ctx context.Context) error { return f(ctx) }

func TestPingHandler(t *testing.T) {
	e := echo.New()

	t.Run("repository unhealthy", func(t *testing.T) {
		repo := pingFn(func(context.Context) error { return errors.New("fail") })
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		require.NoError(t, PingHandler(repo, &cache.FakeCache{})(ctx))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), "repository unhealthy")
	})

	t.Run("cache unhealthy", func(t *testing.T) {
		called := false
		repo := pingFn(func(context.Context) error { called = true; return nil })
		cch := &cache.FakeCache{PingFn: func(context.Context) *redis.StatusCmd {
			return redis.NewStatusResult("", errors.New("ping"))
		}}
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		require.NoError(t, PingHandler(repo, cch)(ctx))
		require.True(t, called)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), "cache unhealthy")
	})

	t.Run("ok", func(t *testing.T) {
		cacheCalled := false
		repo := pingFn(func(context.Context) error { return nil })
		cch := &cache.FakeCache{PingFn: func(context.Context) *redis.StatusCmd {
			cacheCalled = true
			return redis.NewStatusResult("PONG", nil)
		}}
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		require.NoError(t, PingHandler(repo, cch)(ctx))
		require.True(t, cacheCalled)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "pong")
	})

	t.Run("no cache", func(t *testing.T) {
		repo := pingFn(func(context.Context) error { return nil })
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, PingHandler(repo, nil)(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
