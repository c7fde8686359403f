package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit_Window(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := setupRateLimitRedis(t)
	ctx := context.Background()

	t.Run("allows up to the limit then blocks", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "send", "user:1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := CheckRateLimit(ctx, rdb, "send", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("keys are scoped per resource and id", func(t *testing.T) {
		allowed, err := CheckRateLimit(ctx, rdb, "send", "user:2", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = CheckRateLimit(ctx, rdb, "open", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		require.True(t, mr.Exists("rl:send:user:1"))
		mr.FastForward(2 * time.Minute)

		allowed, err := CheckRateLimit(ctx, rdb, "send", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("nil client errors", func(t *testing.T) {
		_, err := CheckRateLimit(ctx, nil, "send", "user:1", 3, time.Minute)
		assert.Error(t, err)
	})
}

func TestCheckRateLimit_BypassedOutsideProduction(t *testing.T) {
	_, rdb := setupRateLimitRedis(t)
	ctx := context.Background()

	for _, env := range []string{"test", "development", ""} {
		t.Setenv("APP_ENV", env)
		for i := 0; i < 10; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "send", "user:1", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	}
}

func rateLimitTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(handler)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	t.Run("throttles past the limit with 429", func(t *testing.T) {
		_, rdb := setupRateLimitRedis(t)
		app := rateLimitTestApp(RateLimit(rdb, 2, time.Minute, "ping"))

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			_ = resp.Body.Close()
		}

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail-open lets requests through when the store is down", func(t *testing.T) {
		mr, rdb := setupRateLimitRedis(t)
		mr.Close()

		app := rateLimitTestApp(RateLimit(rdb, 1, time.Minute, "ping"))
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail-closed rejects with 503 when the store is down", func(t *testing.T) {
		mr, rdb := setupRateLimitRedis(t)
		mr.Close()

		app := rateLimitTestApp(RateLimitWithPolicy(rdb, 1, time.Minute, FailClosed, "ping"))
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
