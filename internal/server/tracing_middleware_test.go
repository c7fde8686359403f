package server

import (
	"net/http"
	"testing"

	"foodloop/internal/config"
	"foodloop/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Runs a request through the full middleware pipeline and checks that a
// server span is recorded and the trace ID is surfaced to the client.
func TestSetupMiddleware_TracesRequests(t *testing.T) {
	db := setupHandlerTestDB(t)
	cfg := &config.Config{
		JWTSecret:       testJWTSecret,
		Env:             "test",
		DefaultRadiusKm: 5.0,
		MaxRadiusKm:     100.0,
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("pipeline-test")
	t.Cleanup(func() { observability.Tracer = prev })

	app := fiber.New()
	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/food-posts", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	_ = resp.Body.Close()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	assert.Equal(t, "GET /api/v1/food-posts", spans[0].Name())
}
