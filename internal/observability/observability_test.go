package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/mechanic-shop/internal/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "bogus"}, config.AppConfig{Name: "mechanic-shop", Env: "production"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/customers/:id", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, RequestID(c))
		return c.SendStatus(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/customers/5", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(HeaderRequestID))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, zap.WarnLevel, entries[0].Level)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.Requests["/customers/:id|GET|404"])
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(HeaderRequestID), 36)
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/x", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/x", "GET", 200, 30*time.Millisecond)
	m.RecordError("/x", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/x|GET|200"])
	assert.InDelta(t, 20.0, snap.LatencyMS["/x|GET|200"], 0.001)
	assert.Equal(t, int64(1), snap.Errors["/x|GET|NOT_FOUND"])

	var nilMetrics *Metrics
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}
