package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("No checks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("All healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": ok}).
			Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","redis":"ok"}}`, rec.Body.String())
	})

	t.Run("Degraded", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": down}).
			Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"database":"ok","redis":"connection refused"}}`, rec.Body.String())
	})
}
