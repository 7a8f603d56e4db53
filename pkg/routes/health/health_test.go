package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func ok(context.Context) error { return nil }

func TestChecker_Check(t *testing.T) {
	t.Run("should be healthy with no dependencies", func(t *testing.T) {
		report := NewChecker("v1").Check(context.Background())
		assert.Equal(t, statusHealthy, report.Status)
		assert.Equal(t, "v1", report.Version)
		assert.Empty(t, report.Checks)
	})

	t.Run("should report every dependency", func(t *testing.T) {
		c := NewChecker("v1")
		c.AddCheck("database", pingFunc(ok))
		c.AddCheck("redis", pingFunc(func(context.Context) error { return errors.New("connection refused") }))

		report := c.Check(context.Background())
		assert.Equal(t, statusUnhealthy, report.Status)
		require.Len(t, report.Checks, 2)
		assert.Equal(t, statusHealthy, report.Checks["database"].Status)
		assert.Equal(t, "connection refused", report.Checks["redis"].Error)
	})

	t.Run("should bound each probe with a deadline", func(t *testing.T) {
		c := NewChecker("v1")
		c.AddCheck("slow", pingFunc(func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil
		}))
		assert.Equal(t, statusHealthy, c.Check(context.Background()).Status)
	})
}

func TestChecker_Routes(t *testing.T) {
	e := echo.New()
	c := NewChecker("v1")
	c.RegisterRoutes(e)

	serve := func(path string) int {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve("/api/v1/health"))
	assert.Equal(t, http.StatusOK, serve("/api/v1/health/live"))
	assert.Equal(t, http.StatusServiceUnavailable, serve("/api/v1/health/ready"))

	c.SetReady(true)
	assert.Equal(t, http.StatusOK, serve("/api/v1/health/ready"))

	c.AddCheck("database", pingFunc(func(context.Context) error { return errors.New("down") }))
	assert.Equal(t, http.StatusServiceUnavailable, serve("/api/v1/health"))
}
