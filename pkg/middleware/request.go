// Package middleware holds the echo middleware shared by every API route
package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	appctx "github.com/Ramsey-B/lily/pkg/context"
	"github.com/Ramsey-B/lily/pkg/metrics"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const unmatchedRoute = "unmatched"

// Context tags the request context with an appctx.Request. An incoming
// X-Request-Id is kept, otherwise one is generated; either way it is echoed back.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			ctx := appctx.WithRequest(req.Context(), appctx.Request{
				ID:       id,
				Method:   req.Method,
				Route:    route(c),
				RemoteIP: c.RealIP(),
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// Logger hands errors to the error handler, then logs the finished request
// and records its metrics
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			began := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			took := time.Since(began)

			req, res := c.Request(), c.Response()
			metrics.RecordHTTPRequest(req.Method, route(c), res.Status, took.Seconds())

			ctx := req.Context()
			logger.WithContext(ctx).
				WithFields(appctx.Fields(ctx)).
				WithFields(map[string]any{
					"uri":        req.RequestURI,
					"status":     res.Status,
					"bytes":      res.Size,
					"latency":    took,
					"user_agent": req.UserAgent(),
				}).
				Info("Request")
			return nil
		}
	}
}

func route(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return unmatchedRoute
}
