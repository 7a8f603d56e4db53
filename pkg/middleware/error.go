package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	appctx "github.com/Ramsey-B/lily/pkg/context"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// describe maps err to a status, message and metadata. Errors that are
// neither httperrors nor echo errors are reported as a bare 500.
func describe(err error) (int, string, map[string]any) {
	if httperror.IsHTTPError(err) {
		he := httperror.ToHTTPError(err)
		meta := he.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		return httperror.GetStatusCode(err), he.Error(), meta
	}

	var ee *echo.HTTPError
	if errors.As(err, &ee) {
		msg, ok := ee.Message.(string)
		if !ok {
			msg = http.StatusText(ee.Code)
		}
		return ee.Code, msg, map[string]any{}
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), map[string]any{}
}

// Error is the echo error handler. 5xx responses are logged as errors, the rest as warnings.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ctx := c.Request().Context()
		code, msg, meta := describe(err)

		log := logger.WithContext(ctx).WithFields(appctx.Fields(ctx)).WithError(err).WithField("status", code)
		if code >= http.StatusInternalServerError {
			log.Error("Request failed")
		} else {
			log.Warn("Request rejected")
		}

		if err := c.JSON(code, ErrorResponse{
			Message:   msg,
			RequestID: appctx.RequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
			Meta:      meta,
		}); err != nil {
			log.WithError(err).Error("Failed to write error response")
		}
	}
}
