package listing

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/store"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// StatsCache caches the stats response
type StatsCache interface {
	Get(ctx context.Context) (store.Summary, bool)
	Set(ctx context.Context, summary store.Summary) error
}

// SearchRequest is the /api/search query string
type SearchRequest struct {
	Q     string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// DataResponse wraps listings rendered with unknown values as null
type DataResponse struct {
	Data []map[string]any `json:"data"`
}

// Handler serves the cleaned listings
type Handler struct {
	reader store.Reader
	cache  StatsCache
	logger ectologger.Logger
}

// NewHandler creates a handler. cache may be nil.
func NewHandler(reader store.Reader, cache StatsCache, logger ectologger.Logger) *Handler {
	return &Handler{reader: reader, cache: cache, logger: logger}
}

// Register registers listing routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/data", h.Data)
	g.GET("/stats", h.Stats)
	g.GET("/search", h.Search)
}

// Data returns every listing
func (h *Handler) Data(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "listing_handler.Data")
	defer span.End()

	listings, err := h.reader.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, render(listings))
}

// Stats returns the type and state distributions
func (h *Handler) Stats(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "listing_handler.Stats")
	defer span.End()

	if h.cache != nil {
		if summary, ok := h.cache.Get(ctx); ok {
			return c.JSON(http.StatusOK, summary)
		}
	}

	listings, err := h.reader.List(ctx)
	if err != nil {
		return err
	}

	summary := store.Summarize(listings)
	if h.cache != nil {
		// the cache logs its own write failures
		_ = h.cache.Set(ctx, summary)
	}

	return c.JSON(http.StatusOK, summary)
}

// Search filters listings by name, type or address
func (h *Handler) Search(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "listing_handler.Search")
	defer span.End()

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid search query")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	listings, err := h.reader.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, render(store.Search(listings, req.Q, req.Limit)))
}

func render(listings []*models.Listing) DataResponse {
	data := ectolinq.Map(listings, (*models.Listing).Document)
	if data == nil {
		data = []map[string]any{}
	}
	return DataResponse{Data: data}
}
