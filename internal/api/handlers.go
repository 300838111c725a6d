package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"techjobs/internal/engine"
	"techjobs/internal/models"
)

type Handler struct {
	store *engine.Store
}

func NewHandler(store *engine.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.GetHealth)
	api.GET("/columns", h.GetColumns)
	api.GET("/columns/:column/values", h.GetColumnValues)
	api.GET("/columns/:column/counts", h.GetColumnCounts)
	api.GET("/jobs", h.GetJobs)
	api.GET("/jobs/search", h.SearchJobs)
	api.GET("/jobs/export.arrow", h.ExportJobs)
}

// --- HELPERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate(c echo.Context, rows []models.Row) models.JobsPage {
	total := len(rows)
	limit, offset := getPaginationParams(c, total)
	page := models.JobsPage{Data: []models.Row{}, Total: total, Limit: limit, Offset: offset}
	if offset >= total {
		return page
	}
	if limit > total-offset {
		limit = total - offset
	}
	page.Data = rows[offset : offset+limit]
	return page
}

func boolParam(c echo.Context, name string) (bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, v))
	}
	return b, nil
}

// fail maps store errors to responses. Load failures are 503 so clients
// retry; unknown columns are 404.
func (h *Handler) fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return c.JSON(he.Code, models.ErrorResponse{Error: fmt.Sprint(he.Message)})
	case errors.Is(err, engine.ErrMissingColumn), errors.Is(err, engine.ErrMissingField):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrSourceUnavailable), errors.Is(err, engine.ErrParse):
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "job data unavailable"})
	default:
		slog.ErrorContext(c.Request().Context(), "request failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error"})
	}
}

// notModified sets the ETag of the loaded table and reports whether the
// client copy is current. Handlers call it after their query succeeds.
func (h *Handler) notModified(c echo.Context) (bool, error) {
	fp, err := h.store.Fingerprint(c.Request().Context())
	if err != nil {
		return false, err
	}
	etag := fmt.Sprintf(`"%016x"`, fp)
	c.Response().Header().Set("ETag", etag)
	return c.Request().Header.Get("If-None-Match") == etag, nil
}

// search runs SearchColumn, or SearchAll when column is empty.
func (h *Handler) search(c echo.Context, column, term string) ([]models.Row, error) {
	ctx := c.Request().Context()
	if column == "" {
		return h.store.SearchAll(ctx, term)
	}
	return h.store.SearchColumn(ctx, column, term)
}

// --- HANDLERS ---
func (h *Handler) GetHealth(c echo.Context) error {
	health := models.Health{Loaded: h.store.Loaded(), Loads: h.store.Loads()}
	if health.Loaded {
		n, err := h.store.Len(c.Request().Context())
		if err != nil {
			return h.fail(c, err)
		}
		health.Rows = n
	}
	return c.JSON(http.StatusOK, health)
}

func (h *Handler) GetColumns(c echo.Context) error {
	sorted, err := boolParam(c, "sort")
	if err != nil {
		return h.fail(c, err)
	}
	cols, err := h.store.Columns(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if fresh, err := h.notModified(c); err != nil {
		return h.fail(c, err)
	} else if fresh {
		return c.NoContent(http.StatusNotModified)
	}
	if sorted {
		cols = engine.SortStrings(cols)
	}
	return c.JSON(http.StatusOK, cols)
}

func (h *Handler) GetColumnValues(c echo.Context) error {
	sorted, err := boolParam(c, "sort")
	if err != nil {
		return h.fail(c, err)
	}
	values, err := h.store.DistinctValues(c.Request().Context(), c.Param("column"))
	if err != nil {
		return h.fail(c, err)
	}
	if fresh, err := h.notModified(c); err != nil {
		return h.fail(c, err)
	} else if fresh {
		return c.NoContent(http.StatusNotModified)
	}
	if sorted {
		values = engine.SortStrings(values)
	}
	return c.JSON(http.StatusOK, values)
}

func (h *Handler) GetColumnCounts(c echo.Context) error {
	counts, err := h.store.ValueCounts(c.Request().Context(), c.Param("column"))
	if err != nil {
		return h.fail(c, err)
	}
	limit, _ := getPaginationParams(c, len(counts))
	if limit < len(counts) {
		return c.JSON(http.StatusOK, counts[:limit])
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) GetJobs(c echo.Context) error {
	rows, err := h.store.All(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if field := c.QueryParam("sort"); field != "" {
		if rows, err = engine.SortRowsByField(rows, field); err != nil {
			return h.fail(c, err)
		}
	}
	if fresh, err := h.notModified(c); err != nil {
		return h.fail(c, err)
	} else if fresh {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, paginate(c, rows))
}

func (h *Handler) SearchJobs(c echo.Context) error {
	rows, err := h.search(c, c.QueryParam("column"), c.QueryParam("term"))
	if err != nil {
		return h.fail(c, err)
	}
	if field := c.QueryParam("sort"); field != "" {
		if rows, err = engine.SortRowsByField(rows, field); err != nil {
			return h.fail(c, err)
		}
	}
	return c.JSON(http.StatusOK, paginate(c, rows))
}

// ExportJobs streams the matching jobs as Arrow IPC.
func (h *Handler) ExportJobs(c echo.Context) error {
	ctx := c.Request().Context()
	rows, err := h.search(c, c.QueryParam("column"), c.QueryParam("term"))
	if err != nil {
		return h.fail(c, err)
	}
	cols, err := h.store.Columns(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.apache.arrow.stream")
	c.Response().WriteHeader(http.StatusOK)
	return engine.WriteArrow(c.Response(), cols, rows)
}
