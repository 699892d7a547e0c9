package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/commercekit/shopchat/internal/store"
	"github.com/commercekit/shopchat/models"
)

// KnowledgeHandler exposes CRUD and search over the knowledge categories.
// The chat pipeline reads the same store through its knowledge sources.
type KnowledgeHandler struct {
	Store      *store.Store
	Categories []string
}

func (h *KnowledgeHandler) Register(g *echo.Group) {
	g.POST("/:category", h.create)
	g.PUT("/:category/:id", h.update)
	g.DELETE("/:category/:id", h.delete)
	g.GET("/:category/search", h.search)
	g.GET("/:category/:id", h.get)
	g.GET("/:category", h.list)
}

func (h *KnowledgeHandler) category(c echo.Context) (string, error) {
	category := c.Param("category")
	for _, known := range h.Categories {
		if category == known {
			return category, nil
		}
	}
	return "", echo.NewHTTPError(http.StatusNotFound, "unknown knowledge category: "+category)
}

func (h *KnowledgeHandler) create(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	var entry models.KnowledgeEntry
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if entry.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	entry.Category = category
	id, err := h.Store.UpsertEntry(c.Request().Context(), entry)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *KnowledgeHandler) update(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	var entry models.KnowledgeEntry
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry.ID = c.Param("id")
	entry.Category = category
	if _, err := h.Store.UpsertEntry(c.Request().Context(), entry); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"id": entry.ID})
}

func (h *KnowledgeHandler) delete(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteEntry(c.Request().Context(), category, c.Param("id")); err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *KnowledgeHandler) get(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	entry, err := h.Store.GetEntry(c.Request().Context(), category, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *KnowledgeHandler) list(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := h.Store.ListEntries(c.Request().Context(), category, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// search runs ranked full-text search within one category
func (h *KnowledgeHandler) search(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}
	limit := 5
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 50")
		}
		limit = n
	}
	results, err := h.Store.SearchEntries(c.Request().Context(), category, query, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return c.JSON(http.StatusOK, results)
}
