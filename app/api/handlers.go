package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/crawler-api/app/feed"
	"github.com/lysyi3m/crawler-api/app/items"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *Handler) ListItems(c *gin.Context) {
	params, errs := parseListParams(c)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	page, err := h.items.List(c.Request.Context(), params)
	if err != nil {
		respondInternal(c, "list_items", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	item, err := h.items.Get(c.Request.Context(), id)
	if errors.Is(err, items.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		respondInternal(c, "get_item", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req models.CreateScrapedItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Malformed request body: "+err.Error())
		return
	}

	item, err := h.items.Create(c.Request.Context(), req)
	if errs, ok := items.IsValidationError(err); ok {
		respondValidation(c, errs)
		return
	}
	if err != nil {
		respondInternal(c, "create_item", err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/scraped-items/%d", item.ID))
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	var req models.UpdateScrapedItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Malformed request body: "+err.Error())
		return
	}

	item, err := h.items.Update(c.Request.Context(), id, req)
	if errors.Is(err, items.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if errs, ok := items.IsValidationError(err); ok {
		respondValidation(c, errs)
		return
	}
	if err != nil {
		respondInternal(c, "update_item", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	err := h.items.Delete(c.Request.Context(), id)
	if errors.Is(err, items.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		respondInternal(c, "delete_item", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ImportFeed(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBodyBytes+1))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) > maxImportBodyBytes {
		respondMessage(c, http.StatusRequestEntityTooLarge, "Feed document is too large")
		return
	}

	result, err := h.importer.Import(c.Request.Context(), data, c.Query("source"))
	if errors.Is(err, feed.ErrInvalidFeed) {
		respondMessage(c, http.StatusBadRequest, "Request body is not a valid RSS, Atom or JSON feed")
		return
	}
	if err != nil {
		respondInternal(c, "import_feed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseID treats anything but an integer as an unknown route
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

func parseListParams(c *gin.Context) (items.ListParams, validation.Errors) {
	errs := validation.Errors{}
	params := items.ListParams{
		Search: c.Query("search"),
		Source: c.Query("source"),
	}

	params.Page = parseIntQuery(c, "page", errs)
	params.PageSize = parseIntQuery(c, "pageSize", errs)
	params.CollectedFrom = parseTimeQuery(c, "collectedFrom", errs)
	params.CollectedTo = parseTimeQuery(c, "collectedTo", errs)

	if len(errs) > 0 {
		return params, errs
	}
	return params, nil
}

func parseIntQuery(c *gin.Context, name string, errs validation.Errors) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(propertyName(name), fmt.Sprintf("The value '%s' is not a valid integer.", raw))
		return 0
	}
	return value
}

func parseTimeQuery(c *gin.Context, name string, errs validation.Errors) *time.Time {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}

	// Values without an offset are read as UTC
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if value, err := time.Parse(layout, raw); err == nil {
			value = value.UTC()
			return &value
		}
	}

	errs.Add(propertyName(name), fmt.Sprintf("The value '%s' is not a valid date.", raw))
	return nil
}

// propertyName keys query errors the same way as body validation errors
func propertyName(param string) string {
	if param == "" {
		return param
	}
	return strings.ToUpper(param[:1]) + param[1:]
}
