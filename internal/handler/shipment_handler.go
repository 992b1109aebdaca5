package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/repository"
	"github.com/elvongray/shipping-labels/internal/service"
)

// ShipmentHandler handles shipment HTTP requests.
type ShipmentHandler struct {
	shipmentService service.ShipmentServiceInterface
	defaultPageSize int
	maxPageSize     int
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(shipmentService service.ShipmentServiceInterface, defaultPageSize, maxPageSize int) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// ShipmentPage is the paginated shipment list response.
type ShipmentPage struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []domain.Shipment `json:"results"`
}

// List handles GET /api/v1/shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := intQuery(c, "page_size", h.defaultPageSize)
	if pageSize < 1 {
		pageSize = h.defaultPageSize
	}
	if pageSize > h.maxPageSize {
		pageSize = h.maxPageSize
	}

	filter := repository.ShipmentFilter{
		ImportJobID:      c.Query("import"),
		ValidationStatus: domain.ValidationStatus(c.Query("status")),
		Search:           c.Query("search"),
		HidePurchased:    c.Query("hide_purchased") == "true",
		Page:             page,
		PageSize:         pageSize,
	}

	results, count, err := h.shipmentService.List(c.Request.Context(), filter)
	if err != nil {
		ServiceError(c, err)
		return
	}
	if results == nil {
		results = []domain.Shipment{}
	}

	response := ShipmentPage{Count: count, Results: results}
	if page*pageSize < count {
		response.Next = pageURL(c, page+1)
	}
	if page > 1 {
		response.Previous = pageURL(c, page-1)
	}

	c.JSON(http.StatusOK, response)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = c.Request.Host
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// Get handles GET /api/v1/shipments/:id
func (h *ShipmentHandler) Get(c *gin.Context) {
	shipment, err := h.shipmentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

// Patch handles PATCH /api/v1/shipments/:id
func (h *ShipmentHandler) Patch(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid request body")
		return
	}
	if len(fields) == 0 {
		Error(c, http.StatusBadRequest, CodeValidationError, "request body must not be empty")
		return
	}

	shipment, err := h.shipmentService.Patch(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, shipment)
}

// Delete handles DELETE /api/v1/shipments/:id
func (h *ShipmentHandler) Delete(c *gin.Context) {
	if err := h.shipmentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Bulk handles POST /api/v1/imports/:id/shipments/bulk
func (h *ShipmentHandler) Bulk(c *gin.Context) {
	importJobID := c.Param("id")
	if _, err := uuid.Parse(importJobID); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "id must be a valid UUID")
		return
	}

	var req domain.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid request body")
		return
	}

	result, err := h.shipmentService.Bulk(c.Request.Context(), importJobID, req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
