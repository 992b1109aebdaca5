package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elvongray/shipping-labels/internal/service"
)

// ShippingHandler handles shipping quote requests.
type ShippingHandler struct {
	quoteService service.QuoteServiceInterface
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(quoteService service.QuoteServiceInterface) *ShippingHandler {
	return &ShippingHandler{quoteService: quoteService}
}

// QuoteRequestBody selects which shipments to quote: either a whole
// import or an explicit id list.
type QuoteRequestBody struct {
	ImportID    string   `json:"import_id"`
	ShipmentIDs []string `json:"shipment_ids"`
}

// Quote handles POST /api/v1/shipping/quotes
func (h *ShippingHandler) Quote(c *gin.Context) {
	var body QuoteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid request body")
		return
	}

	if body.ImportID == "" && len(body.ShipmentIDs) == 0 {
		Error(c, http.StatusBadRequest, CodeValidationError, "import_id or shipment_ids is required")
		return
	}

	if body.ImportID != "" {
		set, err := h.quoteService.QuoteForImport(c.Request.Context(), body.ImportID)
		if err != nil {
			ServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, set)
		return
	}

	set, err := h.quoteService.QuoteForShipments(c.Request.Context(), body.ShipmentIDs)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}
