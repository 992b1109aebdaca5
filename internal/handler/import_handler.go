package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/middleware"
	"github.com/elvongray/shipping-labels/internal/service"
)

// ImportHandler handles import job HTTP requests.
type ImportHandler struct {
	importService   service.ImportServiceInterface
	purchaseService service.PurchaseServiceInterface
	maxUploadBytes  int64
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(
	importService service.ImportServiceInterface,
	purchaseService service.PurchaseServiceInterface,
	maxUploadBytes int64,
) *ImportHandler {
	return &ImportHandler{
		importService:   importService,
		purchaseService: purchaseService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// ImportJobResponse represents an import job in the API response.
type ImportJobResponse struct {
	ID               string         `json:"id"`
	OriginalFilename string         `json:"original_filename"`
	Status           string         `json:"status"`
	ProgressTotal    int            `json:"progress_total"`
	ProgressDone     int            `json:"progress_done"`
	ErrorSummary     *string        `json:"error_summary,omitempty"`
	Meta             map[string]any `json:"meta,omitempty"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`

	ReadyCount             *int `json:"ready_count,omitempty"`
	NeedsInfoCount         *int `json:"needs_info_count,omitempty"`
	InvalidCount           *int `json:"invalid_count,omitempty"`
	AddressUnverifiedCount *int `json:"address_unverified_count,omitempty"`
	ReadyWithServiceCount  *int `json:"ready_with_service_count,omitempty"`
	PurchasableCount       *int `json:"purchasable_count,omitempty"`
}

// toImportJobResponse converts a domain.ImportJob to an ImportJobResponse.
func toImportJobResponse(job *domain.ImportJob) ImportJobResponse {
	return ImportJobResponse{
		ID:               job.ID,
		OriginalFilename: job.OriginalFilename,
		Status:           string(job.Status),
		ProgressTotal:    job.ProgressTotal,
		ProgressDone:     job.ProgressDone,
		ErrorSummary:     job.ErrorSummary,
		Meta:             job.Meta,
		CreatedAt:        job.CreatedAt.Format(TimeFormat),
		UpdatedAt:        job.UpdatedAt.Format(TimeFormat),

		ReadyCount:             job.ReadyCount,
		NeedsInfoCount:         job.NeedsInfoCount,
		InvalidCount:           job.InvalidCount,
		AddressUnverifiedCount: job.AddressUnverifiedCount,
		ReadyWithServiceCount:  job.ReadyWithServiceCount,
		PurchasableCount:       job.PurchasableCount,
	}
}

// CreateImport handles POST /api/v1/imports
func (h *ImportHandler) CreateImport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		Error(c, http.StatusBadRequest, CodeInvalidFile, "file must be a .csv")
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		Error(c, http.StatusBadRequest, CodeInvalidFile, "file exceeds the upload size limit")
		return
	}

	requestID := middleware.GetRequestID(c)
	job, err := h.importService.StartImport(c.Request.Context(), header.Filename, requestID, file)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, toImportJobResponse(job))
}

// GetImport handles GET /api/v1/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "id must be a valid UUID")
		return
	}

	job, err := h.importService.GetJob(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toImportJobResponse(job))
}

// PurchaseRequestBody is the checkout submission payload.
type PurchaseRequestBody struct {
	LabelFormat string `json:"label_format"`
	AgreedTerms bool   `json:"agreed_terms"`
}

// Purchase handles POST /api/v1/imports/:id/purchase
func (h *ImportHandler) Purchase(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "id must be a valid UUID")
		return
	}

	var body PurchaseRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid request body")
		return
	}

	if body.LabelFormat == "" {
		body.LabelFormat = domain.LabelFormatLetter
	}
	if !domain.IsValidLabelFormat(body.LabelFormat) {
		Error(c, http.StatusBadRequest, CodeValidationError, "unsupported label format")
		return
	}

	result, err := h.purchaseService.Purchase(c.Request.Context(), service.PurchaseRequest{
		ImportJobID: id,
		LabelFormat: body.LabelFormat,
		AgreedTerms: body.AgreedTerms,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
