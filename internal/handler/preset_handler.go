package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/service"
)

// PresetHandler handles saved address and package preset requests.
type PresetHandler struct {
	presetService service.PresetServiceInterface
}

// NewPresetHandler creates a new PresetHandler.
func NewPresetHandler(presetService service.PresetServiceInterface) *PresetHandler {
	return &PresetHandler{presetService: presetService}
}

// ListAddresses handles GET /api/v1/presets/addresses
func (h *PresetHandler) ListAddresses(c *gin.Context) {
	presets, err := h.presetService.ListAddressPresets(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	if presets == nil {
		presets = []domain.AddressPreset{}
	}
	c.JSON(http.StatusOK, gin.H{"results": presets})
}

// CreateAddress handles POST /api/v1/presets/addresses
func (h *PresetHandler) CreateAddress(c *gin.Context) {
	var preset domain.AddressPreset
	if err := c.ShouldBindJSON(&preset); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid request body")
		return
	}

	if err := h.presetService.CreateAddressPreset(c.Request.Context(), &preset); err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, preset)
}

// ListPackages handles GET /api/v1/presets/packages
func (h *PresetHandler) ListPackages(c *gin.Context) {
	presets, err := h.presetService.ListPackagePresets(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	if presets == nil {
		presets = []domain.PackagePreset{}
	}
	c.JSON(http.StatusOK, gin.H{"results": presets})
}

// CreatePackage handles POST /api/v1/presets/packages
func (h *PresetHandler) CreatePackage(c *gin.Context) {
	var preset domain.PackagePreset
	if err := c.ShouldBindJSON(&preset); err != nil {
		Error(c, http.StatusBadRequest, CodeValidationError, "invalid request body")
		return
	}

	if err := h.presetService.CreatePackagePreset(c.Request.Context(), &preset); err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, preset)
}
