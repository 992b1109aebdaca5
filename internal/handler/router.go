package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elvongray/shipping-labels/internal/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Import   *ImportHandler
	Shipment *ShipmentHandler
	Preset   *PresetHandler
	Shipping *ShippingHandler
	Health   *HealthHandler
}

// NewRouter builds the Gin engine with middleware and all API routes.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	if h.Health != nil {
		router.GET("/health", h.Health.Health)
		router.GET("/ready", h.Health.Ready)
		router.GET("/live", h.Health.Live)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		imports := v1.Group("/imports")
		{
			imports.POST("", h.Import.CreateImport)
			imports.GET("/:id", h.Import.GetImport)
			imports.POST("/:id/purchase", h.Import.Purchase)
			imports.POST("/:id/shipments/bulk", h.Shipment.Bulk)
		}

		shipments := v1.Group("/shipments")
		{
			shipments.GET("", h.Shipment.List)
			shipments.GET("/:id", h.Shipment.Get)
			shipments.PATCH("/:id", h.Shipment.Patch)
			shipments.DELETE("/:id", h.Shipment.Delete)
		}

		presets := v1.Group("/presets")
		{
			presets.GET("/addresses", h.Preset.ListAddresses)
			presets.POST("/addresses", h.Preset.CreateAddress)
			presets.GET("/packages", h.Preset.ListPackages)
			presets.POST("/packages", h.Preset.CreatePackage)
		}

		v1.POST("/shipping/quotes", h.Shipping.Quote)
	}

	return router
}
