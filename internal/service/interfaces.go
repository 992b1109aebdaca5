package service

import (
	"context"
	"io"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/repository"
)

// ImportServiceInterface defines the import pipeline operations used by handlers.
type ImportServiceInterface interface {
	StartImport(ctx context.Context, filename, requestID string, reader io.Reader) (*domain.ImportJob, error)
	GetJob(ctx context.Context, id string) (*domain.ImportJob, error)
}

// ShipmentServiceInterface defines shipment operations used by handlers.
type ShipmentServiceInterface interface {
	Get(ctx context.Context, id string) (*domain.Shipment, error)
	List(ctx context.Context, filter repository.ShipmentFilter) ([]domain.Shipment, int, error)
	Patch(ctx context.Context, id string, fields map[string]any) (*domain.Shipment, error)
	Delete(ctx context.Context, id string) error
	Bulk(ctx context.Context, importJobID string, req domain.BulkRequest) (*domain.BulkResult, error)
}

// QuoteServiceInterface defines quote operations used by handlers.
type QuoteServiceInterface interface {
	QuoteForImport(ctx context.Context, importJobID string) (*domain.QuoteSet, error)
	QuoteForShipments(ctx context.Context, ids []string) (*domain.QuoteSet, error)
}

// PurchaseServiceInterface defines purchase operations used by handlers.
type PurchaseServiceInterface interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*domain.PurchaseResult, error)
}

// PresetServiceInterface defines preset operations used by handlers.
type PresetServiceInterface interface {
	CreateAddressPreset(ctx context.Context, preset *domain.AddressPreset) error
	ListAddressPresets(ctx context.Context) ([]domain.AddressPreset, error)
	CreatePackagePreset(ctx context.Context, preset *domain.PackagePreset) error
	ListPackagePresets(ctx context.Context) ([]domain.PackagePreset, error)
}
