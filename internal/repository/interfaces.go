package repository

import (
	"context"

	"github.com/elvongray/shipping-labels/internal/domain"
)

// ShipmentFilter narrows a shipment listing. Zero values mean "no filter".
type ShipmentFilter struct {
	ImportJobID      string
	ValidationStatus domain.ValidationStatus
	Search           string
	HidePurchased    bool
	Page             int
	PageSize         int
}

// ServiceSelection assigns a carrier service and its quoted price to one shipment.
type ServiceSelection struct {
	ShipmentID string
	Service    string
	PriceCents *int
}

// ValidationUpdate records a recomputed validation result for one shipment.
type ValidationUpdate struct {
	ShipmentID string
	Status     domain.ValidationStatus
	Errors     []domain.FieldError
}

// VerificationUpdate records the outcome of address verification for one shipment.
type VerificationUpdate struct {
	ShipmentID string
	Status     domain.AddressVerificationStatus
}

// LabelUpdate marks one shipment's label as purchased.
type LabelUpdate struct {
	ShipmentID string
	LabelURL   string
}

// JobRepository defines methods for import job data access.
type JobRepository interface {
	Create(ctx context.Context, job *domain.ImportJob) error
	Get(ctx context.Context, id string) (*domain.ImportJob, error)
	GetWithCounters(ctx context.Context, id string) (*domain.ImportJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.ImportStatus, errorSummary *string) error
	UpdateProgress(ctx context.Context, id string, done int) error
}

// ShipmentRepository defines methods for shipment data access.
type ShipmentRepository interface {
	BulkInsert(ctx context.Context, shipments []domain.Shipment) error
	Get(ctx context.Context, id string) (*domain.Shipment, error)
	List(ctx context.Context, filter ShipmentFilter) ([]domain.Shipment, int, error)
	ListByIDs(ctx context.Context, importJobID string, ids []string) ([]domain.Shipment, error)
	ListByImport(ctx context.Context, importJobID string) ([]domain.Shipment, error)
	Update(ctx context.Context, shipment *domain.Shipment) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, importJobID string, ids []string) (int, error)
	BulkApplyAddress(ctx context.Context, importJobID string, ids []string, preset domain.AddressPreset) (int, error)
	BulkApplyPackage(ctx context.Context, importJobID string, ids []string, preset domain.PackagePreset) (int, error)
	SetServiceSelections(ctx context.Context, selections []ServiceSelection) (int, error)
	SetValidationResults(ctx context.Context, updates []ValidationUpdate) error
	SetVerificationStatuses(ctx context.Context, updates []VerificationUpdate) (int, error)
	MarkPurchased(ctx context.Context, updates []LabelUpdate) (int, error)
}

// PresetRepository defines methods for saved address and package presets.
type PresetRepository interface {
	CreateAddressPreset(ctx context.Context, preset *domain.AddressPreset) error
	ListAddressPresets(ctx context.Context) ([]domain.AddressPreset, error)
	GetAddressPreset(ctx context.Context, id string) (*domain.AddressPreset, error)
	CreatePackagePreset(ctx context.Context, preset *domain.PackagePreset) error
	ListPackagePresets(ctx context.Context) ([]domain.PackagePreset, error)
	GetPackagePreset(ctx context.Context, id string) (*domain.PackagePreset, error)
}
