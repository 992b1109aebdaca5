package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/logger"
	"github.com/elvongray/shipping-labels/internal/metrics"
	"github.com/elvongray/shipping-labels/internal/repository"
)

// labelURLPattern builds the download URL for one purchased label.
const labelURLPattern = "https://example.com/labels/%s/%s.pdf"

// PurchaseRequest carries the checkout submission for an import.
type PurchaseRequest struct {
	ImportJobID string
	LabelFormat string
	AgreedTerms bool
}

// PurchaseService finalizes label purchases for an import's purchasable
// shipments. Non-purchasable shipments are skipped, never blocking.
type PurchaseService struct {
	jobRepo      repository.JobRepository
	shipmentRepo repository.ShipmentRepository
}

// NewPurchaseService creates a new PurchaseService.
func NewPurchaseService(jobRepo repository.JobRepository, shipmentRepo repository.ShipmentRepository) *PurchaseService {
	return &PurchaseService{jobRepo: jobRepo, shipmentRepo: shipmentRepo}
}

// Purchase buys labels for every purchasable shipment of the import.
// Guards run in order: terms acceptance, import existence, non-empty
// import, at least one purchasable shipment.
func (s *PurchaseService) Purchase(ctx context.Context, req PurchaseRequest) (*domain.PurchaseResult, error) {
	if !req.AgreedTerms {
		metrics.ObservePurchase("terms_required", 0)
		return nil, ErrTermsRequired
	}

	job, err := s.jobRepo.Get(ctx, req.ImportJobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	shipments, err := s.shipmentRepo.ListByImport(ctx, req.ImportJobID)
	if err != nil {
		return nil, err
	}
	if len(shipments) == 0 {
		metrics.ObservePurchase("empty_import", 0)
		return nil, ErrEmptyImport
	}

	purchaseID := uuid.New().String()
	var updates []repository.LabelUpdate
	skipped := 0

	for i := range shipments {
		if shipments[i].LabelStatus == domain.LabelPurchased || !shipments[i].Purchasable() {
			skipped++
			continue
		}
		updates = append(updates, repository.LabelUpdate{
			ShipmentID: shipments[i].ID,
			LabelURL:   fmt.Sprintf(labelURLPattern, purchaseID, shipments[i].ID),
		})
	}

	if len(updates) == 0 {
		metrics.ObservePurchase("not_ready", 0)
		return nil, ErrNotReady
	}

	purchased, err := s.shipmentRepo.MarkPurchased(ctx, updates)
	if err != nil {
		metrics.ObservePurchase("error", 0)
		return nil, fmt.Errorf("mark purchased: %w", err)
	}

	metrics.ObservePurchase("success", purchased)
	logger.Info("labels purchased",
		slog.String("import_job_id", req.ImportJobID),
		slog.String("purchase_id", purchaseID),
		slog.Int("purchased", purchased),
		slog.Int("skipped", skipped))

	return &domain.PurchaseResult{
		PurchaseID:       purchaseID,
		LabelFormat:      req.LabelFormat,
		LabelDownloadURL: fmt.Sprintf("https://example.com/labels/%s.pdf", purchaseID),
		PurchasedCount:   purchased,
		SkippedCount:     skipped,
	}, nil
}
