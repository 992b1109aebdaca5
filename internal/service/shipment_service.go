package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/logger"
	"github.com/elvongray/shipping-labels/internal/repository"
)

// ShipmentService handles single and bulk shipment mutations. Every
// mutation that can change field values recomputes validation so clients
// always observe a consistent validation_status.
type ShipmentService struct {
	shipmentRepo repository.ShipmentRepository
	presetRepo   repository.PresetRepository
	verifier     AddressVerifier
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(
	shipmentRepo repository.ShipmentRepository,
	presetRepo repository.PresetRepository,
	verifier AddressVerifier,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		presetRepo:   presetRepo,
		verifier:     verifier,
	}
}

// Get retrieves a shipment by ID.
func (s *ShipmentService) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	shipment, err := s.shipmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// List retrieves a page of shipments matching the filter.
func (s *ShipmentService) List(ctx context.Context, filter repository.ShipmentFilter) ([]domain.Shipment, int, error) {
	return s.shipmentRepo.List(ctx, filter)
}

// Patch applies a partial update to a shipment and recomputes validation.
// Shipments with purchased labels are immutable.
func (s *ShipmentService) Patch(ctx context.Context, id string, fields map[string]any) (*domain.Shipment, error) {
	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.LabelStatus == domain.LabelPurchased {
		return nil, ErrPurchasedLocked
	}

	if err := applyPatch(shipment, fields); err != nil {
		return nil, err
	}

	shipment.ValidationStatus, shipment.ValidationErrors = ValidateShipment(shipment)

	// Address edits invalidate any earlier verification result.
	if touchesAddress(fields) {
		shipment.AddressVerificationStatus = domain.VerificationNotStarted
	}

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, err
	}

	return shipment, nil
}

func applyPatch(s *domain.Shipment, fields map[string]any) error {
	stringTargets := map[string]*string{
		"external_order_number": &s.ExternalOrderNumber,
		"sku":                   &s.SKU,
		"from_name":             &s.FromName,
		"from_company":          &s.FromCompany,
		"from_street1":          &s.FromStreet1,
		"from_street2":          &s.FromStreet2,
		"from_city":             &s.FromCity,
		"from_state":            &s.FromState,
		"from_postal_code":      &s.FromPostalCode,
		"from_country":          &s.FromCountry,
		"to_name":               &s.ToName,
		"to_company":            &s.ToCompany,
		"to_street1":            &s.ToStreet1,
		"to_street2":            &s.ToStreet2,
		"to_city":               &s.ToCity,
		"to_state":              &s.ToState,
		"to_postal_code":        &s.ToPostalCode,
		"to_country":            &s.ToCountry,
	}
	numberTargets := map[string]**float64{
		"weight_oz": &s.WeightOz,
		"length_in": &s.LengthIn,
		"width_in":  &s.WidthIn,
		"height_in": &s.HeightIn,
	}

	for key, raw := range fields {
		if target, ok := stringTargets[key]; ok {
			value, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%w: field %q must be a string", ErrInvalidPayload, key)
			}
			*target = value
			continue
		}

		if target, ok := numberTargets[key]; ok {
			if raw == nil {
				*target = nil
				continue
			}
			value, ok := raw.(float64)
			if !ok {
				return fmt.Errorf("%w: field %q must be a number or null", ErrInvalidPayload, key)
			}
			if value == 0 {
				*target = nil
			} else {
				*target = &value
			}
			continue
		}

		if key == "selected_service" {
			value, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%w: field %q must be a string", ErrInvalidPayload, key)
			}
			if value != "" && !KnownService(value) {
				return fmt.Errorf("%w: unknown service %q", ErrInvalidPayload, value)
			}
			s.SelectedService = value
			if value == "" {
				s.SelectedServicePriceCents = nil
			} else {
				s.SelectedServicePriceCents = PriceFor(s, value)
			}
			continue
		}

		return fmt.Errorf("%w: unknown field %q", ErrInvalidPayload, key)
	}

	return nil
}

func touchesAddress(fields map[string]any) bool {
	addressFields := []string{
		"to_street1", "to_street2", "to_city", "to_state", "to_postal_code", "to_country",
	}
	for _, f := range addressFields {
		if _, ok := fields[f]; ok {
			return true
		}
	}
	return false
}

// Delete removes a single shipment. Shipments with purchased labels
// cannot be deleted.
func (s *ShipmentService) Delete(ctx context.Context, id string) error {
	shipment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if shipment.LabelStatus == domain.LabelPurchased {
		return ErrPurchasedLocked
	}
	return s.shipmentRepo.Delete(ctx, id)
}

// Bulk dispatches a bulk action over a set of shipments belonging to one
// import and reports how many rows were updated or deleted. IDs from
// other imports never match, so a stale selection cannot reach across
// import boundaries.
func (s *ShipmentService) Bulk(ctx context.Context, importJobID string, req domain.BulkRequest) (*domain.BulkResult, error) {
	if !domain.IsValidBulkAction(req.Action) {
		return nil, ErrUnknownAction
	}
	if len(req.ShipmentIDs) == 0 {
		return nil, fmt.Errorf("%w: shipment_ids must not be empty", ErrInvalidPayload)
	}

	logger.Info("bulk shipment action",
		slog.String("import_job_id", importJobID),
		slog.String("action", string(req.Action)),
		slog.Int("shipments", len(req.ShipmentIDs)))

	switch req.Action {
	case domain.BulkDelete:
		deleted, err := s.shipmentRepo.BulkDelete(ctx, importJobID, req.ShipmentIDs)
		if err != nil {
			return nil, err
		}
		return &domain.BulkResult{DeletedCount: deleted}, nil

	case domain.BulkApplyAddressPreset:
		return s.bulkApplyAddress(ctx, importJobID, req)

	case domain.BulkApplyPackagePreset:
		return s.bulkApplyPackage(ctx, importJobID, req)

	case domain.BulkSetShippingService:
		return s.bulkSetService(ctx, importJobID, req)

	case domain.BulkVerifyAddresses:
		return s.bulkVerify(ctx, importJobID, req)
	}

	return nil, ErrUnknownAction
}

func payloadString(payload map[string]any, key string) (string, error) {
	raw, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("%w: payload missing %q", ErrInvalidPayload, key)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: payload field %q must be a non-empty string", ErrInvalidPayload, key)
	}
	return value, nil
}

func (s *ShipmentService) bulkApplyAddress(ctx context.Context, importJobID string, req domain.BulkRequest) (*domain.BulkResult, error) {
	presetID, err := payloadString(req.Payload, "preset_id")
	if err != nil {
		return nil, err
	}

	preset, err := s.presetRepo.GetAddressPreset(ctx, presetID)
	if err != nil {
		return nil, err
	}
	if preset == nil {
		return nil, ErrPresetNotFound
	}

	updated, err := s.shipmentRepo.BulkApplyAddress(ctx, importJobID, req.ShipmentIDs, *preset)
	if err != nil {
		return nil, err
	}

	if err := s.revalidate(ctx, importJobID, req.ShipmentIDs); err != nil {
		return nil, err
	}

	return &domain.BulkResult{UpdatedCount: updated}, nil
}

func (s *ShipmentService) bulkApplyPackage(ctx context.Context, importJobID string, req domain.BulkRequest) (*domain.BulkResult, error) {
	presetID, err := payloadString(req.Payload, "preset_id")
	if err != nil {
		return nil, err
	}

	preset, err := s.presetRepo.GetPackagePreset(ctx, presetID)
	if err != nil {
		return nil, err
	}
	if preset == nil {
		return nil, ErrPresetNotFound
	}

	updated, err := s.shipmentRepo.BulkApplyPackage(ctx, importJobID, req.ShipmentIDs, *preset)
	if err != nil {
		return nil, err
	}

	if err := s.revalidate(ctx, importJobID, req.ShipmentIDs); err != nil {
		return nil, err
	}

	return &domain.BulkResult{UpdatedCount: updated}, nil
}

func (s *ShipmentService) bulkSetService(ctx context.Context, importJobID string, req domain.BulkRequest) (*domain.BulkResult, error) {
	serviceCode, err := payloadString(req.Payload, "service")
	if err != nil {
		return nil, err
	}
	if !KnownService(serviceCode) {
		return nil, fmt.Errorf("%w: unknown service %q", ErrInvalidPayload, serviceCode)
	}

	shipments, err := s.shipmentRepo.ListByIDs(ctx, importJobID, req.ShipmentIDs)
	if err != nil {
		return nil, err
	}

	selections := make([]repository.ServiceSelection, 0, len(shipments))
	for i := range shipments {
		selections = append(selections, repository.ServiceSelection{
			ShipmentID: shipments[i].ID,
			Service:    serviceCode,
			PriceCents: PriceFor(&shipments[i], serviceCode),
		})
	}

	updated, err := s.shipmentRepo.SetServiceSelections(ctx, selections)
	if err != nil {
		return nil, err
	}

	return &domain.BulkResult{UpdatedCount: updated}, nil
}

func (s *ShipmentService) bulkVerify(ctx context.Context, importJobID string, req domain.BulkRequest) (*domain.BulkResult, error) {
	shipments, err := s.shipmentRepo.ListByIDs(ctx, importJobID, req.ShipmentIDs)
	if err != nil {
		return nil, err
	}

	updates := make([]repository.VerificationUpdate, 0, len(shipments))
	for i := range shipments {
		status, verr := s.verifier.Verify(ctx, &shipments[i])
		if verr != nil {
			status = domain.VerificationFailed
		}
		updates = append(updates, repository.VerificationUpdate{
			ShipmentID: shipments[i].ID,
			Status:     status,
		})
	}

	updated, err := s.shipmentRepo.SetVerificationStatuses(ctx, updates)
	if err != nil {
		return nil, err
	}

	return &domain.BulkResult{UpdatedCount: updated}, nil
}

// revalidate recomputes validation for a set of shipments after their
// fields changed through a bulk mutation.
func (s *ShipmentService) revalidate(ctx context.Context, importJobID string, ids []string) error {
	shipments, err := s.shipmentRepo.ListByIDs(ctx, importJobID, ids)
	if err != nil {
		return err
	}

	updates := make([]repository.ValidationUpdate, 0, len(shipments))
	for i := range shipments {
		status, fieldErrors := ValidateShipment(&shipments[i])
		updates = append(updates, repository.ValidationUpdate{
			ShipmentID: shipments[i].ID,
			Status:     status,
			Errors:     fieldErrors,
		})
	}

	return s.shipmentRepo.SetValidationResults(ctx, updates)
}
