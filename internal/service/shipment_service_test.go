package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/service"
)

func readyShipment(rowNumber int) domain.Shipment {
	weight := 16.0
	return domain.Shipment{
		ID:                        uuid.NewString(),
		ImportJobID:               "job-1",
		RowNumber:                 rowNumber,
		ExternalOrderNumber:       fmt.Sprintf("ORD-%d", rowNumber),
		FromStreet1:               "1 Dock Way",
		FromCity:                  "Oakland",
		FromState:                 "CA",
		FromPostalCode:            "94607",
		ToName:                    "Jane Doe",
		ToStreet1:                 "500 Main St",
		ToCity:                    "Denver",
		ToState:                   "CO",
		ToPostalCode:              "80202",
		WeightOz:                  &weight,
		ValidationStatus:          domain.ValidationReady,
		AddressVerificationStatus: domain.VerificationValid,
		LabelStatus:               domain.LabelNotPurchased,
	}
}

func newShipmentService() (*service.ShipmentService, *fakeShipmentRepo, *fakePresetRepo) {
	shipments := newFakeShipmentRepo()
	presets := newFakePresetRepo()
	svc := service.NewShipmentService(shipments, presets, service.NewHeuristicVerifier())
	return svc, shipments, presets
}

func TestPatchRevalidates(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	s := readyShipment(1)
	shipments.add(s)

	got, err := svc.Patch(ctx, s.ID, map[string]any{"to_name": ""})
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationNeedsInfo, got.ValidationStatus)
	require.NotEmpty(t, got.ValidationErrors)
	assert.Equal(t, "to_name", got.ValidationErrors[0].Field)

	got, err = svc.Patch(ctx, s.ID, map[string]any{"to_name": "John Smith"})
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationReady, got.ValidationStatus)
	assert.Empty(t, got.ValidationErrors)
}

func TestPatchAddressResetsVerification(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	s := readyShipment(1)
	shipments.add(s)

	got, err := svc.Patch(ctx, s.ID, map[string]any{"to_street1": "600 Oak Ave"})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationNotStarted, got.AddressVerificationStatus)

	// Non-address edits keep the verification result.
	got, err = svc.Patch(ctx, s.ID, map[string]any{"sku": "SKU-9"})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationNotStarted, got.AddressVerificationStatus)
}

func TestPatchWeightZeroBecomesNil(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	s := readyShipment(1)
	shipments.add(s)

	got, err := svc.Patch(ctx, s.ID, map[string]any{"weight_oz": float64(0)})
	require.NoError(t, err)
	assert.Nil(t, got.WeightOz)
	assert.Equal(t, domain.ValidationNeedsInfo, got.ValidationStatus)
}

func TestPatchSelectedService(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	s := readyShipment(1)
	shipments.add(s)

	got, err := svc.Patch(ctx, s.ID, map[string]any{"selected_service": "priority_mail"})
	require.NoError(t, err)
	assert.Equal(t, "priority_mail", got.SelectedService)
	require.NotNil(t, got.SelectedServicePriceCents)
	assert.Equal(t, 660, *got.SelectedServicePriceCents)

	_, err = svc.Patch(ctx, s.ID, map[string]any{"selected_service": "teleportation"})
	assert.ErrorIs(t, err, service.ErrInvalidPayload)
}

func TestPatchRejections(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	purchased := readyShipment(1)
	purchased.LabelStatus = domain.LabelPurchased
	shipments.add(purchased)

	_, err := svc.Patch(ctx, purchased.ID, map[string]any{"to_name": "X"})
	assert.ErrorIs(t, err, service.ErrPurchasedLocked)

	_, err = svc.Patch(ctx, "missing", map[string]any{"to_name": "X"})
	assert.ErrorIs(t, err, service.ErrShipmentNotFound)

	open := readyShipment(2)
	shipments.add(open)
	_, err = svc.Patch(ctx, open.ID, map[string]any{"nonsense": "X"})
	assert.ErrorIs(t, err, service.ErrInvalidPayload)
}

func TestDeleteGuards(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	purchased := readyShipment(1)
	purchased.LabelStatus = domain.LabelPurchased
	shipments.add(purchased)

	assert.ErrorIs(t, svc.Delete(ctx, purchased.ID), service.ErrPurchasedLocked)
	assert.ErrorIs(t, svc.Delete(ctx, "missing"), service.ErrShipmentNotFound)

	open := readyShipment(2)
	shipments.add(open)
	require.NoError(t, svc.Delete(ctx, open.ID))

	_, err := svc.Get(ctx, open.ID)
	assert.ErrorIs(t, err, service.ErrShipmentNotFound)
}

func TestBulkDeleteSkipsPurchased(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	purchased := readyShipment(1)
	purchased.LabelStatus = domain.LabelPurchased
	open1 := readyShipment(2)
	open2 := readyShipment(3)
	shipments.add(purchased)
	shipments.add(open1)
	shipments.add(open2)

	result, err := svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkDelete,
		ShipmentIDs: []string{purchased.ID, open1.ID, open2.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedCount)
	assert.Equal(t, 0, result.UpdatedCount)
}

func TestBulkStaysWithinImport(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	mine := readyShipment(1)
	other := readyShipment(2)
	other.ImportJobID = "job-2"
	shipments.add(mine)
	shipments.add(other)

	result, err := svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkSetShippingService,
		ShipmentIDs: []string{mine.ID, other.ID},
		Payload:     map[string]any{"service": "ground_shipping"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount,
		"a row from another import must not pick up the service")

	result, err = svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkDelete,
		ShipmentIDs: []string{mine.ID, other.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeletedCount)

	got, err := svc.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SelectedService)
}

func TestBulkApplyPackagePresetRevalidates(t *testing.T) {
	svc, shipments, presets := newShipmentService()
	ctx := context.Background()

	s := readyShipment(1)
	s.WeightOz = nil
	s.ValidationStatus = domain.ValidationNeedsInfo
	shipments.add(s)

	preset := &domain.PackagePreset{ID: uuid.NewString(), Name: "Small Box", WeightOz: 24}
	require.NoError(t, presets.CreatePackagePreset(ctx, preset))

	result, err := svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkApplyPackagePreset,
		ShipmentIDs: []string{s.ID},
		Payload:     map[string]any{"preset_id": preset.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.WeightOz)
	assert.Equal(t, 24.0, *got.WeightOz)
	assert.Equal(t, domain.ValidationReady, got.ValidationStatus,
		"filling the missing weight should flip the row to READY")
}

func TestBulkApplyAddressPreset(t *testing.T) {
	svc, shipments, presets := newShipmentService()
	ctx := context.Background()

	s := readyShipment(1)
	shipments.add(s)

	preset := &domain.AddressPreset{
		ID:          uuid.NewString(),
		Name:        "Returns",
		ContactName: "Returns Desk",
		Street1:     "9 Depot Rd",
		City:        "Reno",
		State:       "NV",
		PostalCode:  "89501",
		Country:     "US",
	}
	require.NoError(t, presets.CreateAddressPreset(ctx, preset))

	result, err := svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkApplyAddressPreset,
		ShipmentIDs: []string{s.ID},
		Payload:     map[string]any{"preset_id": preset.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Returns Desk", got.FromName)
	assert.Equal(t, "Reno", got.FromCity)

	_, err = svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkApplyAddressPreset,
		ShipmentIDs: []string{s.ID},
		Payload:     map[string]any{"preset_id": uuid.NewString()},
	})
	assert.ErrorIs(t, err, service.ErrPresetNotFound)
}

func TestBulkSetServicePricesPerShipment(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	light := readyShipment(1)
	heavy := readyShipment(2)
	heavyWeight := 32.0
	heavy.WeightOz = &heavyWeight
	noWeight := readyShipment(3)
	noWeight.WeightOz = nil
	shipments.add(light)
	shipments.add(heavy)
	shipments.add(noWeight)

	result, err := svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkSetShippingService,
		ShipmentIDs: []string{light.ID, heavy.ID, noWeight.ID},
		Payload:     map[string]any{"service": "ground_shipping"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.UpdatedCount)

	got, _ := svc.Get(ctx, light.ID)
	require.NotNil(t, got.SelectedServicePriceCents)
	assert.Equal(t, 330, *got.SelectedServicePriceCents)

	got, _ = svc.Get(ctx, heavy.ID)
	require.NotNil(t, got.SelectedServicePriceCents)
	assert.Equal(t, 410, *got.SelectedServicePriceCents)

	got, _ = svc.Get(ctx, noWeight.ID)
	assert.Equal(t, "ground_shipping", got.SelectedService)
	assert.Nil(t, got.SelectedServicePriceCents, "no weight means no price")
}

func TestBulkVerifyAddresses(t *testing.T) {
	svc, shipments, _ := newShipmentService()
	ctx := context.Background()

	good := readyShipment(1)
	bad := readyShipment(2)
	bad.ToPostalCode = "nope"
	shipments.add(good)
	shipments.add(bad)

	result, err := svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkVerifyAddresses,
		ShipmentIDs: []string{good.ID, bad.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.UpdatedCount)

	got, _ := svc.Get(ctx, good.ID)
	assert.Equal(t, domain.VerificationValid, got.AddressVerificationStatus)
	got, _ = svc.Get(ctx, bad.ID)
	assert.Equal(t, domain.VerificationInvalid, got.AddressVerificationStatus)
}

func TestBulkRequestValidation(t *testing.T) {
	svc, _, _ := newShipmentService()
	ctx := context.Background()

	_, err := svc.Bulk(ctx, "job-1", domain.BulkRequest{Action: "explode", ShipmentIDs: []string{"a"}})
	assert.ErrorIs(t, err, service.ErrUnknownAction)

	_, err = svc.Bulk(ctx, "job-1", domain.BulkRequest{Action: domain.BulkDelete})
	assert.ErrorIs(t, err, service.ErrInvalidPayload)

	_, err = svc.Bulk(ctx, "job-1", domain.BulkRequest{
		Action:      domain.BulkSetShippingService,
		ShipmentIDs: []string{"a"},
		Payload:     map[string]any{},
	})
	assert.ErrorIs(t, err, service.ErrInvalidPayload)
}
