package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/repository"
)

func TestShipmentRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	ctx := context.Background()
	jobs := repository.NewPostgresJobRepository(tdb.Pool)
	shipments := repository.NewPostgresShipmentRepository(tdb.Pool)

	seed := func(t *testing.T, n int) (string, []domain.Shipment) {
		t.Helper()
		tdb.TruncateTables(t, "import_jobs", "shipments")

		job := newTestJob()
		require.NoError(t, jobs.Create(ctx, job))

		rows := make([]domain.Shipment, 0, n)
		for i := 1; i <= n; i++ {
			rows = append(rows, newTestShipment(job.ID, i))
		}
		require.NoError(t, shipments.BulkInsert(ctx, rows))
		return job.ID, rows
	}

	t.Run("bulk insert and get", func(t *testing.T) {
		_, rows := seed(t, 2)

		got, err := shipments.Get(ctx, rows[0].ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "ORD-001", got.ExternalOrderNumber)
		assert.Equal(t, "Denver", got.ToCity)
		require.NotNil(t, got.WeightOz)
		assert.Equal(t, 16.0, *got.WeightOz)
		assert.Equal(t, domain.ValidationReady, got.ValidationStatus)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		got, err := shipments.Get(ctx, "11111111-1111-1111-1111-111111111111")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list pagination", func(t *testing.T) {
		jobID, _ := seed(t, 5)

		page1, total, err := shipments.List(ctx, repository.ShipmentFilter{
			ImportJobID: jobID, Page: 1, PageSize: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page1, 2)
		assert.Equal(t, 1, page1[0].RowNumber)
		assert.Equal(t, 2, page1[1].RowNumber)

		page3, total, err := shipments.List(ctx, repository.ShipmentFilter{
			ImportJobID: jobID, Page: 3, PageSize: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page3, 1)
		assert.Equal(t, 5, page3[0].RowNumber)
	})

	t.Run("list filters", func(t *testing.T) {
		jobID, rows := seed(t, 3)

		invalid := rows[1]
		invalid.ValidationStatus = domain.ValidationInvalid
		require.NoError(t, shipments.Update(ctx, &invalid))

		got, total, err := shipments.List(ctx, repository.ShipmentFilter{
			ImportJobID:      jobID,
			ValidationStatus: domain.ValidationInvalid,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, invalid.ID, got[0].ID)

		got, total, err = shipments.List(ctx, repository.ShipmentFilter{
			ImportJobID: jobID,
			Search:      "ORD-003",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].RowNumber)

		got, _, err = shipments.List(ctx, repository.ShipmentFilter{
			ImportJobID: jobID,
			Search:      "customer",
		})
		require.NoError(t, err)
		assert.Len(t, got, 3, "search should be case insensitive")
	})

	t.Run("hide purchased", func(t *testing.T) {
		jobID, rows := seed(t, 2)

		_, err := shipments.MarkPurchased(ctx, []repository.LabelUpdate{
			{ShipmentID: rows[0].ID, LabelURL: "https://example.com/labels/p1/s1.pdf"},
		})
		require.NoError(t, err)

		got, total, err := shipments.List(ctx, repository.ShipmentFilter{
			ImportJobID:   jobID,
			HidePurchased: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, rows[1].ID, got[0].ID)
	})

	t.Run("update roundtrip", func(t *testing.T) {
		_, rows := seed(t, 1)

		s := rows[0]
		s.ToName = "Updated Name"
		s.ValidationStatus = domain.ValidationNeedsInfo
		s.ValidationErrors = []domain.FieldError{
			{Field: "weight_oz", Code: "required", Message: "Weight is required"},
		}
		s.WeightOz = nil
		require.NoError(t, shipments.Update(ctx, &s))

		got, err := shipments.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated Name", got.ToName)
		assert.Nil(t, got.WeightOz)
		assert.Equal(t, domain.ValidationNeedsInfo, got.ValidationStatus)
		require.Len(t, got.ValidationErrors, 1)
		assert.Equal(t, "weight_oz", got.ValidationErrors[0].Field)
	})

	t.Run("bulk delete skips purchased", func(t *testing.T) {
		jobID, rows := seed(t, 3)

		_, err := shipments.MarkPurchased(ctx, []repository.LabelUpdate{
			{ShipmentID: rows[0].ID, LabelURL: "https://example.com/labels/p1/s1.pdf"},
		})
		require.NoError(t, err)

		ids := []string{rows[0].ID, rows[1].ID, rows[2].ID}
		deleted, err := shipments.BulkDelete(ctx, jobID, ids)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		remaining, err := shipments.ListByIDs(ctx, jobID, ids)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, rows[0].ID, remaining[0].ID)
	})

	t.Run("bulk operations scoped to import", func(t *testing.T) {
		jobID, rows := seed(t, 1)

		otherJob := newTestJob()
		require.NoError(t, jobs.Create(ctx, otherJob))
		otherRow := newTestShipment(otherJob.ID, 1)
		require.NoError(t, shipments.BulkInsert(ctx, []domain.Shipment{otherRow}))

		ids := []string{rows[0].ID, otherRow.ID}

		updated, err := shipments.BulkApplyAddress(ctx, jobID, ids, domain.AddressPreset{
			ContactName: "Returns Desk",
			Street1:     "9 Depot Rd",
			City:        "Reno",
			State:       "NV",
			PostalCode:  "89501",
			Country:     "US",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated)

		deleted, err := shipments.BulkDelete(ctx, jobID, ids)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		got, err := shipments.Get(ctx, otherRow.ID)
		require.NoError(t, err)
		require.NotNil(t, got, "rows from another import must survive a scoped bulk delete")
		assert.NotEqual(t, "Returns Desk", got.FromName)
	})

	t.Run("bulk apply presets", func(t *testing.T) {
		jobID, rows := seed(t, 2)
		ids := []string{rows[0].ID, rows[1].ID}

		updated, err := shipments.BulkApplyAddress(ctx, jobID, ids, domain.AddressPreset{
			ContactName: "Returns Desk",
			Street1:     "9 Depot Rd",
			City:        "Reno",
			State:       "NV",
			PostalCode:  "89501",
			Country:     "US",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated)

		length := 10.0
		updated, err = shipments.BulkApplyPackage(ctx, jobID, ids, domain.PackagePreset{
			WeightOz: 24,
			LengthIn: &length,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated)

		got, err := shipments.Get(ctx, rows[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Returns Desk", got.FromName)
		assert.Equal(t, "Reno", got.FromCity)
		require.NotNil(t, got.WeightOz)
		assert.Equal(t, 24.0, *got.WeightOz)
		require.NotNil(t, got.LengthIn)
		assert.Equal(t, 10.0, *got.LengthIn)
	})

	t.Run("service selections and verification", func(t *testing.T) {
		_, rows := seed(t, 2)

		price1, price2 := 660, 330
		updated, err := shipments.SetServiceSelections(ctx, []repository.ServiceSelection{
			{ShipmentID: rows[0].ID, Service: "priority_mail", PriceCents: &price1},
			{ShipmentID: rows[1].ID, Service: "ground_shipping", PriceCents: &price2},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated)

		updated, err = shipments.SetVerificationStatuses(ctx, []repository.VerificationUpdate{
			{ShipmentID: rows[0].ID, Status: domain.VerificationValid},
			{ShipmentID: rows[1].ID, Status: domain.VerificationCorrected},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated)

		got, err := shipments.Get(ctx, rows[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "priority_mail", got.SelectedService)
		require.NotNil(t, got.SelectedServicePriceCents)
		assert.Equal(t, 660, *got.SelectedServicePriceCents)
		assert.Equal(t, domain.VerificationValid, got.AddressVerificationStatus)
		assert.True(t, got.Purchasable())
	})

	t.Run("validation results batch", func(t *testing.T) {
		_, rows := seed(t, 2)

		err := shipments.SetValidationResults(ctx, []repository.ValidationUpdate{
			{ShipmentID: rows[0].ID, Status: domain.ValidationReady},
			{
				ShipmentID: rows[1].ID,
				Status:     domain.ValidationNeedsInfo,
				Errors: []domain.FieldError{
					{Field: "to_name", Code: "required", Message: "Recipient name is required"},
				},
			},
		})
		require.NoError(t, err)

		got, err := shipments.Get(ctx, rows[1].ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ValidationNeedsInfo, got.ValidationStatus)
		require.Len(t, got.ValidationErrors, 1)
		assert.Equal(t, "to_name", got.ValidationErrors[0].Field)
	})
}
