package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elvongray/shipping-labels/internal/domain"
)

const shipmentColumns = `id, import_job_id, row_number, external_order_number, sku,
	from_name, from_company, from_street1, from_street2, from_city, from_state,
	from_postal_code, from_country,
	to_name, to_company, to_street1, to_street2, to_city, to_state,
	to_postal_code, to_country,
	weight_oz, length_in, width_in, height_in,
	validation_status, validation_errors, address_verification_status,
	selected_service, selected_service_price_cents, label_status, label_url`

// PostgresShipmentRepository implements ShipmentRepository using PostgreSQL.
type PostgresShipmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresShipmentRepository creates a new PostgresShipmentRepository.
func NewPostgresShipmentRepository(pool *pgxpool.Pool) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{pool: pool}
}

func scanShipment(row pgx.Row) (*domain.Shipment, error) {
	var s domain.Shipment
	var validationErrors []byte
	var selectedService *string

	err := row.Scan(&s.ID, &s.ImportJobID, &s.RowNumber, &s.ExternalOrderNumber, &s.SKU,
		&s.FromName, &s.FromCompany, &s.FromStreet1, &s.FromStreet2, &s.FromCity,
		&s.FromState, &s.FromPostalCode, &s.FromCountry,
		&s.ToName, &s.ToCompany, &s.ToStreet1, &s.ToStreet2, &s.ToCity,
		&s.ToState, &s.ToPostalCode, &s.ToCountry,
		&s.WeightOz, &s.LengthIn, &s.WidthIn, &s.HeightIn,
		&s.ValidationStatus, &validationErrors, &s.AddressVerificationStatus,
		&selectedService, &s.SelectedServicePriceCents, &s.LabelStatus, &s.LabelURL)
	if err != nil {
		return nil, err
	}

	if validationErrors != nil {
		if err := json.Unmarshal(validationErrors, &s.ValidationErrors); err != nil {
			return nil, fmt.Errorf("unmarshal validation errors: %w", err)
		}
	}
	if selectedService != nil {
		s.SelectedService = *selectedService
	}

	return &s, nil
}

// BulkInsert inserts shipments using the PostgreSQL COPY protocol.
func (r *PostgresShipmentRepository) BulkInsert(ctx context.Context, shipments []domain.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(shipments))
	for _, s := range shipments {
		validationErrors, err := json.Marshal(s.ValidationErrors)
		if err != nil {
			return fmt.Errorf("marshal validation errors: %w", err)
		}
		rows = append(rows, []interface{}{
			s.ID, s.ImportJobID, s.RowNumber, s.ExternalOrderNumber, s.SKU,
			s.FromName, s.FromCompany, s.FromStreet1, s.FromStreet2, s.FromCity,
			s.FromState, s.FromPostalCode, s.FromCountry,
			s.ToName, s.ToCompany, s.ToStreet1, s.ToStreet2, s.ToCity,
			s.ToState, s.ToPostalCode, s.ToCountry,
			s.WeightOz, s.LengthIn, s.WidthIn, s.HeightIn,
			s.ValidationStatus, validationErrors, s.AddressVerificationStatus,
			s.SelectedService, s.SelectedServicePriceCents, s.LabelStatus, s.LabelURL,
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"shipments"},
		[]string{"id", "import_job_id", "row_number", "external_order_number", "sku",
			"from_name", "from_company", "from_street1", "from_street2", "from_city",
			"from_state", "from_postal_code", "from_country",
			"to_name", "to_company", "to_street1", "to_street2", "to_city",
			"to_state", "to_postal_code", "to_country",
			"weight_oz", "length_in", "width_in", "height_in",
			"validation_status", "validation_errors", "address_verification_status",
			"selected_service", "selected_service_price_cents", "label_status", "label_url"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy shipments: %w", err)
	}

	return nil
}

// Get retrieves a shipment by ID.
func (r *PostgresShipmentRepository) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM shipments WHERE id = $1", shipmentColumns), id)

	s, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}

	return s, nil
}

// List retrieves a page of shipments matching the filter, ordered by row
// number, plus the total match count for pagination.
func (r *PostgresShipmentRepository) List(ctx context.Context, filter ShipmentFilter) ([]domain.Shipment, int, error) {
	where, args := buildShipmentFilter(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM shipments" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count shipments: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	query := fmt.Sprintf("SELECT %s FROM shipments%s ORDER BY row_number LIMIT $%d OFFSET $%d",
		shipmentColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	shipments, err := collectShipments(rows)
	if err != nil {
		return nil, 0, err
	}

	return shipments, total, nil
}

func buildShipmentFilter(filter ShipmentFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.ImportJobID != "" {
		args = append(args, filter.ImportJobID)
		conditions = append(conditions, fmt.Sprintf("import_job_id = $%d", len(args)))
	}
	if filter.ValidationStatus != "" {
		args = append(args, filter.ValidationStatus)
		conditions = append(conditions, fmt.Sprintf("validation_status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(external_order_number ILIKE $%d OR to_name ILIKE $%d OR to_street1 ILIKE $%d OR to_city ILIKE $%d OR to_postal_code ILIKE $%d)",
			n, n, n, n, n))
	}
	if filter.HidePurchased {
		conditions = append(conditions, "label_status <> 'PURCHASED'")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func collectShipments(rows pgx.Rows) ([]domain.Shipment, error) {
	var shipments []domain.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		shipments = append(shipments, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read shipments: %w", err)
	}
	return shipments, nil
}

// ListByIDs retrieves the named shipments ordered by row number. A
// non-empty importJobID restricts the result to that import; IDs that
// are missing or out of scope are silently absent.
func (r *PostgresShipmentRepository) ListByIDs(ctx context.Context, importJobID string, ids []string) ([]domain.Shipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM shipments WHERE id = ANY($1) ORDER BY row_number", shipmentColumns)
	args := []interface{}{ids}
	if importJobID != "" {
		query = fmt.Sprintf("SELECT %s FROM shipments WHERE import_job_id = $1 AND id = ANY($2) ORDER BY row_number", shipmentColumns)
		args = []interface{}{importJobID, ids}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments by ids: %w", err)
	}
	defer rows.Close()

	return collectShipments(rows)
}

// ListByImport retrieves all shipments belonging to an import job.
func (r *PostgresShipmentRepository) ListByImport(ctx context.Context, importJobID string) ([]domain.Shipment, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM shipments WHERE import_job_id = $1 ORDER BY row_number", shipmentColumns), importJobID)
	if err != nil {
		return nil, fmt.Errorf("list shipments by import: %w", err)
	}
	defer rows.Close()

	return collectShipments(rows)
}

// Update writes all mutable fields of a shipment.
func (r *PostgresShipmentRepository) Update(ctx context.Context, s *domain.Shipment) error {
	validationErrors, err := json.Marshal(s.ValidationErrors)
	if err != nil {
		return fmt.Errorf("marshal validation errors: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE shipments
		SET external_order_number = $2, sku = $3,
			from_name = $4, from_company = $5, from_street1 = $6, from_street2 = $7,
			from_city = $8, from_state = $9, from_postal_code = $10, from_country = $11,
			to_name = $12, to_company = $13, to_street1 = $14, to_street2 = $15,
			to_city = $16, to_state = $17, to_postal_code = $18, to_country = $19,
			weight_oz = $20, length_in = $21, width_in = $22, height_in = $23,
			validation_status = $24, validation_errors = $25,
			address_verification_status = $26,
			selected_service = $27, selected_service_price_cents = $28,
			label_status = $29, label_url = $30
		WHERE id = $1
	`, s.ID, s.ExternalOrderNumber, s.SKU,
		s.FromName, s.FromCompany, s.FromStreet1, s.FromStreet2,
		s.FromCity, s.FromState, s.FromPostalCode, s.FromCountry,
		s.ToName, s.ToCompany, s.ToStreet1, s.ToStreet2,
		s.ToCity, s.ToState, s.ToPostalCode, s.ToCountry,
		s.WeightOz, s.LengthIn, s.WidthIn, s.HeightIn,
		s.ValidationStatus, validationErrors,
		s.AddressVerificationStatus,
		s.SelectedService, s.SelectedServicePriceCents,
		s.LabelStatus, s.LabelURL)

	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}

	return nil
}

// Delete removes a single shipment.
func (r *PostgresShipmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM shipments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	return nil
}

// BulkDelete removes the named shipments of one import. Shipments with a
// purchased label or belonging to another import are never deleted.
func (r *PostgresShipmentRepository) BulkDelete(ctx context.Context, importJobID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx,
		"DELETE FROM shipments WHERE import_job_id = $1 AND id = ANY($2) AND label_status <> 'PURCHASED'",
		importJobID, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete shipments: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// BulkApplyAddress overwrites the ship-from address of the named shipments
// of one import with the preset's fields.
func (r *PostgresShipmentRepository) BulkApplyAddress(ctx context.Context, importJobID string, ids []string, preset domain.AddressPreset) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE shipments
		SET from_name = $3, from_company = $4, from_street1 = $5, from_street2 = $6,
			from_city = $7, from_state = $8, from_postal_code = $9, from_country = $10
		WHERE import_job_id = $1 AND id = ANY($2)
	`, importJobID, ids, preset.ContactName, preset.Company, preset.Street1, preset.Street2,
		preset.City, preset.State, preset.PostalCode, preset.Country)

	if err != nil {
		return 0, fmt.Errorf("bulk apply address preset: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// BulkApplyPackage overwrites the package fields of the named shipments
// of one import with the preset's weight and dimensions.
func (r *PostgresShipmentRepository) BulkApplyPackage(ctx context.Context, importJobID string, ids []string, preset domain.PackagePreset) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE shipments
		SET weight_oz = $3, length_in = $4, width_in = $5, height_in = $6
		WHERE import_job_id = $1 AND id = ANY($2)
	`, importJobID, ids, preset.WeightOz, preset.LengthIn, preset.WidthIn, preset.HeightIn)

	if err != nil {
		return 0, fmt.Errorf("bulk apply package preset: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// SetServiceSelections writes per-shipment service assignments and quoted
// prices in a single batch round trip.
func (r *PostgresShipmentRepository) SetServiceSelections(ctx context.Context, selections []ServiceSelection) (int, error) {
	if len(selections) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, sel := range selections {
		batch.Queue(`
			UPDATE shipments
			SET selected_service = $2, selected_service_price_cents = $3
			WHERE id = $1
		`, sel.ShipmentID, sel.Service, sel.PriceCents)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	updated := 0
	for range selections {
		tag, err := results.Exec()
		if err != nil {
			return updated, fmt.Errorf("set service selection: %w", err)
		}
		updated += int(tag.RowsAffected())
	}

	return updated, nil
}

// SetValidationResults writes recomputed validation statuses in a batch.
func (r *PostgresShipmentRepository) SetValidationResults(ctx context.Context, updates []ValidationUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		validationErrors, err := json.Marshal(u.Errors)
		if err != nil {
			return fmt.Errorf("marshal validation errors: %w", err)
		}
		batch.Queue(`
			UPDATE shipments
			SET validation_status = $2, validation_errors = $3
			WHERE id = $1
		`, u.ShipmentID, u.Status, validationErrors)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range updates {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("set validation result: %w", err)
		}
	}

	return nil
}

// SetVerificationStatuses writes address verification outcomes in a batch.
func (r *PostgresShipmentRepository) SetVerificationStatuses(ctx context.Context, updates []VerificationUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE shipments
			SET address_verification_status = $2
			WHERE id = $1
		`, u.ShipmentID, u.Status)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	updated := 0
	for range updates {
		tag, err := results.Exec()
		if err != nil {
			return updated, fmt.Errorf("set verification status: %w", err)
		}
		updated += int(tag.RowsAffected())
	}

	return updated, nil
}

// MarkPurchased records purchased labels and their download URLs in a batch.
func (r *PostgresShipmentRepository) MarkPurchased(ctx context.Context, updates []LabelUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE shipments
			SET label_status = $2, label_url = $3
			WHERE id = $1
		`, u.ShipmentID, domain.LabelPurchased, u.LabelURL)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	updated := 0
	for range updates {
		tag, err := results.Exec()
		if err != nil {
			return updated, fmt.Errorf("mark purchased: %w", err)
		}
		updated += int(tag.RowsAffected())
	}

	return updated, nil
}
