package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elvongray/shipping-labels/internal/domain"
)

// PostgresPresetRepository implements PresetRepository using PostgreSQL.
type PostgresPresetRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPresetRepository creates a new PostgresPresetRepository.
func NewPostgresPresetRepository(pool *pgxpool.Pool) *PostgresPresetRepository {
	return &PostgresPresetRepository{pool: pool}
}

// CreateAddressPreset inserts a new saved address preset.
func (r *PostgresPresetRepository) CreateAddressPreset(ctx context.Context, preset *domain.AddressPreset) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO saved_address_presets (id, name, contact_name, company,
			street1, street2, city, state, postal_code, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, preset.ID, preset.Name, preset.ContactName, preset.Company,
		preset.Street1, preset.Street2, preset.City, preset.State,
		preset.PostalCode, preset.Country)

	if err != nil {
		return fmt.Errorf("insert address preset: %w", err)
	}

	return nil
}

// ListAddressPresets retrieves all saved address presets, newest first.
func (r *PostgresPresetRepository) ListAddressPresets(ctx context.Context) ([]domain.AddressPreset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, contact_name, company, street1, street2, city, state,
			postal_code, country
		FROM saved_address_presets
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list address presets: %w", err)
	}
	defer rows.Close()

	var presets []domain.AddressPreset
	for rows.Next() {
		var p domain.AddressPreset
		if err := rows.Scan(&p.ID, &p.Name, &p.ContactName, &p.Company,
			&p.Street1, &p.Street2, &p.City, &p.State, &p.PostalCode, &p.Country); err != nil {
			return nil, fmt.Errorf("scan address preset: %w", err)
		}
		presets = append(presets, p)
	}

	return presets, rows.Err()
}

// GetAddressPreset retrieves a saved address preset by ID.
func (r *PostgresPresetRepository) GetAddressPreset(ctx context.Context, id string) (*domain.AddressPreset, error) {
	var p domain.AddressPreset
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, contact_name, company, street1, street2, city, state,
			postal_code, country
		FROM saved_address_presets
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.ContactName, &p.Company,
		&p.Street1, &p.Street2, &p.City, &p.State, &p.PostalCode, &p.Country)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get address preset: %w", err)
	}

	return &p, nil
}

// CreatePackagePreset inserts a new saved package preset.
func (r *PostgresPresetRepository) CreatePackagePreset(ctx context.Context, preset *domain.PackagePreset) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO saved_package_presets (id, name, weight_oz, length_in, width_in, height_in)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, preset.ID, preset.Name, preset.WeightOz, preset.LengthIn, preset.WidthIn, preset.HeightIn)

	if err != nil {
		return fmt.Errorf("insert package preset: %w", err)
	}

	return nil
}

// ListPackagePresets retrieves all saved package presets, newest first.
func (r *PostgresPresetRepository) ListPackagePresets(ctx context.Context) ([]domain.PackagePreset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, weight_oz, length_in, width_in, height_in
		FROM saved_package_presets
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list package presets: %w", err)
	}
	defer rows.Close()

	var presets []domain.PackagePreset
	for rows.Next() {
		var p domain.PackagePreset
		if err := rows.Scan(&p.ID, &p.Name, &p.WeightOz, &p.LengthIn, &p.WidthIn, &p.HeightIn); err != nil {
			return nil, fmt.Errorf("scan package preset: %w", err)
		}
		presets = append(presets, p)
	}

	return presets, rows.Err()
}

// GetPackagePreset retrieves a saved package preset by ID.
func (r *PostgresPresetRepository) GetPackagePreset(ctx context.Context, id string) (*domain.PackagePreset, error) {
	var p domain.PackagePreset
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, weight_oz, length_in, width_in, height_in
		FROM saved_package_presets
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.WeightOz, &p.LengthIn, &p.WidthIn, &p.HeightIn)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get package preset: %w", err)
	}

	return &p, nil
}
