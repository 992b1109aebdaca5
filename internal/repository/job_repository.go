package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elvongray/shipping-labels/internal/domain"
)

// PostgresJobRepository implements JobRepository using PostgreSQL.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository creates a new PostgresJobRepository.
func NewPostgresJobRepository(pool *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{pool: pool}
}

// Create inserts a new import job.
func (r *PostgresJobRepository) Create(ctx context.Context, job *domain.ImportJob) error {
	meta, err := json.Marshal(job.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO import_jobs (id, original_filename, status, progress_total,
			progress_done, error_summary, meta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, job.ID, job.OriginalFilename, job.Status, job.ProgressTotal,
		job.ProgressDone, job.ErrorSummary, meta, job.CreatedAt, job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("insert import job: %w", err)
	}

	return nil
}

// Get retrieves an import job by ID without aggregate counters.
func (r *PostgresJobRepository) Get(ctx context.Context, id string) (*domain.ImportJob, error) {
	var job domain.ImportJob
	var meta []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, original_filename, status, progress_total, progress_done,
			error_summary, meta, created_at, updated_at
		FROM import_jobs
		WHERE id = $1
	`, id).Scan(&job.ID, &job.OriginalFilename, &job.Status, &job.ProgressTotal,
		&job.ProgressDone, &job.ErrorSummary, &meta, &job.CreatedAt, &job.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get import job: %w", err)
	}

	if meta != nil {
		if err := json.Unmarshal(meta, &job.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
	}

	return &job, nil
}

// GetWithCounters retrieves an import job together with its aggregate
// shipment counters, computed in a single query over the job's shipments.
func (r *PostgresJobRepository) GetWithCounters(ctx context.Context, id string) (*domain.ImportJob, error) {
	var job domain.ImportJob
	var meta []byte
	var ready, needsInfo, invalid, unverified, withService, purchasable int

	err := r.pool.QueryRow(ctx, `
		SELECT j.id, j.original_filename, j.status, j.progress_total, j.progress_done,
			j.error_summary, j.meta, j.created_at, j.updated_at,
			COUNT(s.id) FILTER (WHERE s.validation_status = 'READY'),
			COUNT(s.id) FILTER (WHERE s.validation_status = 'NEEDS_INFO'),
			COUNT(s.id) FILTER (WHERE s.validation_status = 'INVALID'),
			COUNT(s.id) FILTER (WHERE s.validation_status = 'READY'
				AND s.address_verification_status NOT IN ('VALID', 'CORRECTED')),
			COUNT(s.id) FILTER (WHERE s.validation_status = 'READY'
				AND s.selected_service <> ''),
			COUNT(s.id) FILTER (WHERE s.validation_status = 'READY'
				AND s.selected_service <> ''
				AND s.address_verification_status IN ('VALID', 'CORRECTED'))
		FROM import_jobs j
		LEFT JOIN shipments s ON s.import_job_id = j.id
		WHERE j.id = $1
		GROUP BY j.id
	`, id).Scan(&job.ID, &job.OriginalFilename, &job.Status, &job.ProgressTotal,
		&job.ProgressDone, &job.ErrorSummary, &meta, &job.CreatedAt, &job.UpdatedAt,
		&ready, &needsInfo, &invalid, &unverified, &withService, &purchasable)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get import job with counters: %w", err)
	}

	if meta != nil {
		if err := json.Unmarshal(meta, &job.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
	}

	job.ReadyCount = &ready
	job.NeedsInfoCount = &needsInfo
	job.InvalidCount = &invalid
	job.AddressUnverifiedCount = &unverified
	job.ReadyWithServiceCount = &withService
	job.PurchasableCount = &purchasable

	return &job, nil
}

// UpdateStatus moves an import job to a new lifecycle status.
func (r *PostgresJobRepository) UpdateStatus(ctx context.Context, id string, status domain.ImportStatus, errorSummary *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $2, error_summary = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, errorSummary)

	if err != nil {
		return fmt.Errorf("update import job status: %w", err)
	}

	return nil
}

// UpdateProgress records how many rows have been processed so far.
func (r *PostgresJobRepository) UpdateProgress(ctx context.Context, id string, done int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE import_jobs
		SET progress_done = $2, updated_at = NOW()
		WHERE id = $1
	`, id, done)

	if err != nil {
		return fmt.Errorf("update import job progress: %w", err)
	}

	return nil
}
