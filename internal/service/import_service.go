package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/logger"
	"github.com/elvongray/shipping-labels/internal/metrics"
	"github.com/elvongray/shipping-labels/internal/repository"
	"github.com/elvongray/shipping-labels/internal/validator"
)

const (
	// DefaultImportTimeout bounds processing of a single import job.
	DefaultImportTimeout = 10 * time.Minute

	// QueueSendTimeout is the timeout for sending tasks to the queue
	QueueSendTimeout = 5 * time.Second

	// orderFileHeaderRows is the number of header rows in an order CSV.
	// Row one carries group labels, row two the column names.
	orderFileHeaderRows = 2

	// orderFileColumns is the expected column count of an order CSV data row.
	orderFileColumns = 23
)

// ErrNoDataRows is returned when an uploaded file contains no order rows.
var ErrNoDataRows = errors.New("file contains no order rows")

// Order CSV column positions.
const (
	colFromFirstName = 0
	colFromLastName  = 1
	colFromStreet1   = 2
	colFromStreet2   = 3
	colFromCity      = 4
	colFromPostal    = 5
	colFromState     = 6
	colToFirstName   = 7
	colToLastName    = 8
	colToStreet1     = 9
	colToStreet2     = 10
	colToCity        = 11
	colToPostal      = 12
	colToState       = 13
	colWeightLbs     = 14
	colWeightOz      = 15
	colLengthIn      = 16
	colWidthIn       = 17
	colHeightIn      = 18
	colOrderNumber   = 21
	colSKU           = 22
)

// ImportService owns the import pipeline: it parses uploaded order files,
// persists jobs and shipments, and runs validation and address
// verification on a background worker pool.
type ImportService struct {
	jobRepo      repository.JobRepository
	shipmentRepo repository.ShipmentRepository
	verifier     AddressVerifier

	timeout time.Duration

	jobQueue chan importTask
	stopChan chan struct{}
	wg       sync.WaitGroup
	closed   bool
	mu       sync.RWMutex
}

type importTask struct {
	jobID     string
	requestID string
}

// NewImportService creates a new ImportService with a worker pool.
func NewImportService(
	jobRepo repository.JobRepository,
	shipmentRepo repository.ShipmentRepository,
	verifier AddressVerifier,
	workerCount int,
) *ImportService {
	s := &ImportService{
		jobRepo:      jobRepo,
		shipmentRepo: shipmentRepo,
		verifier:     verifier,
		timeout:      DefaultImportTimeout,
		jobQueue:     make(chan importTask, workerCount*2),
		stopChan:     make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

func (s *ImportService) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.jobQueue:
			if !ok {
				return
			}
			s.processImport(task)
		case <-s.stopChan:
			return
		}
	}
}

// Close shuts down the worker pool immediately.
func (s *ImportService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	close(s.stopChan)
	close(s.jobQueue)
	s.wg.Wait()
}

// StartImport parses an uploaded order file, creates the import job and its
// shipments, and queues the job for background validation. The returned job
// is PENDING; callers observe progress by polling.
func (s *ImportService) StartImport(ctx context.Context, filename, requestID string, reader io.Reader) (*domain.ImportJob, error) {
	log := logger.WithRequestID(requestID)
	log.Info("starting import", slog.String("filename", filename))

	shipments, skipped, err := parseOrderFile(reader)
	if err != nil {
		return nil, err
	}
	if len(shipments) == 0 {
		return nil, ErrNoDataRows
	}

	now := time.Now()
	job := &domain.ImportJob{
		ID:               uuid.New().String(),
		OriginalFilename: filename,
		Status:           domain.ImportStatusPending,
		ProgressTotal:    len(shipments),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if skipped > 0 {
		job.Meta = map[string]any{"skipped_rows": skipped}
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}

	for i := range shipments {
		shipments[i].ImportJobID = job.ID
	}
	if err := s.shipmentRepo.BulkInsert(ctx, shipments); err != nil {
		summary := "failed to store shipments"
		if updErr := s.jobRepo.UpdateStatus(ctx, job.ID, domain.ImportStatusFailed, &summary); updErr != nil {
			log.Error("failed to mark job failed", slog.String("error", updErr.Error()))
		}
		return nil, fmt.Errorf("insert shipments: %w", err)
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, fmt.Errorf("import service is shutting down")
	}
	s.mu.RUnlock()

	task := importTask{jobID: job.ID, requestID: requestID}
	select {
	case s.jobQueue <- task:
		log.Info("import job queued",
			slog.String("import_job_id", job.ID),
			slog.Int("rows", len(shipments)),
			slog.Int("skipped", skipped))
	case <-time.After(QueueSendTimeout):
		log.Warn("queue full, deferring import job", slog.String("import_job_id", job.ID))
		go func() {
			s.mu.RLock()
			if s.closed {
				s.mu.RUnlock()
				return
			}
			s.mu.RUnlock()

			select {
			case s.jobQueue <- task:
			case <-s.stopChan:
			}
		}()
	}

	return job, nil
}

// parseOrderFile reads an order CSV: two header rows followed by data rows.
// Rows with an unexpected column count are skipped, not fatal.
func parseOrderFile(reader io.Reader) ([]domain.Shipment, int, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	var shipments []domain.Shipment
	skipped := 0
	rowNum := 0

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read order file: %w", err)
		}

		rowNum++
		if rowNum <= orderFileHeaderRows {
			continue
		}
		if len(record) != orderFileColumns {
			skipped++
			continue
		}

		shipment, err := shipmentFromRecord(record, rowNum-orderFileHeaderRows)
		if err != nil {
			skipped++
			continue
		}
		shipments = append(shipments, shipment)
	}

	return shipments, skipped, nil
}

func shipmentFromRecord(record []string, rowNumber int) (domain.Shipment, error) {
	field := func(i int) string { return strings.TrimSpace(record[i]) }

	weight, err := validator.NormalizeWeight(validator.WeightInput{
		Pounds: field(colWeightLbs),
		Ounces: field(colWeightOz),
	})
	if err != nil {
		return domain.Shipment{}, err
	}

	length, err := validator.ParseMeasurement(field(colLengthIn))
	if err != nil {
		return domain.Shipment{}, err
	}
	width, err := validator.ParseMeasurement(field(colWidthIn))
	if err != nil {
		return domain.Shipment{}, err
	}
	height, err := validator.ParseMeasurement(field(colHeightIn))
	if err != nil {
		return domain.Shipment{}, err
	}

	return domain.Shipment{
		ID:                  uuid.New().String(),
		RowNumber:           rowNumber,
		ExternalOrderNumber: field(colOrderNumber),
		SKU:                 field(colSKU),

		FromName:       joinName(field(colFromFirstName), field(colFromLastName)),
		FromStreet1:    field(colFromStreet1),
		FromStreet2:    field(colFromStreet2),
		FromCity:       field(colFromCity),
		FromState:      field(colFromState),
		FromPostalCode: field(colFromPostal),
		FromCountry:    "US",

		ToName:       joinName(field(colToFirstName), field(colToLastName)),
		ToStreet1:    field(colToStreet1),
		ToStreet2:    field(colToStreet2),
		ToCity:       field(colToCity),
		ToState:      field(colToState),
		ToPostalCode: field(colToPostal),
		ToCountry:    "US",

		WeightOz: weight,
		LengthIn: length,
		WidthIn:  width,
		HeightIn: height,

		ValidationStatus:          domain.ValidationNeedsInfo,
		AddressVerificationStatus: domain.VerificationNotStarted,
		LabelStatus:               domain.LabelNotPurchased,
	}, nil
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func (s *ImportService) processImport(task importTask) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log := logger.WithImportID(task.jobID)
	startTime := time.Now()

	metrics.StartImport()
	defer metrics.EndImport()

	log.Info("processing import job", slog.String("request_id", task.requestID))

	if err := s.jobRepo.UpdateStatus(ctx, task.jobID, domain.ImportStatusProcessing, nil); err != nil {
		log.Error("failed to mark job processing", slog.String("error", err.Error()))
	}

	shipments, err := s.shipmentRepo.ListByImport(ctx, task.jobID)
	if err != nil {
		s.failJob(ctx, task.jobID, "failed to load shipments for processing")
		return
	}

	readyCount, problemCount, err := s.validateRows(ctx, task.jobID, shipments)
	if err != nil {
		s.failJob(ctx, task.jobID, "validation failed")
		return
	}

	if err := s.verifyAddresses(ctx, shipments); err != nil {
		s.failJob(ctx, task.jobID, "address verification failed")
		return
	}

	if err := s.jobRepo.UpdateStatus(ctx, task.jobID, domain.ImportStatusCompleted, nil); err != nil {
		log.Error("failed to mark job completed", slog.String("error", err.Error()))
	}

	elapsed := time.Since(startTime)
	metrics.ObserveImportCompletion(string(domain.ImportStatusCompleted), elapsed.Seconds(), readyCount, problemCount)

	log.Info("import job completed",
		slog.Int("total", len(shipments)),
		slog.Int("ready", readyCount),
		slog.Int("needs_attention", problemCount),
		slog.Duration("elapsed", elapsed.Round(time.Millisecond)))
}

// validateRows recomputes validation for every shipment, updating job
// progress as rows complete so polling clients see movement.
func (s *ImportService) validateRows(ctx context.Context, jobID string, shipments []domain.Shipment) (int, int, error) {
	updates := make([]repository.ValidationUpdate, 0, len(shipments))
	readyCount, problemCount := 0, 0

	for i := range shipments {
		status, fieldErrors := ValidateShipment(&shipments[i])
		shipments[i].ValidationStatus = status
		shipments[i].ValidationErrors = fieldErrors

		if status == domain.ValidationReady {
			readyCount++
		} else {
			problemCount++
		}

		updates = append(updates, repository.ValidationUpdate{
			ShipmentID: shipments[i].ID,
			Status:     status,
			Errors:     fieldErrors,
		})

		if err := s.jobRepo.UpdateProgress(ctx, jobID, i+1); err != nil {
			return 0, 0, fmt.Errorf("update progress: %w", err)
		}
	}

	if err := s.shipmentRepo.SetValidationResults(ctx, updates); err != nil {
		return 0, 0, fmt.Errorf("store validation results: %w", err)
	}

	return readyCount, problemCount, nil
}

// verifyAddresses runs address verification for rows that passed validation.
func (s *ImportService) verifyAddresses(ctx context.Context, shipments []domain.Shipment) error {
	updates := make([]repository.VerificationUpdate, 0, len(shipments))

	for i := range shipments {
		if shipments[i].ValidationStatus != domain.ValidationReady {
			continue
		}

		status, err := s.verifier.Verify(ctx, &shipments[i])
		if err != nil {
			status = domain.VerificationFailed
		}
		updates = append(updates, repository.VerificationUpdate{
			ShipmentID: shipments[i].ID,
			Status:     status,
		})
	}

	if _, err := s.shipmentRepo.SetVerificationStatuses(ctx, updates); err != nil {
		return fmt.Errorf("store verification statuses: %w", err)
	}

	return nil
}

func (s *ImportService) failJob(ctx context.Context, jobID, summary string) {
	log := logger.WithImportID(jobID)
	log.Error("import job failed", slog.String("summary", summary))

	if err := s.jobRepo.UpdateStatus(ctx, jobID, domain.ImportStatusFailed, &summary); err != nil {
		log.Error("failed to mark job failed", slog.String("error", err.Error()))
	}
	metrics.ImportsTotal.WithLabelValues(string(domain.ImportStatusFailed)).Inc()
}

// GetJob retrieves an import job with its aggregate counters.
func (s *ImportService) GetJob(ctx context.Context, id string) (*domain.ImportJob, error) {
	job, err := s.jobRepo.GetWithCounters(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}
