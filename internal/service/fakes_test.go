package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/repository"
)

// fakeJobRepo is an in-memory JobRepository.
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.ImportJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*domain.ImportJob)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) Get(_ context.Context, id string) (*domain.ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) GetWithCounters(ctx context.Context, id string) (*domain.ImportJob, error) {
	return r.Get(ctx, id)
}

func (r *fakeJobRepo) UpdateStatus(_ context.Context, id string, status domain.ImportStatus, errorSummary *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = status
		job.ErrorSummary = errorSummary
	}
	return nil
}

func (r *fakeJobRepo) UpdateProgress(_ context.Context, id string, done int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.ProgressDone = done
	}
	return nil
}

// fakeShipmentRepo is an in-memory ShipmentRepository.
type fakeShipmentRepo struct {
	mu        sync.Mutex
	shipments map[string]*domain.Shipment
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{shipments: make(map[string]*domain.Shipment)}
}

func (r *fakeShipmentRepo) add(s domain.Shipment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := s
	r.shipments[s.ID] = &copied
}

func (r *fakeShipmentRepo) BulkInsert(_ context.Context, shipments []domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range shipments {
		copied := shipments[i]
		r.shipments[copied.ID] = &copied
	}
	return nil
}

func (r *fakeShipmentRepo) Get(_ context.Context, id string) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shipments[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeShipmentRepo) List(_ context.Context, filter repository.ShipmentFilter) ([]domain.Shipment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Shipment
	for _, s := range r.shipments {
		if filter.ImportJobID != "" && s.ImportJobID != filter.ImportJobID {
			continue
		}
		if filter.ValidationStatus != "" && s.ValidationStatus != filter.ValidationStatus {
			continue
		}
		if filter.HidePurchased && s.LabelStatus == domain.LabelPurchased {
			continue
		}
		out = append(out, *s)
	}
	sortByRow(out)
	return out, len(out), nil
}

func (r *fakeShipmentRepo) ListByIDs(_ context.Context, importJobID string, ids []string) ([]domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Shipment
	for _, id := range ids {
		if s, ok := r.shipments[id]; ok {
			if importJobID != "" && s.ImportJobID != importJobID {
				continue
			}
			out = append(out, *s)
		}
	}
	sortByRow(out)
	return out, nil
}

func (r *fakeShipmentRepo) ListByImport(_ context.Context, importJobID string) ([]domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Shipment
	for _, s := range r.shipments {
		if s.ImportJobID == importJobID {
			out = append(out, *s)
		}
	}
	sortByRow(out)
	return out, nil
}

func (r *fakeShipmentRepo) Update(_ context.Context, shipment *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *shipment
	r.shipments[shipment.ID] = &copied
	return nil
}

func (r *fakeShipmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shipments, id)
	return nil
}

func (r *fakeShipmentRepo) BulkDelete(_ context.Context, importJobID string, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if s, ok := r.shipments[id]; ok && s.ImportJobID == importJobID && s.LabelStatus != domain.LabelPurchased {
			delete(r.shipments, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeShipmentRepo) BulkApplyAddress(_ context.Context, importJobID string, ids []string, preset domain.AddressPreset) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, id := range ids {
		if s, ok := r.shipments[id]; ok && s.ImportJobID == importJobID {
			s.FromName = preset.ContactName
			s.FromCompany = preset.Company
			s.FromStreet1 = preset.Street1
			s.FromStreet2 = preset.Street2
			s.FromCity = preset.City
			s.FromState = preset.State
			s.FromPostalCode = preset.PostalCode
			s.FromCountry = preset.Country
			updated++
		}
	}
	return updated, nil
}

func (r *fakeShipmentRepo) BulkApplyPackage(_ context.Context, importJobID string, ids []string, preset domain.PackagePreset) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, id := range ids {
		if s, ok := r.shipments[id]; ok && s.ImportJobID == importJobID {
			weight := preset.WeightOz
			s.WeightOz = &weight
			s.LengthIn = preset.LengthIn
			s.WidthIn = preset.WidthIn
			s.HeightIn = preset.HeightIn
			updated++
		}
	}
	return updated, nil
}

func (r *fakeShipmentRepo) SetServiceSelections(_ context.Context, selections []repository.ServiceSelection) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, sel := range selections {
		if s, ok := r.shipments[sel.ShipmentID]; ok {
			s.SelectedService = sel.Service
			s.SelectedServicePriceCents = sel.PriceCents
			updated++
		}
	}
	return updated, nil
}

func (r *fakeShipmentRepo) SetValidationResults(_ context.Context, updates []repository.ValidationUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		if s, ok := r.shipments[u.ShipmentID]; ok {
			s.ValidationStatus = u.Status
			s.ValidationErrors = u.Errors
		}
	}
	return nil
}

func (r *fakeShipmentRepo) SetVerificationStatuses(_ context.Context, updates []repository.VerificationUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, u := range updates {
		if s, ok := r.shipments[u.ShipmentID]; ok {
			s.AddressVerificationStatus = u.Status
			updated++
		}
	}
	return updated, nil
}

func (r *fakeShipmentRepo) MarkPurchased(_ context.Context, updates []repository.LabelUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, u := range updates {
		if s, ok := r.shipments[u.ShipmentID]; ok {
			s.LabelStatus = domain.LabelPurchased
			url := u.LabelURL
			s.LabelURL = &url
			updated++
		}
	}
	return updated, nil
}

func sortByRow(shipments []domain.Shipment) {
	sort.Slice(shipments, func(i, j int) bool {
		return shipments[i].RowNumber < shipments[j].RowNumber
	})
}

// fakePresetRepo is an in-memory PresetRepository.
type fakePresetRepo struct {
	mu        sync.Mutex
	addresses map[string]*domain.AddressPreset
	packages  map[string]*domain.PackagePreset
}

func newFakePresetRepo() *fakePresetRepo {
	return &fakePresetRepo{
		addresses: make(map[string]*domain.AddressPreset),
		packages:  make(map[string]*domain.PackagePreset),
	}
}

func (r *fakePresetRepo) CreateAddressPreset(_ context.Context, preset *domain.AddressPreset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *preset
	r.addresses[preset.ID] = &copied
	return nil
}

func (r *fakePresetRepo) ListAddressPresets(_ context.Context) ([]domain.AddressPreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AddressPreset
	for _, p := range r.addresses {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePresetRepo) GetAddressPreset(_ context.Context, id string) (*domain.AddressPreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.addresses[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePresetRepo) CreatePackagePreset(_ context.Context, preset *domain.PackagePreset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *preset
	r.packages[preset.ID] = &copied
	return nil
}

func (r *fakePresetRepo) ListPackagePresets(_ context.Context) ([]domain.PackagePreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PackagePreset
	for _, p := range r.packages {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePresetRepo) GetPackagePreset(_ context.Context, id string) (*domain.PackagePreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.packages[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}
