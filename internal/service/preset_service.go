package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/repository"
	"github.com/elvongray/shipping-labels/internal/validator"
)

// PresetService manages saved address and package presets.
type PresetService struct {
	presetRepo repository.PresetRepository
	validator  *validator.Validator
}

// NewPresetService creates a new PresetService.
func NewPresetService(presetRepo repository.PresetRepository, v *validator.Validator) *PresetService {
	return &PresetService{presetRepo: presetRepo, validator: v}
}

// CreateAddressPreset validates and stores a new address preset.
func (s *PresetService) CreateAddressPreset(ctx context.Context, preset *domain.AddressPreset) error {
	if preset.Country == "" {
		preset.Country = "US"
	}
	if err := s.validator.ValidateAddressPreset(preset); err != nil {
		return err
	}
	preset.ID = uuid.New().String()
	return s.presetRepo.CreateAddressPreset(ctx, preset)
}

// ListAddressPresets returns all saved address presets.
func (s *PresetService) ListAddressPresets(ctx context.Context) ([]domain.AddressPreset, error) {
	return s.presetRepo.ListAddressPresets(ctx)
}

// CreatePackagePreset validates and stores a new package preset.
// WeightOz must already be the normalized total-ounce value.
func (s *PresetService) CreatePackagePreset(ctx context.Context, preset *domain.PackagePreset) error {
	if err := s.validator.ValidatePackagePreset(preset); err != nil {
		return err
	}
	preset.ID = uuid.New().String()
	return s.presetRepo.CreatePackagePreset(ctx, preset)
}

// ListPackagePresets returns all saved package presets.
func (s *PresetService) ListPackagePresets(ctx context.Context) ([]domain.PackagePreset, error) {
	return s.presetRepo.ListPackagePresets(ctx)
}
