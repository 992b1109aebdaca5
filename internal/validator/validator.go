package validator

import (
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/elvongray/shipping-labels/internal/domain"
)

var stateRegex = regexp.MustCompile(`^[A-Za-z]{2}$`)

// Validator provides client-side validation for user-entered input.
// Validation failures block submission locally and never reach the network.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAddressPreset validates an address preset before creation.
func (v *Validator) ValidateAddressPreset(p *domain.AddressPreset) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name,
			validation.Required.Error("name_required"),
		),
		validation.Field(&p.Street1,
			validation.Required.Error("street1_required"),
		),
		validation.Field(&p.City,
			validation.Required.Error("city_required"),
		),
		validation.Field(&p.State,
			validation.Required.Error("state_required"),
			validation.Match(stateRegex).Error("invalid_state_format"),
		),
		validation.Field(&p.PostalCode,
			validation.Required.Error("postal_code_required"),
		),
	)
}

// ValidatePackagePreset validates a package preset before creation.
// WeightOz must already be the normalized total-ounce value.
func (v *Validator) ValidatePackagePreset(p *domain.PackagePreset) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name,
			validation.Required.Error("name_required"),
		),
		validation.Field(&p.WeightOz,
			validation.Required.Error("weight_required"),
			validation.Min(0.01).Error("weight_must_be_positive"),
		),
	)
}

// WeightInput holds the raw pound/ounce strings as entered by the user.
type WeightInput struct {
	Pounds string
	Ounces string
}

// ValidateWeightInput rejects non-numeric or negative measurements.
// Empty strings are allowed and treated as zero.
func (v *Validator) ValidateWeightInput(in WeightInput) error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Pounds, validation.By(nonNegativeNumber)),
		validation.Field(&in.Ounces, validation.By(nonNegativeNumber)),
	)
}

func nonNegativeNumber(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return validation.NewError("validation_not_a_number", "must be a number")
	}
	if f < 0 {
		return validation.NewError("validation_negative", "must not be negative")
	}
	return nil
}

// NormalizeWeight converts pound/ounce input into a single total-ounce
// value: total = pounds*16 + ounces. A zero total becomes nil, matching
// the falsy-total-becomes-null contract of the package edit forms.
func NormalizeWeight(in WeightInput) (*float64, error) {
	if err := (&Validator{}).ValidateWeightInput(in); err != nil {
		return nil, err
	}
	pounds := parseOrZero(in.Pounds)
	ounces := parseOrZero(in.Ounces)
	total := pounds*16 + ounces
	if total == 0 {
		return nil, nil
	}
	return &total, nil
}

// ParseMeasurement parses an optional dimension field. Empty input
// yields nil; non-numeric input is a validation error.
func ParseMeasurement(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, validation.NewError("validation_not_a_number", "must be a number")
	}
	if f < 0 {
		return nil, validation.NewError("validation_negative", "must not be negative")
	}
	return &f, nil
}

func parseOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
