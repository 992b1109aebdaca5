package service

import (
	"regexp"

	"github.com/elvongray/shipping-labels/internal/domain"
)

var (
	statePattern  = regexp.MustCompile(`^[A-Za-z]{2}$`)
	postalPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// ValidateShipment recomputes a shipment's validation status from its
// current fields. Missing required fields yield NEEDS_INFO; present but
// malformed values yield INVALID. INVALID wins when both occur.
func ValidateShipment(s *domain.Shipment) (domain.ValidationStatus, []domain.FieldError) {
	var missing, invalid []domain.FieldError

	required := []struct {
		field string
		value string
	}{
		{"to_name", s.ToName},
		{"to_street1", s.ToStreet1},
		{"to_city", s.ToCity},
		{"to_state", s.ToState},
		{"to_postal_code", s.ToPostalCode},
		{"from_street1", s.FromStreet1},
		{"from_city", s.FromCity},
		{"from_state", s.FromState},
		{"from_postal_code", s.FromPostalCode},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, domain.FieldError{
				Field:   r.field,
				Code:    "required",
				Message: "This field is required",
			})
		}
	}

	if s.WeightOz == nil {
		missing = append(missing, domain.FieldError{
			Field:   "weight_oz",
			Code:    "required",
			Message: "Package weight is required",
		})
	} else if *s.WeightOz <= 0 {
		invalid = append(invalid, domain.FieldError{
			Field:   "weight_oz",
			Code:    "invalid",
			Message: "Package weight must be positive",
		})
	}

	if s.ToState != "" && !statePattern.MatchString(s.ToState) {
		invalid = append(invalid, domain.FieldError{
			Field:   "to_state",
			Code:    "invalid",
			Message: "State must be a two-letter code",
		})
	}
	if s.FromState != "" && !statePattern.MatchString(s.FromState) {
		invalid = append(invalid, domain.FieldError{
			Field:   "from_state",
			Code:    "invalid",
			Message: "State must be a two-letter code",
		})
	}
	if s.ToPostalCode != "" && !postalPattern.MatchString(s.ToPostalCode) {
		invalid = append(invalid, domain.FieldError{
			Field:   "to_postal_code",
			Code:    "invalid",
			Message: "Postal code must be a ZIP or ZIP+4",
		})
	}

	if len(invalid) > 0 {
		return domain.ValidationInvalid, append(invalid, missing...)
	}
	if len(missing) > 0 {
		return domain.ValidationNeedsInfo, missing
	}
	return domain.ValidationReady, nil
}
