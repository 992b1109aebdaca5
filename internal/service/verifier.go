package service

import (
	"context"
	"strings"

	"github.com/elvongray/shipping-labels/internal/domain"
)

// AddressVerifier checks deliverability of a shipment's destination address.
type AddressVerifier interface {
	Verify(ctx context.Context, s *domain.Shipment) (domain.AddressVerificationStatus, error)
}

// HeuristicVerifier is a deterministic local verifier used in place of a
// carrier address API. It flags obviously undeliverable addresses and
// normalizes addresses that carry a secondary unit in the street line.
type HeuristicVerifier struct{}

// NewHeuristicVerifier creates a new HeuristicVerifier.
func NewHeuristicVerifier() *HeuristicVerifier {
	return &HeuristicVerifier{}
}

var secondaryUnitMarkers = []string{"apt", "suite", "ste", "unit", "#"}

// Verify returns INVALID for malformed postal codes, CORRECTED when the
// street line embeds a secondary unit that belongs in street2, and VALID
// otherwise.
func (v *HeuristicVerifier) Verify(_ context.Context, s *domain.Shipment) (domain.AddressVerificationStatus, error) {
	if !postalPattern.MatchString(s.ToPostalCode) {
		return domain.VerificationInvalid, nil
	}

	if s.ToStreet2 == "" {
		street := strings.ToLower(s.ToStreet1)
		for _, marker := range secondaryUnitMarkers {
			if strings.Contains(street, marker) {
				return domain.VerificationCorrected, nil
			}
		}
	}

	return domain.VerificationValid, nil
}
