package service

import (
	"context"
	"math"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/repository"
)

// serviceRate defines the flat-rate pricing for one carrier service:
// a base price plus a per-ounce surcharge, both in cents.
type serviceRate struct {
	code       string
	name       string
	baseCents  int
	perOzCents int
}

var serviceRates = []serviceRate{
	{code: "priority_mail", name: "Priority Mail", baseCents: 500, perOzCents: 10},
	{code: "ground_shipping", name: "Ground Shipping", baseCents: 250, perOzCents: 5},
}

// KnownService reports whether a carrier service code exists in the rate table.
func KnownService(code string) bool {
	for _, r := range serviceRates {
		if r.code == code {
			return true
		}
	}
	return false
}

// QuoteService computes carrier-service price quotes for shipments.
type QuoteService struct {
	shipmentRepo repository.ShipmentRepository
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(shipmentRepo repository.ShipmentRepository) *QuoteService {
	return &QuoteService{shipmentRepo: shipmentRepo}
}

// QuoteForImport returns quotes for every shipment of an import job.
func (s *QuoteService) QuoteForImport(ctx context.Context, importJobID string) (*domain.QuoteSet, error) {
	shipments, err := s.shipmentRepo.ListByImport(ctx, importJobID)
	if err != nil {
		return nil, err
	}
	return quoteAll(shipments), nil
}

// QuoteForShipments returns quotes for the named shipments.
func (s *QuoteService) QuoteForShipments(ctx context.Context, ids []string) (*domain.QuoteSet, error) {
	shipments, err := s.shipmentRepo.ListByIDs(ctx, "", ids)
	if err != nil {
		return nil, err
	}
	return quoteAll(shipments), nil
}

func quoteAll(shipments []domain.Shipment) *domain.QuoteSet {
	set := &domain.QuoteSet{Results: make([]domain.ShipmentQuotes, 0, len(shipments))}
	for i := range shipments {
		set.Results = append(set.Results, domain.ShipmentQuotes{
			ShipmentID: shipments[i].ID,
			Quotes:     QuoteShipment(&shipments[i]),
		})
	}
	return set
}

// QuoteShipment prices every known service for one shipment. A missing or
// non-positive weight yields no quotes at all.
func QuoteShipment(s *domain.Shipment) []domain.Quote {
	if s.WeightOz == nil || *s.WeightOz <= 0 {
		return []domain.Quote{}
	}

	ounces := int(math.Ceil(*s.WeightOz))
	quotes := make([]domain.Quote, 0, len(serviceRates))
	for _, r := range serviceRates {
		quotes = append(quotes, domain.Quote{
			Service:    r.code,
			Name:       r.name,
			PriceCents: r.baseCents + r.perOzCents*ounces,
		})
	}
	return quotes
}

// PriceFor computes the price of one service for a shipment, or nil when
// the service is unknown or the shipment has no usable weight.
func PriceFor(s *domain.Shipment, serviceCode string) *int {
	for _, q := range QuoteShipment(s) {
		if q.Service == serviceCode {
			price := q.PriceCents
			return &price
		}
	}
	return nil
}
