// Package aggregate derives the wizard's decision inputs from the job
// and shipment read models. Nothing here hits the network; everything
// is recomputed from the latest snapshots.
package aggregate

import "github.com/elvongray/shipping-labels/internal/domain"

// Summary is one consistent set of derived counts. Server-side job
// counters cover the whole import and are preferred; when absent the
// counts fall back to the visible page and PageLocal is set.
type Summary struct {
	ReadyCount          int
	NeedsInfoCount      int
	InvalidCount        int
	MissingServiceCount int
	PurchasableCount    int
	TotalCents          int
	PageLocal           bool
}

// Compute builds a Summary from the last known job and shipment page.
func Compute(job *domain.ImportJob, shipments []domain.Shipment) Summary {
	s := Summary{TotalCents: totalCents(shipments)}

	if job != nil && job.ReadyCount != nil {
		s.ReadyCount = *job.ReadyCount
		s.NeedsInfoCount = intOrZero(job.NeedsInfoCount)
		s.InvalidCount = intOrZero(job.InvalidCount)
		s.PurchasableCount = intOrZero(job.PurchasableCount)
		s.MissingServiceCount = s.ReadyCount - intOrZero(job.ReadyWithServiceCount)
		return s
	}

	s.PageLocal = true
	for i := range shipments {
		sh := &shipments[i]
		switch sh.ValidationStatus {
		case domain.ValidationReady:
			s.ReadyCount++
			if !sh.HasService() {
				s.MissingServiceCount++
			}
		case domain.ValidationNeedsInfo:
			s.NeedsInfoCount++
		case domain.ValidationInvalid:
			s.InvalidCount++
		}
		if sh.Purchasable() && sh.LabelStatus != domain.LabelPurchased {
			s.PurchasableCount++
		}
	}
	return s
}

// totalCents sums the selected service prices of shipments that still
// qualify for purchase.
func totalCents(shipments []domain.Shipment) int {
	total := 0
	for i := range shipments {
		sh := &shipments[i]
		if !sh.Purchasable() || sh.LabelStatus == domain.LabelPurchased {
			continue
		}
		if sh.SelectedServicePriceCents != nil {
			total += *sh.SelectedServicePriceCents
		}
	}
	return total
}

// CanCheckout reports whether the shipping step may advance to
// checkout: at least one shipment is fully purchasable.
func (s Summary) CanCheckout() bool {
	return s.PurchasableCount > 0
}

// CanPurchase reports whether the purchase button is armed.
func (s Summary) CanPurchase(agreedTerms bool) bool {
	return s.CanCheckout() && agreedTerms
}

// ProgressPercent converts job progress into a 0-100 integer. An
// unknown or zero total reports 0, never a division error.
func ProgressPercent(job *domain.ImportJob) int {
	if job == nil || job.ProgressTotal <= 0 {
		return 0
	}
	pct := job.ProgressDone * 100 / job.ProgressTotal
	if pct > 100 {
		pct = 100
	}
	return pct
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
