package domain

// Quote is an ephemeral carrier-service price offer for one shipment.
// Quotes are never persisted; they are recomputed on request.
type Quote struct {
	Service    string `json:"service"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
}

// ShipmentQuotes pairs a shipment with its available quotes.
type ShipmentQuotes struct {
	ShipmentID string  `json:"shipment_id"`
	Quotes     []Quote `json:"quotes"`
}

// QuoteSet is the response body of a shipping quote request.
type QuoteSet struct {
	Results []ShipmentQuotes `json:"results"`
}

// ByShipment indexes the quote set by shipment id.
func (q *QuoteSet) ByShipment() map[string][]Quote {
	out := make(map[string][]Quote, len(q.Results))
	for _, r := range q.Results {
		out[r.ShipmentID] = r.Quotes
	}
	return out
}

// Cheapest returns the lowest-priced quote, or nil for an empty slice.
func Cheapest(quotes []Quote) *Quote {
	var best *Quote
	for i := range quotes {
		if best == nil || quotes[i].PriceCents < best.PriceCents {
			best = &quotes[i]
		}
	}
	return best
}
