package domain

// AddressPreset is a reusable ship-from address template, applied to
// shipments by reference through a bulk action.
type AddressPreset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Company     string `json:"company,omitempty"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country,omitempty"`
}

// PackagePreset is a reusable package dimensions/weight template.
// WeightOz always holds the normalized total in ounces.
type PackagePreset struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	WeightOz float64  `json:"weight_oz"`
	LengthIn *float64 `json:"length_in,omitempty"`
	WidthIn  *float64 `json:"width_in,omitempty"`
	HeightIn *float64 `json:"height_in,omitempty"`
}
