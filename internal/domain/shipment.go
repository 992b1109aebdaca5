package domain

// ValidationStatus is the server-computed readiness of a shipment's data.
type ValidationStatus string

const (
	ValidationNeedsInfo ValidationStatus = "NEEDS_INFO"
	ValidationInvalid   ValidationStatus = "INVALID"
	ValidationReady     ValidationStatus = "READY"
)

// AddressVerificationStatus is the server-computed deliverability confidence.
type AddressVerificationStatus string

const (
	VerificationNotStarted AddressVerificationStatus = "NOT_STARTED"
	VerificationValid      AddressVerificationStatus = "VALID"
	VerificationCorrected  AddressVerificationStatus = "CORRECTED"
	VerificationInvalid    AddressVerificationStatus = "INVALID"
	VerificationFailed     AddressVerificationStatus = "FAILED"
)

// Verified reports whether the address is considered deliverable.
func (s AddressVerificationStatus) Verified() bool {
	return s == VerificationValid || s == VerificationCorrected
}

// LabelStatus tracks label purchase state for a shipment.
type LabelStatus string

const (
	LabelNotPurchased LabelStatus = "NOT_PURCHASED"
	LabelPurchased    LabelStatus = "PURCHASED"
	LabelFailed       LabelStatus = "FAILED"
)

// FieldError describes one invalid or missing field on a shipment row.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Shipment is one parsed order row owned by exactly one import job.
type Shipment struct {
	ID                  string `json:"id"`
	ImportJobID         string `json:"import_job"`
	RowNumber           int    `json:"row_number,omitempty"`
	ExternalOrderNumber string `json:"external_order_number,omitempty"`
	SKU                 string `json:"sku,omitempty"`

	FromName       string `json:"from_name,omitempty"`
	FromCompany    string `json:"from_company,omitempty"`
	FromStreet1    string `json:"from_street1,omitempty"`
	FromStreet2    string `json:"from_street2,omitempty"`
	FromCity       string `json:"from_city,omitempty"`
	FromState      string `json:"from_state,omitempty"`
	FromPostalCode string `json:"from_postal_code,omitempty"`
	FromCountry    string `json:"from_country,omitempty"`

	ToName       string `json:"to_name,omitempty"`
	ToCompany    string `json:"to_company,omitempty"`
	ToStreet1    string `json:"to_street1,omitempty"`
	ToStreet2    string `json:"to_street2,omitempty"`
	ToCity       string `json:"to_city,omitempty"`
	ToState      string `json:"to_state,omitempty"`
	ToPostalCode string `json:"to_postal_code,omitempty"`
	ToCountry    string `json:"to_country,omitempty"`

	WeightOz *float64 `json:"weight_oz,omitempty"`
	LengthIn *float64 `json:"length_in,omitempty"`
	WidthIn  *float64 `json:"width_in,omitempty"`
	HeightIn *float64 `json:"height_in,omitempty"`

	ValidationStatus          ValidationStatus          `json:"validation_status"`
	ValidationErrors          []FieldError              `json:"validation_errors,omitempty"`
	AddressVerificationStatus AddressVerificationStatus `json:"address_verification_status"`

	SelectedService           string `json:"selected_service,omitempty"`
	SelectedServicePriceCents *int   `json:"selected_service_price_cents,omitempty"`

	LabelStatus LabelStatus `json:"label_status,omitempty"`
	LabelURL    *string     `json:"label_url,omitempty"`
}

// HasService reports whether a carrier service has been selected.
func (s *Shipment) HasService() bool {
	return s.SelectedService != ""
}

// Purchasable reports whether the shipment qualifies for label purchase:
// READY, a service selected, and a VALID or CORRECTED address.
func (s *Shipment) Purchasable() bool {
	return s.ValidationStatus == ValidationReady &&
		s.HasService() &&
		s.AddressVerificationStatus.Verified()
}
