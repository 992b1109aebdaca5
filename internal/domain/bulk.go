package domain

// BulkAction identifies one operation applied to many shipments at once.
type BulkAction string

const (
	BulkApplyAddressPreset BulkAction = "apply_saved_address"
	BulkApplyPackagePreset BulkAction = "apply_saved_package"
	BulkDelete             BulkAction = "delete"
	BulkSetShippingService BulkAction = "set_shipping_service"
	BulkVerifyAddresses    BulkAction = "verify_addresses"
)

// IsValidBulkAction checks if a bulk action is supported.
func IsValidBulkAction(action BulkAction) bool {
	switch action {
	case BulkApplyAddressPreset, BulkApplyPackagePreset, BulkDelete,
		BulkSetShippingService, BulkVerifyAddresses:
		return true
	}
	return false
}

// BulkRequest is the body of a bulk shipment mutation: one action tag,
// the full target id list, and an action-specific payload.
type BulkRequest struct {
	Action      BulkAction     `json:"action"`
	ShipmentIDs []string       `json:"shipment_ids"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// BulkError describes a whole-batch failure reason.
type BulkError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkResult reports the outcome of a bulk action. The client treats the
// batch as all-or-nothing and only inspects it for success/failure.
type BulkResult struct {
	UpdatedCount int         `json:"updated_count"`
	DeletedCount int         `json:"deleted_count"`
	Errors       []BulkError `json:"errors,omitempty"`
}
