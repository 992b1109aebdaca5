package service

import "errors"

// Sentinel errors mapped to API error codes by the handler layer.
var (
	ErrJobNotFound      = errors.New("import job not found")
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrPurchasedLocked  = errors.New("shipment has a purchased label and cannot be modified")
	ErrUnknownAction    = errors.New("unknown bulk action")
	ErrInvalidPayload   = errors.New("invalid bulk action payload")
	ErrTermsRequired    = errors.New("terms of service must be accepted")
	ErrEmptyImport      = errors.New("import has no shipments")
	ErrNotReady         = errors.New("no purchasable shipments in import")
)
