package domain

import "time"

// ImportStatus represents the lifecycle status of an import job.
// Transitions only move forward: PENDING -> PROCESSING -> COMPLETED or FAILED.
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "PENDING"
	ImportStatusProcessing ImportStatus = "PROCESSING"
	ImportStatusCompleted  ImportStatus = "COMPLETED"
	ImportStatusFailed     ImportStatus = "FAILED"
)

// IsTerminal reports whether the status will never change again.
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// InFlight reports whether background processing is still running.
func (s ImportStatus) InFlight() bool {
	return s == ImportStatusPending || s == ImportStatusProcessing
}

// ImportJob represents one uploaded CSV and its processing lifecycle.
// The server is the only writer; clients observe it through polling.
type ImportJob struct {
	ID               string         `json:"id"`
	OriginalFilename string         `json:"original_filename"`
	Status           ImportStatus   `json:"status"`
	ProgressTotal    int            `json:"progress_total"`
	ProgressDone     int            `json:"progress_done"`
	ErrorSummary     *string        `json:"error_summary,omitempty"`
	Meta             map[string]any `json:"meta,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Aggregate counters computed server-side over the whole import.
	// Optional: absent on the upload response, present on job detail.
	ReadyCount             *int `json:"ready_count,omitempty"`
	NeedsInfoCount         *int `json:"needs_info_count,omitempty"`
	InvalidCount           *int `json:"invalid_count,omitempty"`
	AddressUnverifiedCount *int `json:"address_unverified_count,omitempty"`
	ReadyWithServiceCount  *int `json:"ready_with_service_count,omitempty"`
	PurchasableCount       *int `json:"purchasable_count,omitempty"`
}

// PurchaseResult is the response to a label purchase request.
type PurchaseResult struct {
	PurchaseID       string `json:"purchase_id"`
	LabelFormat      string `json:"label_format,omitempty"`
	LabelDownloadURL string `json:"label_download_url"`
	PurchasedCount   int    `json:"purchased_count"`
	SkippedCount     int    `json:"skipped_count"`
}

// Label formats accepted by the purchase endpoint.
const (
	LabelFormatLetter = "LETTER"
	LabelFormat4x6    = "LABEL_4X6"
)

// IsValidLabelFormat checks if a label format is supported.
func IsValidLabelFormat(format string) bool {
	return format == LabelFormatLetter || format == LabelFormat4x6
}
