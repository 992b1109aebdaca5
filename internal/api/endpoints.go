package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/elvongray/shipping-labels/internal/domain"
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ListParams narrows a shipment listing request.
type ListParams struct {
	ImportID      string
	Status        domain.ValidationStatus
	Search        string
	HidePurchased bool
	Page          int
	PageSize      int
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.ImportID != "" {
		q.Set("import", p.ImportID)
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.HidePurchased {
		q.Set("hide_purchased", "true")
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return q
}

// importJobPayload tolerates servers that name the job id import_job_id
// instead of id.
type importJobPayload struct {
	domain.ImportJob
	ImportJobID string `json:"import_job_id"`
}

func (p *importJobPayload) job() *domain.ImportJob {
	job := p.ImportJob
	if job.ID == "" {
		job.ID = p.ImportJobID
	}
	return &job
}

// UploadImport uploads an order CSV and returns the created job.
func (c *Client) UploadImport(ctx context.Context, filename string, file io.Reader) (*domain.ImportJob, error) {
	var payload importJobPayload
	if err := c.upload(ctx, "/imports", filename, file, &payload); err != nil {
		return nil, err
	}
	return payload.job(), nil
}

// GetImport fetches an import job with its aggregate counters.
func (c *Client) GetImport(ctx context.Context, id string) (*domain.ImportJob, error) {
	var payload importJobPayload
	if err := c.do(ctx, http.MethodGet, "/imports/"+id, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.job(), nil
}

// ListShipments fetches one page of shipments.
func (c *Client) ListShipments(ctx context.Context, params ListParams) (*Page[domain.Shipment], error) {
	var page Page[domain.Shipment]
	if err := c.do(ctx, http.MethodGet, "/shipments", params.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PatchShipment applies a partial update to one shipment.
func (c *Client) PatchShipment(ctx context.Context, id string, fields map[string]any) (*domain.Shipment, error) {
	var shipment domain.Shipment
	if err := c.do(ctx, http.MethodPatch, "/shipments/"+id, nil, fields, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}

// DeleteShipment removes one shipment.
func (c *Client) DeleteShipment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/shipments/"+id, nil, nil, nil)
}

// BulkShipments applies one bulk action to many shipments of one
// import. The server ignores ids that belong to a different import.
func (c *Client) BulkShipments(ctx context.Context, importID string, req domain.BulkRequest) (*domain.BulkResult, error) {
	var result domain.BulkResult
	if err := c.do(ctx, http.MethodPost, "/imports/"+importID+"/shipments/bulk", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type presetList[T any] struct {
	Results []T `json:"results"`
}

// ListAddressPresets fetches all saved address presets.
func (c *Client) ListAddressPresets(ctx context.Context) ([]domain.AddressPreset, error) {
	var list presetList[domain.AddressPreset]
	if err := c.do(ctx, http.MethodGet, "/presets/addresses", nil, nil, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// CreateAddressPreset stores a new address preset.
func (c *Client) CreateAddressPreset(ctx context.Context, preset domain.AddressPreset) (*domain.AddressPreset, error) {
	var created domain.AddressPreset
	if err := c.do(ctx, http.MethodPost, "/presets/addresses", nil, preset, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListPackagePresets fetches all saved package presets.
func (c *Client) ListPackagePresets(ctx context.Context) ([]domain.PackagePreset, error) {
	var list presetList[domain.PackagePreset]
	if err := c.do(ctx, http.MethodGet, "/presets/packages", nil, nil, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// CreatePackagePreset stores a new package preset.
func (c *Client) CreatePackagePreset(ctx context.Context, preset domain.PackagePreset) (*domain.PackagePreset, error) {
	var created domain.PackagePreset
	if err := c.do(ctx, http.MethodPost, "/presets/packages", nil, preset, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type quoteRequest struct {
	ImportID    string   `json:"import_id,omitempty"`
	ShipmentIDs []string `json:"shipment_ids,omitempty"`
}

// QuoteImport fetches quotes for every shipment of an import.
func (c *Client) QuoteImport(ctx context.Context, importID string) (*domain.QuoteSet, error) {
	var set domain.QuoteSet
	if err := c.do(ctx, http.MethodPost, "/shipping/quotes", nil, quoteRequest{ImportID: importID}, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// QuoteShipments fetches quotes for the named shipments.
func (c *Client) QuoteShipments(ctx context.Context, ids []string) (*domain.QuoteSet, error) {
	var set domain.QuoteSet
	if err := c.do(ctx, http.MethodPost, "/shipping/quotes", nil, quoteRequest{ShipmentIDs: ids}, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

type purchaseRequest struct {
	LabelFormat string `json:"label_format,omitempty"`
	AgreedTerms bool   `json:"agreed_terms"`
}

// Purchase finalizes label purchase for an import's purchasable shipments.
func (c *Client) Purchase(ctx context.Context, importID, labelFormat string, agreedTerms bool) (*domain.PurchaseResult, error) {
	var result domain.PurchaseResult
	req := purchaseRequest{LabelFormat: labelFormat, AgreedTerms: agreedTerms}
	if err := c.do(ctx, http.MethodPost, "/imports/"+importID+"/purchase", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
