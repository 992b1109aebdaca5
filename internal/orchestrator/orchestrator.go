// Package orchestrator funnels every client-initiated mutation through
// one place. It validates input locally, issues the API call, and fires
// invalidation hooks on success so the read models refetch.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/elvongray/shipping-labels/internal/domain"
	"github.com/elvongray/shipping-labels/internal/logger"
	"github.com/elvongray/shipping-labels/internal/validator"
)

// API is the slice of the HTTP client the orchestrator mutates through.
type API interface {
	PatchShipment(ctx context.Context, id string, fields map[string]any) (*domain.Shipment, error)
	DeleteShipment(ctx context.Context, id string) error
	BulkShipments(ctx context.Context, importID string, req domain.BulkRequest) (*domain.BulkResult, error)
	QuoteShipments(ctx context.Context, ids []string) (*domain.QuoteSet, error)
	CreateAddressPreset(ctx context.Context, preset domain.AddressPreset) (*domain.AddressPreset, error)
	CreatePackagePreset(ctx context.Context, preset domain.PackagePreset) (*domain.PackagePreset, error)
	Purchase(ctx context.Context, importID, labelFormat string, agreedTerms bool) (*domain.PurchaseResult, error)
}

// ErrNoSelection is returned when a bulk operation is invoked with no
// shipments selected.
var ErrNoSelection = errors.New("no shipments selected")

// Orchestrator issues mutations against the API and notifies read
// models when server state changed. Hooks fire only after a successful
// call; a failed mutation leaves the read models untouched. An
// Orchestrator is bound to one import, so bulk actions are scoped
// server-side and a stale selection cannot touch another import's rows.
type Orchestrator struct {
	client    API
	importID  string
	validator *validator.Validator

	onShipmentsChanged func()
	onPresetsChanged   func()
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithShipmentsChangedHook registers a callback fired after any
// successful mutation that altered shipment rows.
func WithShipmentsChangedHook(fn func()) Option {
	return func(o *Orchestrator) { o.onShipmentsChanged = fn }
}

// WithPresetsChangedHook registers a callback fired after a preset is
// created.
func WithPresetsChangedHook(fn func()) Option {
	return func(o *Orchestrator) { o.onPresetsChanged = fn }
}

// New creates an Orchestrator for one import over the given API client.
func New(client API, importID string, v *validator.Validator, opts ...Option) *Orchestrator {
	o := &Orchestrator{client: client, importID: importID, validator: v}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) shipmentsChanged() {
	if o.onShipmentsChanged != nil {
		o.onShipmentsChanged()
	}
}

func (o *Orchestrator) presetsChanged() {
	if o.onPresetsChanged != nil {
		o.onPresetsChanged()
	}
}

// PatchShipment applies a partial edit to one shipment.
func (o *Orchestrator) PatchShipment(ctx context.Context, id string, fields map[string]any) (*domain.Shipment, error) {
	shipment, err := o.client.PatchShipment(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	o.shipmentsChanged()
	return shipment, nil
}

// SetWeight normalizes a pound/ounce edit into total ounces and patches
// the shipment. A zero total clears the weight.
func (o *Orchestrator) SetWeight(ctx context.Context, id string, input validator.WeightInput) (*domain.Shipment, error) {
	weight, err := validator.NormalizeWeight(input)
	if err != nil {
		return nil, err
	}

	var value any
	if weight != nil {
		value = *weight
	}
	return o.PatchShipment(ctx, id, map[string]any{"weight_oz": value})
}

// Delete removes the given shipments. A single id goes through the row
// DELETE endpoint; more than one collapses into a single bulk call.
func (o *Orchestrator) Delete(ctx context.Context, ids []string) error {
	switch len(ids) {
	case 0:
		return ErrNoSelection
	case 1:
		if err := o.client.DeleteShipment(ctx, ids[0]); err != nil {
			return err
		}
	default:
		_, err := o.bulk(ctx, domain.BulkDelete, ids, nil)
		if err != nil {
			return err
		}
	}
	o.shipmentsChanged()
	return nil
}

// ApplyAddressPreset stamps a saved ship-from address onto the given
// shipments.
func (o *Orchestrator) ApplyAddressPreset(ctx context.Context, ids []string, presetID string) (*domain.BulkResult, error) {
	result, err := o.bulk(ctx, domain.BulkApplyAddressPreset, ids, map[string]any{"preset_id": presetID})
	if err != nil {
		return nil, err
	}
	o.shipmentsChanged()
	return result, nil
}

// ApplyPackagePreset stamps saved package dimensions onto the given
// shipments.
func (o *Orchestrator) ApplyPackagePreset(ctx context.Context, ids []string, presetID string) (*domain.BulkResult, error) {
	result, err := o.bulk(ctx, domain.BulkApplyPackagePreset, ids, map[string]any{"preset_id": presetID})
	if err != nil {
		return nil, err
	}
	o.shipmentsChanged()
	return result, nil
}

// VerifyAddresses runs address verification for the given shipments.
func (o *Orchestrator) VerifyAddresses(ctx context.Context, ids []string) (*domain.BulkResult, error) {
	result, err := o.bulk(ctx, domain.BulkVerifyAddresses, ids, nil)
	if err != nil {
		return nil, err
	}
	o.shipmentsChanged()
	return result, nil
}

// SetService assigns one carrier service to the given shipments.
func (o *Orchestrator) SetService(ctx context.Context, ids []string, service string) (*domain.BulkResult, error) {
	result, err := o.bulk(ctx, domain.BulkSetShippingService, ids, map[string]any{"service": service})
	if err != nil {
		return nil, err
	}
	o.shipmentsChanged()
	return result, nil
}

// AssignCheapestServices quotes the given shipments, picks the cheapest
// service for each, and assigns services grouped so every distinct
// service costs exactly one bulk call. Shipments without quotes are
// skipped. A failed group does not undo groups already applied.
func (o *Orchestrator) AssignCheapestServices(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return ErrNoSelection
	}

	set, err := o.client.QuoteShipments(ctx, ids)
	if err != nil {
		return err
	}

	byService := make(map[string][]string)
	quotes := set.ByShipment()
	for _, id := range ids {
		cheapest := domain.Cheapest(quotes[id])
		if cheapest == nil {
			continue
		}
		byService[cheapest.Service] = append(byService[cheapest.Service], id)
	}

	services := make([]string, 0, len(byService))
	for service := range byService {
		services = append(services, service)
	}
	sort.Strings(services)

	var errs []error
	applied := false
	for _, service := range services {
		_, err := o.bulk(ctx, domain.BulkSetShippingService, byService[service], map[string]any{"service": service})
		if err != nil {
			errs = append(errs, fmt.Errorf("assign %s: %w", service, err))
			continue
		}
		applied = true
	}

	if applied {
		o.shipmentsChanged()
	}
	return errors.Join(errs...)
}

// CreateAddressPreset validates and stores a new address preset.
func (o *Orchestrator) CreateAddressPreset(ctx context.Context, preset domain.AddressPreset) (*domain.AddressPreset, error) {
	if err := o.validator.ValidateAddressPreset(&preset); err != nil {
		return nil, err
	}

	created, err := o.client.CreateAddressPreset(ctx, preset)
	if err != nil {
		return nil, err
	}
	o.presetsChanged()
	return created, nil
}

// PackagePresetInput is the raw package preset form, with weight split
// into pound/ounce fields as entered.
type PackagePresetInput struct {
	Name     string
	Weight   validator.WeightInput
	LengthIn *float64
	WidthIn  *float64
	HeightIn *float64
}

// CreatePackagePreset normalizes the weight input, validates, and
// stores a new package preset.
func (o *Orchestrator) CreatePackagePreset(ctx context.Context, input PackagePresetInput) (*domain.PackagePreset, error) {
	weight, err := validator.NormalizeWeight(input.Weight)
	if err != nil {
		return nil, err
	}

	preset := domain.PackagePreset{
		Name:     input.Name,
		LengthIn: input.LengthIn,
		WidthIn:  input.WidthIn,
		HeightIn: input.HeightIn,
	}
	if weight != nil {
		preset.WeightOz = *weight
	}
	if err := o.validator.ValidatePackagePreset(&preset); err != nil {
		return nil, err
	}

	created, err := o.client.CreatePackagePreset(ctx, preset)
	if err != nil {
		return nil, err
	}
	o.presetsChanged()
	return created, nil
}

// PurchaseLabels finalizes label purchase for the import.
func (o *Orchestrator) PurchaseLabels(ctx context.Context, labelFormat string, agreedTerms bool) (*domain.PurchaseResult, error) {
	result, err := o.client.Purchase(ctx, o.importID, labelFormat, agreedTerms)
	if err != nil {
		return nil, err
	}

	logger.Info("Labels purchased",
		slog.String("import_job_id", o.importID),
		slog.Int("purchased", result.PurchasedCount),
		slog.Int("skipped", result.SkippedCount))

	o.shipmentsChanged()
	return result, nil
}

func (o *Orchestrator) bulk(ctx context.Context, action domain.BulkAction, ids []string, payload map[string]any) (*domain.BulkResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}
	return o.client.BulkShipments(ctx, o.importID, domain.BulkRequest{
		Action:      action,
		ShipmentIDs: ids,
		Payload:     payload,
	})
}
