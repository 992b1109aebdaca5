// Package wizard sequences the label purchase flow. Each step gates on
// derived aggregates, so the user can never reach checkout with nothing
// to buy or leave the upload step without a job.
package wizard

import (
	"errors"
	"sync"

	"github.com/elvongray/shipping-labels/internal/aggregate"
	"github.com/elvongray/shipping-labels/internal/domain"
)

// Step is one screen of the wizard, in flow order.
type Step int

const (
	StepUpload Step = iota
	StepReview
	StepShipping
	StepCheckout
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepReview:
		return "review"
	case StepShipping:
		return "shipping"
	case StepCheckout:
		return "checkout"
	case StepSuccess:
		return "success"
	}
	return "unknown"
}

// Path returns the route for a step within one import's flow.
func (s Step) Path(importID string) string {
	if s == StepUpload || importID == "" {
		return "/labels/upload"
	}
	return "/labels/" + importID + "/" + s.String()
}

// Gate failures.
var (
	ErrImportRequired     = errors.New("no import uploaded yet")
	ErrImportNotFinished  = errors.New("import is still processing")
	ErrImportFailed       = errors.New("import failed")
	ErrNoReadyShipments   = errors.New("no shipments are ready to ship")
	ErrNothingPurchasable = errors.New("no shipments qualify for purchase")
	ErrFlowFinished       = errors.New("purchase already completed")
)

// State is what the gates consult: the latest job snapshot and the
// aggregates derived from it.
type State struct {
	ImportID string
	Job      *domain.ImportJob
	Summary  aggregate.Summary
}

// Navigator tracks the current step and enforces forward gates.
// Retreating is always allowed except off the success screen.
type Navigator struct {
	mu      sync.Mutex
	current Step
}

// NewNavigator starts a flow at the upload step.
func NewNavigator() *Navigator {
	return &Navigator{current: StepUpload}
}

// Current returns the step the user is on.
func (n *Navigator) Current() Step {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Advance moves one step forward if the gate for the next step passes.
func (n *Navigator) Advance(state State) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == StepSuccess {
		return ErrFlowFinished
	}

	next := n.current + 1
	if err := gate(next, state); err != nil {
		return err
	}
	n.current = next
	return nil
}

// Retreat moves one step back. The upload step has nowhere to go and
// the success screen is final.
func (n *Navigator) Retreat() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.current {
	case StepUpload:
		return nil
	case StepSuccess:
		return ErrFlowFinished
	}
	n.current--
	return nil
}

// Visit jumps directly to a step, as from a deep link. The target and
// every step before it must pass its gate; otherwise the navigator
// lands on the furthest step allowed.
func (n *Navigator) Visit(target Step, state State) Step {
	n.mu.Lock()
	defer n.mu.Unlock()

	if target > StepSuccess {
		target = StepSuccess
	}

	allowed := StepUpload
	for s := StepReview; s <= target; s++ {
		if gate(s, state) != nil {
			break
		}
		allowed = s
	}
	n.current = allowed
	return allowed
}

// gate checks whether a step may be entered given the current state.
func gate(step Step, state State) error {
	switch step {
	case StepUpload:
		return nil
	case StepReview:
		if state.ImportID == "" {
			return ErrImportRequired
		}
		return nil
	case StepShipping:
		if state.Job == nil || state.Job.Status.InFlight() {
			return ErrImportNotFinished
		}
		if state.Job.Status == domain.ImportStatusFailed {
			return ErrImportFailed
		}
		if state.Summary.ReadyCount == 0 {
			return ErrNoReadyShipments
		}
		return nil
	case StepCheckout, StepSuccess:
		if !state.Summary.CanCheckout() {
			return ErrNothingPurchasable
		}
		return nil
	}
	return nil
}
