package readmodel

import (
	"context"
	"sync"
	"time"

	"github.com/elvongray/shipping-labels/internal/api"
	"github.com/elvongray/shipping-labels/internal/domain"
)

// ShipmentAPI is the slice of the API client a ShipmentList needs.
type ShipmentAPI interface {
	ListShipments(ctx context.Context, params api.ListParams) (*api.Page[domain.Shipment], error)
}

// ListSnapshot is one consistent view of the shipment list.
type ListSnapshot struct {
	Shipments []domain.Shipment
	Count     int
	Page      int
	PageSize  int
	Err       error
}

// ShipmentList mirrors one filtered, paginated page of shipments.
// Changing any filter resets to page 1 and invalidates in-flight
// responses, so a slow reply for an old query can never overwrite the
// result of a newer one.
type ShipmentList struct {
	client   ShipmentAPI
	importID string

	pollInterval time.Duration
	debounce     time.Duration
	active       func() bool

	mu            sync.Mutex
	status        domain.ValidationStatus
	search        string
	hidePurchased bool
	page          int
	pageSize      int
	generation    uint64
	searchTimer   *time.Timer

	shipments []domain.Shipment
	count     int
	lastErr   error

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ListOption customizes a ShipmentList.
type ListOption func(*ShipmentList)

// WithPageSize sets the page size requested from the server.
func WithPageSize(size int) ListOption {
	return func(l *ShipmentList) { l.pageSize = size }
}

// WithPollInterval sets the background refresh interval.
func WithPollInterval(d time.Duration) ListOption {
	return func(l *ShipmentList) { l.pollInterval = d }
}

// WithSearchDebounce sets how long search input is allowed to settle
// before a request is issued.
func WithSearchDebounce(d time.Duration) ListOption {
	return func(l *ShipmentList) { l.debounce = d }
}

// WithActive gates background polling. While active returns false the
// loop idles; explicit refreshes still work.
func WithActive(active func() bool) ListOption {
	return func(l *ShipmentList) { l.active = active }
}

// NewShipmentList creates a list view over one import's shipments.
func NewShipmentList(client ShipmentAPI, importID string, opts ...ListOption) *ShipmentList {
	l := &ShipmentList{
		client:       client,
		importID:     importID,
		pollInterval: 4 * time.Second,
		debounce:     300 * time.Millisecond,
		page:         1,
		pageSize:     50,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start begins the background refresh loop.
func (l *ShipmentList) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go l.run(ctx)
}

func (l *ShipmentList) run(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if l.active != nil && !l.active() {
				continue
			}
			l.Refresh(ctx)
		}
	}
}

// SetStatusFilter changes the validation status filter and jumps back
// to the first page.
func (l *ShipmentList) SetStatusFilter(status domain.ValidationStatus) {
	l.mu.Lock()
	if l.status == status {
		l.mu.Unlock()
		return
	}
	l.status = status
	l.resetPageLocked()
	l.mu.Unlock()

	go l.Refresh(context.Background())
}

// SetHidePurchased toggles hiding of purchased rows and jumps back to
// the first page.
func (l *ShipmentList) SetHidePurchased(hide bool) {
	l.mu.Lock()
	if l.hidePurchased == hide {
		l.mu.Unlock()
		return
	}
	l.hidePurchased = hide
	l.resetPageLocked()
	l.mu.Unlock()

	go l.Refresh(context.Background())
}

// SetSearch changes the search query and jumps back to the first page.
// The request is debounced so rapid keystrokes collapse into one call.
func (l *ShipmentList) SetSearch(query string) {
	l.mu.Lock()
	if l.search == query {
		l.mu.Unlock()
		return
	}
	l.search = query
	l.resetPageLocked()

	if l.searchTimer != nil {
		l.searchTimer.Stop()
	}
	l.searchTimer = time.AfterFunc(l.debounce, func() {
		l.Refresh(context.Background())
	})
	l.mu.Unlock()
}

// SetPage moves to another page of the current query.
func (l *ShipmentList) SetPage(page int) {
	if page < 1 {
		page = 1
	}

	l.mu.Lock()
	if l.page == page {
		l.mu.Unlock()
		return
	}
	l.page = page
	l.generation++
	l.mu.Unlock()

	go l.Refresh(context.Background())
}

// resetPageLocked is called with l.mu held whenever a filter changes.
func (l *ShipmentList) resetPageLocked() {
	l.page = 1
	l.generation++
}

// Page returns the current 1-based page number.
func (l *ShipmentList) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Refresh fetches the current query once. A response that arrives after
// the query has changed is dropped.
func (l *ShipmentList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	gen := l.generation
	params := api.ListParams{
		ImportID:      l.importID,
		Status:        l.status,
		Search:        l.search,
		HidePurchased: l.hidePurchased,
		Page:          l.page,
		PageSize:      l.pageSize,
	}
	l.mu.Unlock()

	page, err := l.client.ListShipments(ctx, params)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		return nil
	}
	if err != nil {
		l.lastErr = err
		return err
	}

	l.shipments = page.Results
	l.count = page.Count
	l.lastErr = nil
	return nil
}

// Invalidate refetches after a mutation changed server state.
func (l *ShipmentList) Invalidate(ctx context.Context) {
	l.Refresh(ctx)
}

// Snapshot returns the last fetched page. After a failed refresh the
// previous data is retained alongside the error.
func (l *ShipmentList) Snapshot() ListSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	shipments := make([]domain.Shipment, len(l.shipments))
	copy(shipments, l.shipments)

	return ListSnapshot{
		Shipments: shipments,
		Count:     l.count,
		Page:      l.page,
		PageSize:  l.pageSize,
		Err:       l.lastErr,
	}
}

// Close stops the background loop and any pending debounced search.
func (l *ShipmentList) Close() {
	l.mu.Lock()
	if l.searchTimer != nil {
		l.searchTimer.Stop()
	}
	l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}
