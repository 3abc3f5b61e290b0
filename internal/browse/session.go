// internal/browse/session.go
package browse

import (
	"context"
	"sync"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/metrics"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// Fetcher is the slice of the catalog client the session needs.
type Fetcher interface {
	FetchPage(ctx context.Context, req models.PageRequest) (*models.PageResult, error)
}

// Options sets the initial paging defaults of a session.
type Options struct {
	PageSize    int
	MaxPageSize int
	SortKey     string
	SortDir     string
}

// Session drives one user's loan-product browsing: it owns the applied filter
// set (which the displayed result list always reflects), the pending copy
// edited in an open filter panel, and the pagination/sort tuple. The panel is
// an explicit tagged state: nil means closed; a non-nil panelState carries the
// pending copy. Edits while the panel is open touch pending only; the applied
// set changes through Apply, ClearAll, SetSearch, RemoveFilter or LoadPreset.
//
// Every mutation that changes the result set bumps a fetch sequence number;
// a response is discarded unless its sequence is still the latest issued, so
// rapid edits cannot land out of order.
type Session struct {
	mu      sync.Mutex
	fetcher Fetcher
	logger  logger.Logger

	applied models.FilterValues
	panel   *panelState

	page       int
	size       int
	maxSize    int
	sortKey    string
	sortDir    string
	total      int
	totalPages int
	products   []models.LoanProduct
	lastErr    string

	fetchSeq   uint64
	autofilled bool
}

type panelState struct {
	pending models.FilterValues
}

func NewSession(fetcher Fetcher, opts Options, log logger.Logger) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &Session{
		fetcher: fetcher,
		logger:  log.WithFields(map[string]interface{}{"component": "browse-session"}),
		page:    1,
		size:    opts.PageSize,
		maxSize: opts.MaxPageSize,
		sortKey: opts.SortKey,
		sortDir: opts.SortDir,
	}
}

// View is an immutable snapshot of the session for rendering.
type View struct {
	Applied    models.FilterValues  `json:"applied"`
	Pending    *models.FilterValues `json:"pending,omitempty"`
	PanelOpen  bool                 `json:"panelOpen"`
	Page       int                  `json:"page"`
	Size       int                  `json:"size"`
	SortKey    string               `json:"sortKey"`
	SortDir    string               `json:"sortDir"`
	Total      int                  `json:"total"`
	TotalPages int                  `json:"totalPages"`
	Products   []models.LoanProduct `json:"products"`
	Error      string               `json:"error,omitempty"`
}

// Snapshot returns the current view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Applied:    s.applied.Clone(),
		PanelOpen:  s.panel != nil,
		Page:       s.page,
		Size:       s.size,
		SortKey:    s.sortKey,
		SortDir:    s.sortDir,
		Total:      s.total,
		TotalPages: s.totalPages,
		Products:   append([]models.LoanProduct(nil), s.products...),
		Error:      s.lastErr,
	}
	if s.panel != nil {
		pending := s.panel.pending.Clone()
		v.Pending = &pending
	}
	return v
}

// OpenPanel opens the filter panel. Pending is resynchronized from applied so
// stale edits never leak across open/close cycles.
func (s *Session) OpenPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = &panelState{pending: s.applied.Clone()}
}

// ClosePanel discards any pending edits without applying them.
func (s *Session) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = nil
}

// SetPending edits one field of the pending copy. It has no effect on the
// applied set or on the displayed results; an empty value deletes the key.
func (s *Session) SetPending(field models.Field, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.panel == nil {
		return stderrors.NewFilterInvalidValueError(string(field), "filter panel is not open")
	}
	if err := s.panel.pending.Set(field, raw); err != nil {
		return stderrors.NewFilterInvalidValueError(string(field), err.Error())
	}
	return nil
}

// Apply commits the pending copy: applied := pending, page resets to 1, the
// panel closes and a fetch is issued.
func (s *Session) Apply(ctx context.Context) error {
	s.mu.Lock()
	if s.panel == nil {
		s.mu.Unlock()
		return stderrors.NewFilterInvalidValueError("panel", "filter panel is not open")
	}
	s.applied = s.panel.pending.Clone()
	s.panel = nil
	s.page = 1
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

// ClearAll clears every pending field except the live search box and applies
// the cleared set immediately; it does not wait for a separate Apply click.
// The panel stays open showing the cleared fields.
func (s *Session) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	cleared := models.FilterValues{SearchQuery: s.applied.SearchQuery}
	if s.panel != nil {
		s.panel.pending = cleared.Clone()
	}
	s.applied = cleared
	s.page = 1
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

// SetSearch bypasses the staging machine entirely: every change writes
// directly to the applied search query, resets the page and refetches.
func (s *Session) SetSearch(ctx context.Context, query string) error {
	s.mu.Lock()
	s.applied.SearchQuery = query
	s.page = 1
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

// RemoveFilter deletes exactly one key from the applied set (an active-filter
// chip removed outside the panel) and refetches. It does not go through
// pending.
func (s *Session) RemoveFilter(ctx context.Context, field models.Field) error {
	s.mu.Lock()
	s.applied.Remove(field)
	s.page = 1
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

// SetSort changes the sort tuple. Sort reordering within the same filtered
// set is cheap to re-window, so the page is deliberately not reset.
func (s *Session) SetSort(ctx context.Context, key, dir string) error {
	s.mu.Lock()
	s.sortKey = key
	s.sortDir = dir
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

// SetPage moves to another page, optionally changing the page size. This is
// the only operation that changes the page without resetting it.
func (s *Session) SetPage(ctx context.Context, page int, size int) error {
	s.mu.Lock()
	if page >= 1 {
		s.page = page
	}
	if size >= 1 {
		if size > s.maxSize {
			size = s.maxSize
		}
		s.size = size
	}
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

// LoadPreset replaces the applied set wholesale with the preset's filters:
// any key present before but absent from the preset is gone afterwards. The
// live search query survives, matching its never-staged lifecycle.
func (s *Session) LoadPreset(ctx context.Context, preset models.FilterPreset) error {
	s.mu.Lock()
	search := s.applied.SearchQuery
	s.applied = models.FromAPI(preset.Filters)
	s.applied.SearchQuery = search
	s.panel = nil
	s.page = 1
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

// Applied returns a copy of the currently applied filter set.
func (s *Session) Applied() models.FilterValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied.Clone()
}

// Refresh re-issues the fetch for the current tuple without mutating it.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	req, seq := s.snapshotRequestLocked()
	s.mu.Unlock()

	return s.fetch(ctx, req, seq)
}

func (s *Session) snapshotRequestLocked() (models.PageRequest, uint64) {
	s.fetchSeq++
	return models.PageRequest{
		Page:    s.page,
		Size:    s.size,
		SortKey: s.sortKey,
		SortDir: s.sortDir,
		Search:  s.applied.SearchQuery,
		Filters: s.applied.ToAPI(),
	}, s.fetchSeq
}

// fetch performs one catalog request and folds the result back in. A response
// whose sequence is no longer the latest is dropped; a failed fetch records
// the error and leaves the previously displayed data untouched.
func (s *Session) fetch(ctx context.Context, req models.PageRequest, seq uint64) error {
	res, err := s.fetcher.FetchPage(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		metrics.StaleResponsesDiscarded.Inc()
		s.logger.Debug("discarding superseded catalog response", map[string]interface{}{
			"seq":    seq,
			"latest": s.fetchSeq,
		})
		return nil
	}

	if err != nil {
		s.lastErr = err.Error()
		return err
	}

	s.products = res.Data
	s.total = res.Total
	s.page = res.Page
	s.size = res.Size
	s.totalPages = res.TotalPages
	s.lastErr = ""
	return nil
}
