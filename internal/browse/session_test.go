// internal/browse/session_test.go
package browse

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// fakeFetcher records requests and replays scripted results.
type fakeFetcher struct {
	mu       sync.Mutex
	requests []models.PageRequest
	result   *models.PageResult
	err      error
	// hook runs before the fetch returns, keyed by call number (1-based).
	hook func(call int)
}

func (f *fakeFetcher) FetchPage(_ context.Context, req models.PageRequest) (*models.PageResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	call := len(f.requests)
	f.mu.Unlock()

	if f.hook != nil {
		f.hook(call)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		res := *f.result
		return &res, nil
	}
	return &models.PageResult{Page: req.Page, Size: req.Size, TotalPages: 1}, nil
}

func (f *fakeFetcher) lastRequest() models.PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestSession(t *testing.T, f Fetcher) *Session {
	t.Helper()
	return NewSession(f, Options{PageSize: 20, MaxPageSize: 100}, logger.NewTestLogger(t))
}

func TestPendingEditsDoNotTouchApplied(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)

	s.OpenPanel()
	require.NoError(t, s.SetPending(models.FieldStudyLevel, "masters"))

	assert.True(t, s.Applied().IsEmpty())
	assert.Equal(t, 0, f.callCount(), "pending edits must not trigger fetches")

	view := s.Snapshot()
	require.NotNil(t, view.Pending)
	assert.Equal(t, "masters", *view.Pending.StudyLevel)
}

func TestClosePanelDiscardsPending(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)

	s.OpenPanel()
	require.NoError(t, s.SetPending(models.FieldSchool, "MIT"))
	s.ClosePanel()

	s.OpenPanel()
	view := s.Snapshot()
	require.NotNil(t, view.Pending)
	assert.Nil(t, view.Pending.School, "reopened panel must resync from applied")
}

func TestApplyCommitsPendingAndResetsPage(t *testing.T) {
	f := &fakeFetcher{result: &models.PageResult{Total: 90, Page: 1, Size: 20, TotalPages: 5}}
	s := newTestSession(t, f)
	require.NoError(t, s.SetPage(context.Background(), 4, 0))

	s.OpenPanel()
	require.NoError(t, s.SetPending(models.FieldStudyLevel, "mba"))
	require.NoError(t, s.Apply(context.Background()))

	applied := s.Applied()
	require.NotNil(t, applied.StudyLevel)
	assert.Equal(t, "mba", *applied.StudyLevel)
	assert.False(t, s.Snapshot().PanelOpen)

	req := f.lastRequest()
	assert.Equal(t, 1, req.Page, "filter change must reset to the first page")
	require.NotNil(t, req.Filters.StudyLevel)
}

func TestApplyRequiresOpenPanel(t *testing.T) {
	s := newTestSession(t, &fakeFetcher{})
	assert.Error(t, s.Apply(context.Background()))
}

func TestSetPendingRejectsInvalidValue(t *testing.T) {
	s := newTestSession(t, &fakeFetcher{})
	s.OpenPanel()

	assert.Error(t, s.SetPending(models.FieldIntakeYear, "banana"))
	view := s.Snapshot()
	assert.Nil(t, view.Pending.IntakeYear, "invalid value must not be stored")
}

func TestClearAllAppliesImmediatelyAndKeepsSearch(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)
	require.NoError(t, s.SetSearch(context.Background(), "low interest"))

	s.OpenPanel()
	require.NoError(t, s.SetPending(models.FieldStudyLevel, "phd"))
	require.NoError(t, s.Apply(context.Background()))

	s.OpenPanel()
	calls := f.callCount()
	require.NoError(t, s.ClearAll(context.Background()))

	assert.Equal(t, calls+1, f.callCount(), "clear must fetch without a separate apply")
	assert.True(t, s.Applied().IsEmpty())
	assert.Equal(t, "low interest", s.Applied().SearchQuery)

	view := s.Snapshot()
	assert.True(t, view.PanelOpen, "panel stays open after clear")
	assert.True(t, view.Pending.IsEmpty())
}

func TestSearchBypassesStaging(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)

	s.OpenPanel()
	require.NoError(t, s.SetSearch(context.Background(), "nbfc"))

	assert.Equal(t, "nbfc", s.Applied().SearchQuery)
	assert.Equal(t, "nbfc", f.lastRequest().Search)
	assert.Equal(t, 1, f.lastRequest().Page, "search change resets the page")
}

func TestRemoveFilterSkipsPending(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)

	s.OpenPanel()
	require.NoError(t, s.SetPending(models.FieldStudyLevel, "masters"))
	require.NoError(t, s.SetPending(models.FieldSchool, "IIT"))
	require.NoError(t, s.Apply(context.Background()))

	require.NoError(t, s.RemoveFilter(context.Background(), models.FieldSchool))

	applied := s.Applied()
	assert.Nil(t, applied.School)
	require.NotNil(t, applied.StudyLevel, "other filters survive a single removal")
}

func TestSortChangeKeepsPage(t *testing.T) {
	f := &fakeFetcher{result: &models.PageResult{Page: 3, Size: 20, TotalPages: 5}}
	s := newTestSession(t, f)
	require.NoError(t, s.SetPage(context.Background(), 3, 0))

	require.NoError(t, s.SetSort(context.Background(), "interest_rate", "desc"))

	req := f.lastRequest()
	assert.Equal(t, 3, req.Page, "sort change must not reset the page")
	assert.Equal(t, "interest_rate", req.SortKey)
	assert.Equal(t, "desc", req.SortDir)
}

func TestSetPageCapsSize(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)

	require.NoError(t, s.SetPage(context.Background(), 2, 500))
	assert.Equal(t, 100, f.lastRequest().Size)
}

func TestServerIsAuthoritativeForCounters(t *testing.T) {
	f := &fakeFetcher{result: &models.PageResult{
		Data:       []models.LoanProduct{{ID: "lp-7"}},
		Total:      101,
		Page:       6,
		Size:       17,
		TotalPages: 6,
	}}
	s := newTestSession(t, f)

	require.NoError(t, s.Refresh(context.Background()))

	view := s.Snapshot()
	assert.Equal(t, 101, view.Total)
	assert.Equal(t, 6, view.Page)
	assert.Equal(t, 17, view.Size)
	assert.Equal(t, 6, view.TotalPages)
	require.Len(t, view.Products, 1)
}

func TestFailedFetchPreservesPriorData(t *testing.T) {
	f := &fakeFetcher{result: &models.PageResult{
		Data: []models.LoanProduct{{ID: "lp-1"}}, Total: 1, Page: 1, Size: 20, TotalPages: 1,
	}}
	s := newTestSession(t, f)
	require.NoError(t, s.Refresh(context.Background()))

	f.mu.Lock()
	f.err = errors.New("catalog down")
	f.mu.Unlock()

	require.Error(t, s.Refresh(context.Background()))

	view := s.Snapshot()
	require.Len(t, view.Products, 1, "prior page survives a failed fetch")
	assert.Equal(t, "lp-1", view.Products[0].ID)
	assert.NotEmpty(t, view.Error)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)

	// The first fetch is superseded mid-flight by a sort change, so its
	// response must not land.
	f.hook = func(call int) {
		if call == 1 {
			f.hook = nil
			require.NoError(t, s.SetSort(context.Background(), "tenure", "asc"))
		}
	}
	f.result = &models.PageResult{Page: 1, Size: 20, TotalPages: 9}

	require.NoError(t, s.Refresh(context.Background()))

	view := s.Snapshot()
	assert.Equal(t, "tenure", view.SortKey)
	assert.Equal(t, 9, view.TotalPages, "only the latest response is folded in")
	assert.Equal(t, 2, f.callCount())
}

func TestLoadPresetReplacesWholesale(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSession(t, f)

	s.OpenPanel()
	require.NoError(t, s.SetPending(models.FieldSchool, "Oxford"))
	require.NoError(t, s.Apply(context.Background()))
	require.NoError(t, s.SetSearch(context.Background(), "secured"))

	level := "masters"
	preset := models.FilterPreset{
		ID:      "p-1",
		Name:    "Masters abroad",
		Filters: models.APIFilters{StudyLevel: &level},
	}
	require.NoError(t, s.LoadPreset(context.Background(), preset))

	applied := s.Applied()
	assert.Nil(t, applied.School, "keys absent from the preset are gone")
	require.NotNil(t, applied.StudyLevel)
	assert.Equal(t, "masters", *applied.StudyLevel)
	assert.Equal(t, "secured", applied.SearchQuery, "live search survives a preset load")
	assert.Equal(t, 1, f.lastRequest().Page)
}
