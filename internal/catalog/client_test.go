// internal/catalog/client_test.go
package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loanProduct/pagination", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "masters", r.URL.Query().Get("filters[study_level]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [{"id": "lp-1", "product_name": "Abroad Secured", "lender_name": "Axis"}],
			"total": 41, "page": 3, "size": 20, "totalPages": 3
		}`))
	}))
	defer srv.Close()

	var f models.FilterValues
	require.NoError(t, f.Set(models.FieldStudyLevel, "masters"))

	c := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	res, err := c.FetchPage(context.Background(), models.PageRequest{
		Page: 3, Size: 20, Filters: f.ToAPI(),
	})
	require.NoError(t, err)

	assert.Equal(t, 41, res.Total)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "lp-1", res.Data[0].ID)
}

func TestFetchPageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	_, err := c.FetchPage(context.Background(), models.PageRequest{Page: 1, Size: 20})

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCatalogFetchFailed, stderrors.CodeOf(err))
}

func TestFetchPageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Hour, logger.NewTestLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchPage(ctx, models.PageRequest{Page: 1, Size: 20})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCatalogTimeout, stderrors.CodeOf(err))
}

func TestSubmitInterestSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loan-products/interested", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	err := c.SubmitInterest(context.Background(), "tok-123", models.InterestSubmission{
		ProductID: "lp-1", StudentID: "st-9",
	})
	require.NoError(t, err)
}
