// internal/exchange/client_test.go
package exchange

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
)

func TestRateFromLiveService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/INR", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base": "INR", "rates": {"USD": 0.0119, "GBP": 0.0094}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	rate, err := c.Rate(context.Background(), "inr", "usd")
	require.NoError(t, err)
	assert.InDelta(t, 0.0119, rate, 1e-9)
}

func TestRateFallsBackWhenServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	rate, err := c.Rate(context.Background(), "INR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.012, rate, 1e-9, "static table serves INR rates")
}

func TestRateUnavailableForUnknownPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	_, err := c.Rate(context.Background(), "USD", "JPY")
	assert.Equal(t, stderrors.ErrCodeExchangeRateUnavailable, stderrors.CodeOf(err))
}

func TestSameCurrencyShortCircuits(t *testing.T) {
	c := NewClient("http://unused.invalid", time.Second, logger.NewTestLogger(t))
	rate, err := c.Rate(context.Background(), "INR", "inr")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base": "INR", "rates": {"USD": 0.012}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	got, err := c.Convert(context.Background(), 1000000, "INR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 12000, got, 1e-6)
}
