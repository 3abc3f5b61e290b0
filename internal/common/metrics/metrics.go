// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetches_total",
			Help: "Total number of loan catalog page fetches",
		},
		[]string{"status"},
	)

	CatalogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "catalog_fetch_duration_seconds",
			Help: "Duration of loan catalog page fetches in seconds",
		},
	)

	StaleResponsesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "browse_stale_responses_discarded_total",
			Help: "Catalog responses discarded because a newer fetch superseded them",
		},
	)

	OTPSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_sends_total",
			Help: "Total number of OTP send attempts",
		},
		[]string{"channel", "status"},
	)

	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verifications_total",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"result"},
	)

	PresetOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preset_operations_total",
			Help: "Total number of filter preset operations",
		},
		[]string{"op", "status"},
	)

	ActiveBrowseSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "browse_sessions_active",
			Help: "Number of live browse sessions in the registry",
		},
	)
)
