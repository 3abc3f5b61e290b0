// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
)

// NewRouter builds the HTTP routing table.
func NewRouter(s *Server, log logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogging(log))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionId}", s.handleDeleteSession).Methods(http.MethodDelete)

	b := api.PathPrefix("/sessions/{sessionId}/browse").Subrouter()
	b.HandleFunc("", s.handleBrowseView).Methods(http.MethodGet)
	b.HandleFunc("/refresh", s.handleBrowseRefresh).Methods(http.MethodPost)
	b.HandleFunc("/panel/open", s.handleOpenPanel).Methods(http.MethodPost)
	b.HandleFunc("/panel/close", s.handleClosePanel).Methods(http.MethodPost)
	b.HandleFunc("/panel/filter", s.handleSetPending).Methods(http.MethodPut)
	b.HandleFunc("/panel/apply", s.handleApplyFilters).Methods(http.MethodPost)
	b.HandleFunc("/panel/clear", s.handleClearFilters).Methods(http.MethodPost)
	b.HandleFunc("/filters/{field}", s.handleRemoveFilter).Methods(http.MethodDelete)
	b.HandleFunc("/search", s.handleSearch).Methods(http.MethodPut)
	b.HandleFunc("/sort", s.handleSort).Methods(http.MethodPut)
	b.HandleFunc("/page", s.handlePage).Methods(http.MethodPut)

	api.HandleFunc("/filter-options", s.handleFilterOptions).Methods(http.MethodGet)
	api.HandleFunc("/products/{productId}", s.handleProductDetails).Methods(http.MethodGet)
	api.HandleFunc("/products/{productId}/interest", s.handleSubmitInterest).Methods(http.MethodPost)

	api.HandleFunc("/student/signup", s.handleStudentSignup).Methods(http.MethodPost)
	api.HandleFunc("/student/login", s.handleStudentLogin).Methods(http.MethodPost)
	api.HandleFunc("/student/{studentId}", s.handleStudentUpdateProfile).Methods(http.MethodPut)

	api.HandleFunc("/presets", s.handleListPresets).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}/presets", s.handleSavePreset).Methods(http.MethodPost)
	api.HandleFunc("/presets/{presetId}", s.handleDeletePreset).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{sessionId}/presets/{presetId}/load", s.handleLoadPreset).Methods(http.MethodPost)

	v := api.PathPrefix("/sessions/{sessionId}/verification").Subrouter()
	v.HandleFunc("/send", s.handleSendOTP).Methods(http.MethodPost)
	v.HandleFunc("/verify", s.handleVerifyOTP).Methods(http.MethodPost)
	v.HandleFunc("/edit-phone", s.handleEditPhone).Methods(http.MethodPost)

	wz := api.PathPrefix("/sessions/{sessionId}/wizard").Subrouter()
	wz.HandleFunc("/profile", s.handleWizardProfile).Methods(http.MethodPost)
	wz.HandleFunc("/eligibility/complete", s.handleWizardEligibility).Methods(http.MethodPost)
	wz.HandleFunc("/lender", s.handleWizardLender).Methods(http.MethodPost)
	wz.HandleFunc("/documents", s.handleWizardDocument).Methods(http.MethodPost)
	wz.HandleFunc("/documents/complete", s.handleWizardCompleteDocs).Methods(http.MethodPost)
	wz.HandleFunc("/application", s.handleWizardApplication).Methods(http.MethodGet)
	wz.HandleFunc("/status", s.handleWizardStatus).Methods(http.MethodPut)
	wz.HandleFunc("/summary", s.handleWizardSummary).Methods(http.MethodPost)

	return r
}

// requestLogging logs each request with its latency.
func requestLogging(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("http request", map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			})
		})
	}
}
