// internal/api/router_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/browse"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/catalog"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/contacts"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/exchange"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/otp"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/preset"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/student"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/wizard"
)

type memPresetStore struct {
	presets map[string]models.FilterPreset
}

func (m *memPresetStore) Insert(_ context.Context, p models.FilterPreset) error {
	m.presets[p.ID] = p
	return nil
}

func (m *memPresetStore) Get(_ context.Context, id string) (*models.FilterPreset, error) {
	p, ok := m.presets[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPresetStore) List(_ context.Context) ([]models.FilterPreset, error) {
	out := make([]models.FilterPreset, 0, len(m.presets))
	for _, p := range m.presets {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPresetStore) Delete(_ context.Context, id string) (bool, error) {
	_, ok := m.presets[id]
	delete(m.presets, id)
	return ok, nil
}

// fakeCatalog serves a fixed page and remembers the last query string.
func fakeCatalog(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var lastQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [{"id": "lp-1", "product_name": "Abroad Secured"}],
			"total": 1, "page": 1, "size": 20, "totalPages": 1
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &lastQuery
}

func newTestAPI(t *testing.T) (http.Handler, *string) {
	return newTestAPIWithStudent(t, http.NotFoundHandler())
}

// newTestAPIWithStudent lets a test stand in for the student identity service.
func newTestAPIWithStudent(t *testing.T, studentHandler http.Handler) (http.Handler, *string) {
	t.Helper()
	log := logger.NewTestLogger(t)

	catalogSrv, lastQuery := fakeCatalog(t)
	catalogClient := catalog.NewClient(catalogSrv.URL, 2*time.Second, log)

	contactsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(contactsSrv.Close)

	studentSrv := httptest.NewServer(studentHandler)
	t.Cleanup(studentSrv.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	otpService := otp.NewService(otp.NewRedisStore(redisClient), nopProvider{}, otp.ServiceConfig{}, log)

	opts := browse.Options{PageSize: 20, MaxPageSize: 100}
	registry := NewSessionRegistry(
		time.Hour,
		func() *browse.Session { return browse.NewSession(catalogClient, opts, log) },
		func() *otp.Flow { return otp.NewFlow(otpService) },
		func() *wizard.Orchestrator { return wizard.NewOrchestrator(log) },
		log,
	)

	presetMgr := preset.NewManager(&memPresetStore{presets: map[string]models.FilterPreset{}}, log)
	server := NewServer(
		registry,
		presetMgr,
		catalogClient,
		contacts.NewClient(contactsSrv.URL, time.Second, log),
		student.NewClient(studentSrv.URL, time.Second, log),
		exchange.NewClient(contactsSrv.URL, time.Second, log),
		log,
	)
	return NewRouter(server, log), lastQuery
}

type nopProvider struct{}

func (nopProvider) SendCode(context.Context, string, string, string) error { return nil }

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out["sessionId"])
	return out["sessionId"]
}

func TestBrowseFlowOverHTTP(t *testing.T) {
	h, lastQuery := newTestAPI(t)
	id := createSession(t, h)
	base := "/api/v1/sessions/" + id + "/browse"

	rec := doJSON(t, h, http.MethodPost, base+"/panel/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, base+"/panel/filter", map[string]string{
		"field": "studyLevel", "value": "masters",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var view browse.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.PanelOpen)
	assert.True(t, view.Applied.IsEmpty(), "pending edit must not apply")

	rec = doJSON(t, h, http.MethodPost, base+"/panel/apply", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.PanelOpen)
	require.NotNil(t, view.Applied.StudyLevel)
	assert.Contains(t, *lastQuery, "filters%5Bstudy_level%5D=masters")
	require.Len(t, view.Products, 1)
}

func TestInvalidFilterValueOverHTTP(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createSession(t, h)

	rec := doJSON(t, h, http.MethodPut, "/api/v1/sessions/"+id+"/browse/panel/filter",
		map[string]string{"field": "intakeYear", "value": "soon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSessionIs404(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/sessions/ghost/browse", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresetRoundTripOverHTTP(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createSession(t, h)
	base := "/api/v1/sessions/" + id

	// Apply one filter, then snapshot it as a preset.
	doJSON(t, h, http.MethodPost, base+"/browse/panel/open", nil)
	doJSON(t, h, http.MethodPut, base+"/browse/panel/filter", map[string]string{
		"field": "supportedCountries", "value": "uk",
	})
	doJSON(t, h, http.MethodPost, base+"/browse/panel/apply", nil)

	rec := doJSON(t, h, http.MethodPost, base+"/presets", map[string]string{"name": "UK loans"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p models.FilterPreset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "UK loans", p.Name)

	// A fresh session loads the preset wholesale.
	id2 := createSession(t, h)
	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id2+"/presets/"+p.ID+"/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view browse.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotNil(t, view.Applied.SupportedCountries)
	assert.Equal(t, "uk", *view.Applied.SupportedCountries)
}

func TestSavePresetWithoutFilters(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/presets",
		map[string]string{"name": "empty"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOTPCooldownOverHTTP(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createSession(t, h)
	path := "/api/v1/sessions/" + id + "/verification/send"

	rec := doJSON(t, h, http.MethodPost, path, map[string]string{"phone": "9876543210"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, path, map[string]string{"phone": "9876543210"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestStudentProfileUpdateOverHTTP(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody student.ProfileUpdate
	h, _ := newTestAPIWithStudent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(student.ProfileUpdate{
		StudyLevel: "masters",
		School:     "CMU",
	}))
	req := httptest.NewRequest(http.MethodPut, "/api/v1/student/st-42", &buf)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/student/st-42", gotPath)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "masters", gotBody.StudyLevel)
}

func TestStudentProfileUpdateRequiresToken(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPut, "/api/v1/student/st-42",
		student.ProfileUpdate{School: "CMU"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardProfileOverHTTP(t *testing.T) {
	h, _ := newTestAPI(t)
	id := createSession(t, h)

	profile := models.StudentProfile{
		FullName:         "Asha Verma",
		Email:            "asha@example.com",
		Phone:            "9876543210",
		DateOfBirth:      "2002-06-14",
		StudyDestination: "us",
		StudyLevel:       "masters",
		School:           "CMU",
		Program:          "MS CS",
		IntakeMonth:      "august",
		IntakeYear:       "2026",
		CourseFee:        4500000,
		RequestedAmount:  4000000,
		AcademicScorePct: 80,
		TestScorePct:     75,
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/wizard/profile", profile)
	require.Equal(t, http.StatusOK, rec.Code)

	var score models.EligibilityScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.NotEmpty(t, score.Band)

	// Out of order: documents before lender selection.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/wizard/documents",
		models.DocumentUpload{Kind: "passport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionJanitorSweepsIdle(t *testing.T) {
	log := logger.NewTestLogger(t)
	registry := NewSessionRegistry(
		10*time.Millisecond,
		func() *browse.Session { return nil },
		func() *otp.Flow { return nil },
		func() *wizard.Orchestrator { return nil },
		log,
	)

	id := registry.Create()
	time.Sleep(30 * time.Millisecond)
	registry.sweep()

	_, err := registry.get(id)
	assert.Error(t, err)
}
