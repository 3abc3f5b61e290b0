// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/catalog"
	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/contacts"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/exchange"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/notify"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/preset"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/student"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/wizard"
)

// Server exposes the browse, preset, verification and wizard operations over
// HTTP. It is a thin translation layer; all behavior lives in the state
// machines and services it fronts.
type Server struct {
	registry *SessionRegistry
	presets  *preset.Manager
	catalog  *catalog.Client
	contacts *contacts.Client
	student  *student.Client
	exchange *exchange.Client
	notifier *notify.Notifier
	logger   logger.Logger
}

func NewServer(
	registry *SessionRegistry,
	presets *preset.Manager,
	catalogClient *catalog.Client,
	contactsClient *contacts.Client,
	studentClient *student.Client,
	exchangeClient *exchange.Client,
	log logger.Logger,
) *Server {
	return &Server{
		registry: registry,
		presets:  presets,
		catalog:  catalogClient,
		contacts: contactsClient,
		student:  studentClient,
		exchange: exchangeClient,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// WithNotifier attaches the status notifier. Without one, status changes are
// recorded but nothing is sent.
func (s *Server) WithNotifier(n *notify.Notifier) *Server {
	s.notifier = n
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// httpStatusFor maps error codes onto HTTP statuses.
func httpStatusFor(code stderrors.ErrorCode) int {
	switch code {
	case stderrors.ErrCodePresetNotFound, stderrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case stderrors.ErrCodeOTPResendCooldown:
		return http.StatusTooManyRequests
	case stderrors.ErrCodeCatalogTimeout:
		return http.StatusGatewayTimeout
	case stderrors.ErrCodeCatalogFetchFailed, stderrors.ErrCodeOTPSendFailed,
		stderrors.ErrCodeOTPStoreFailed, stderrors.ErrCodePresetStoreFailed,
		stderrors.ErrCodeContactUpsertFailed, stderrors.ErrCodeNotificationSendFailed,
		stderrors.ErrCodeExchangeRateUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if code := stderrors.CodeOf(err); code != "" {
		writeJSON(w, httpStatusFor(code), err)
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// session resolves the {sessionId} path variable, writing the error itself.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *userSession {
	id := mux.Vars(r)["sessionId"]
	sess, err := s.registry.get(id)
	if err != nil {
		s.writeError(w, err)
		return nil
	}
	return sess
}

// --- session lifecycle ---

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.registry.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.registry.Delete(mux.Vars(r)["sessionId"])
	w.WriteHeader(http.StatusNoContent)
}

// --- browse ---

func (s *Server) handleBrowseView(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

func (s *Server) handleBrowseRefresh(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.browse.Refresh(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

func (s *Server) handleOpenPanel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.browse.OpenPanel()
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

func (s *Server) handleClosePanel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.browse.ClosePanel()
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

type setFilterRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) handleSetPending(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req setFilterRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewFilterInvalidValueError("body", err.Error()))
		return
	}
	if err := sess.browse.SetPending(models.Field(req.Field), req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

func (s *Server) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.browse.Apply(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.browse.ClearAll(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

func (s *Server) handleRemoveFilter(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	field := mux.Vars(r)["field"]
	if err := sess.browse.RemoveFilter(r.Context(), models.Field(field)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req searchRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewFilterInvalidValueError("body", err.Error()))
		return
	}
	if err := sess.browse.SetSearch(r.Context(), req.Query); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

type sortRequest struct {
	Key string `json:"key"`
	Dir string `json:"dir"`
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req sortRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewFilterInvalidValueError("body", err.Error()))
		return
	}
	if err := sess.browse.SetSort(r.Context(), req.Key, req.Dir); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

type pageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req pageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewFilterInvalidValueError("body", err.Error()))
		return
	}
	if err := sess.browse.SetPage(r.Context(), req.Page, req.Size); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.catalog.FilterOptions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleProductDetails(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.Details(r.Context(), mux.Vars(r)["productId"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// --- presets ---

type savePresetRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req savePresetRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewPresetPayloadInvalidError(err.Error()))
		return
	}
	p, err := s.presets.Save(r.Context(), req.Name, sess.browse.Applied())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	out, err := s.presets.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if out == nil {
		out = []models.FilterPreset{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.presets.Delete(r.Context(), mux.Vars(r)["presetId"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	p, err := s.presets.Get(r.Context(), mux.Vars(r)["presetId"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.browse.LoadPreset(r.Context(), *p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.browse.Snapshot())
}

// --- verification ---

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req sendOTPRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewOTPPhoneInvalidError(err.Error()))
		return
	}
	if err := sess.otpFlow.SendCode(r.Context(), req.Phone); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.otpFlow.Snapshot())
}

type verifyOTPRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req verifyOTPRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewOTPCodeInvalidError(err.Error()))
		return
	}
	sess.otpFlow.PasteCode(req.Code)
	if err := sess.otpFlow.Verify(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	// A verified phone unlocks contact lookup so browse filters can be
	// pre-populated from the student's record.
	view := sess.otpFlow.Snapshot()
	if profile, _ := s.contacts.Lookup(r.Context(), view.Phone); profile != nil {
		if err := sess.browse.ApplyProfileDefaults(r.Context(), *profile); err != nil {
			s.logger.Warn("profile autofill fetch failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleEditPhone(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.otpFlow.EditPhone()
	writeJSON(w, http.StatusOK, sess.otpFlow.Snapshot())
}

// --- wizard ---

func (s *Server) handleWizardProfile(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var profile models.StudentProfile
	if err := decode(r, &profile); err != nil {
		s.writeError(w, stderrors.NewProfileValidationFailedError(err.Error()))
		return
	}
	score, err := sess.wizard.CompleteProfile(profile)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Contact capture is best effort; a CRM outage must not block the wizard.
	if _, err := s.contacts.Upsert(r.Context(), contacts.UpsertRequest{
		FullName:         profile.FullName,
		Email:            profile.Email,
		Phone:            profile.Phone,
		IntakeMonth:      profile.IntakeMonth,
		IntakeYear:       profile.IntakeYear,
		DegreeLevel:      profile.StudyLevel,
		StudyDestination: profile.StudyDestination,
		Source:           "application_wizard",
	}); err != nil {
		s.logger.Warn("contact capture failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleWizardEligibility(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	score, err := sess.wizard.CompleteEligibility()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

type selectLenderRequest struct {
	Lender models.Lender `json:"lender"`
	Amount int64         `json:"amount"`
}

func (s *Server) handleWizardLender(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req selectLenderRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewLenderAmountInvalidError(err.Error()))
		return
	}
	app, err := sess.wizard.SelectLender(req.Lender, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleWizardDocument(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var doc models.DocumentUpload
	if err := decode(r, &doc); err != nil {
		s.writeError(w, stderrors.NewProfileValidationFailedError(err.Error()))
		return
	}
	if err := sess.wizard.AddDocument(doc); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.wizard.Application())
}

func (s *Server) handleWizardCompleteDocs(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.wizard.CompleteDocumentation(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.wizard.Application())
}

func (s *Server) handleWizardApplication(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	app := sess.wizard.Application()
	if app == nil {
		s.writeError(w, stderrors.NewStageOrderViolationError(
			string(sess.wizard.Current()), string(wizard.StageTracking)))
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleWizardStatus(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewProfileValidationFailedError(err.Error()))
		return
	}
	if err := sess.wizard.SetStatus(req.Status); err != nil {
		s.writeError(w, err)
		return
	}

	app := sess.wizard.Application()
	if s.notifier != nil && app != nil {
		if err := s.notifier.EmailStatus(r.Context(), *app); err != nil {
			s.logger.Warn("status email not delivered", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err.Error(),
			})
		}
		if err := s.notifier.SMSStatus(r.Context(), *app); err != nil {
			s.logger.Warn("status sms not delivered", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err.Error(),
			})
		}
	}
	writeJSON(w, http.StatusOK, app)
}

type summaryRequest struct {
	TenureMonths int    `json:"tenureMonths"`
	Currency     string `json:"currency"`
}

func (s *Server) handleWizardSummary(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req summaryRequest
	if r.Body != nil {
		_ = decode(r, &req)
	}
	summary, err := sess.wizard.Summary(req.TenureMonths)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// An optional target currency converts the total payable for display in
	// the destination country's money. Conversion failure degrades to the
	// INR-only summary rather than failing the stage.
	if req.Currency != "" && req.Currency != summary.Currency {
		converted, err := s.exchange.Convert(
			r.Context(), float64(summary.TotalPayable), summary.Currency, req.Currency)
		if err != nil {
			s.logger.Warn("summary currency conversion unavailable", map[string]interface{}{
				"target": req.Currency,
				"error":  err.Error(),
			})
		} else {
			summary.ConvertedAmount = converted
			summary.ConvertedTo = req.Currency
		}
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- student identity ---

func (s *Server) handleStudentSignup(w http.ResponseWriter, r *http.Request) {
	var req student.SignupRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewStudentAuthFailedError(err.Error()))
		return
	}
	session, err := s.student.Signup(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleStudentLogin(w http.ResponseWriter, r *http.Request) {
	var req student.LoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, stderrors.NewStudentAuthFailedError(err.Error()))
		return
	}
	session, err := s.student.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleStudentUpdateProfile forwards profile edits for the authenticated
// student using the bearer token issued at login.
func (s *Server) handleStudentUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update student.ProfileUpdate
	if err := decode(r, &update); err != nil {
		s.writeError(w, stderrors.NewStudentAuthFailedError(err.Error()))
		return
	}

	token := bearerToken(r)
	if token == "" {
		s.writeError(w, stderrors.NewStudentAuthFailedError("missing bearer token"))
		return
	}

	sess := student.Session{StudentID: mux.Vars(r)["studentId"], Token: token}
	if err := s.student.UpdateProfile(r.Context(), sess, update); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitInterest forwards an interest registration to the catalog with
// the student's bearer token.
func (s *Server) handleSubmitInterest(w http.ResponseWriter, r *http.Request) {
	var sub models.InterestSubmission
	if err := decode(r, &sub); err != nil {
		s.writeError(w, stderrors.NewCatalogBadResponseError(err))
		return
	}
	sub.ProductID = mux.Vars(r)["productId"]

	token := bearerToken(r)
	if token == "" {
		s.writeError(w, stderrors.NewStudentAuthFailedError("missing bearer token"))
		return
	}
	if err := s.catalog.SubmitInterest(r.Context(), token, sub); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
