// internal/wizard/orchestrator.go
package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// Stage names the steps of the application wizard, in order.
type Stage string

const (
	StageProfile         Stage = "profile"
	StageEligibility     Stage = "eligibility"
	StageLenderSelection Stage = "lender_selection"
	StageDocumentation   Stage = "documentation"
	StageTracking        Stage = "tracking"
	StageSummary         Stage = "summary"
)

var stageOrder = []Stage{
	StageProfile, StageEligibility, StageLenderSelection,
	StageDocumentation, StageTracking, StageSummary,
}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Orchestrator walks one user through the application wizard. Stages complete
// strictly in order, each emitting an artifact the next stage consumes.
// Profile is the one stage open to re-entry: re-submitting it overwrites the
// profile artifact but leaves every later artifact in place, so a corrected
// email does not force the user to re-pick a lender or re-upload documents.
type Orchestrator struct {
	mu     sync.Mutex
	logger logger.Logger
	now    func() time.Time

	current     Stage
	profile     *models.StudentProfile
	eligibility *models.EligibilityScore
	application *models.Application
}

func NewOrchestrator(log logger.Logger) *Orchestrator {
	return &Orchestrator{
		logger:  log.WithFields(map[string]interface{}{"component": "wizard"}),
		now:     time.Now,
		current: StageProfile,
	}
}

// Current returns the stage awaiting completion.
func (o *Orchestrator) Current() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// requireStage rejects a completion attempted out of order. Profile is exempt
// once it has been completed at least once.
func (o *Orchestrator) requireStage(want Stage) error {
	if o.current == want {
		return nil
	}
	if want == StageProfile && o.profile != nil {
		return nil
	}
	return stderrors.NewStageOrderViolationError(string(o.current), string(want))
}

// advanceFrom moves to the stage after done, unless the wizard is already
// further along (profile re-entry).
func (o *Orchestrator) advanceFrom(done Stage) {
	i := stageIndex(done)
	if i < 0 || i+1 >= len(stageOrder) {
		return
	}
	if stageIndex(o.current) <= i {
		o.current = stageOrder[i+1]
	}
}

// CompleteProfile validates and stores the profile artifact. On re-entry the
// profile is replaced wholesale and any live application picks up the new
// profile; eligibility is rescored since its inputs changed.
func (o *Orchestrator) CompleteProfile(p models.StudentProfile) (*models.EligibilityScore, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStage(StageProfile); err != nil {
		return nil, err
	}
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	o.profile = &p
	score := ScoreEligibility(p)
	o.eligibility = &score
	if o.application != nil {
		o.application.Profile = p
		o.application.Eligibility = score
		o.application.UpdatedAt = o.now().UTC()
	}
	o.advanceFrom(StageProfile)

	o.logger.Info("profile completed", map[string]interface{}{
		"profileId": p.ID,
		"score":     score.Score,
		"band":      score.Band,
	})
	return &score, nil
}

// CompleteEligibility acknowledges the scored eligibility and opens lender
// selection.
func (o *Orchestrator) CompleteEligibility() (*models.EligibilityScore, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStage(StageEligibility); err != nil {
		return nil, err
	}
	o.advanceFrom(StageEligibility)
	return o.eligibility, nil
}

// SelectLender records the chosen lender and requested amount, creating the
// application aggregate. The amount must sit inside the lender's band.
func (o *Orchestrator) SelectLender(lender models.Lender, amount int64) (*models.Application, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStage(StageLenderSelection); err != nil {
		return nil, err
	}
	if amount < lender.LoanAmountMin || amount > lender.LoanAmountMax {
		return nil, stderrors.NewLenderAmountInvalidError(fmt.Sprintf(
			"amount %d outside lender band %d-%d", amount, lender.LoanAmountMin, lender.LoanAmountMax))
	}

	now := o.now().UTC()
	o.application = &models.Application{
		ID:          uuid.New().String(),
		Profile:     *o.profile,
		Eligibility: *o.eligibility,
		Lender:      lender,
		LoanAmount:  amount,
		Status:      models.ApplicationStatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.advanceFrom(StageLenderSelection)

	o.logger.Info("lender selected", map[string]interface{}{
		"applicationId": o.application.ID,
		"lender":        lender.Name,
		"amount":        amount,
	})
	return o.application, nil
}

// AddDocument appends one uploaded document to the application.
func (o *Orchestrator) AddDocument(doc models.DocumentUpload) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStage(StageDocumentation); err != nil {
		return err
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = o.now().UTC()
	}
	o.application.Documents = append(o.application.Documents, doc)
	o.application.UpdatedAt = o.now().UTC()
	return nil
}

// CompleteDocumentation closes the upload stage and moves to tracking. At
// least one document must be on file.
func (o *Orchestrator) CompleteDocumentation() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStage(StageDocumentation); err != nil {
		return err
	}
	if len(o.application.Documents) == 0 {
		return stderrors.NewProfileValidationFailedError("at least one document is required")
	}
	o.application.Status = models.ApplicationStatusInReview
	o.application.UpdatedAt = o.now().UTC()
	o.advanceFrom(StageDocumentation)
	return nil
}

// SetStatus records a review outcome from tracking. Approval or rejection
// moves the wizard to its summary stage.
func (o *Orchestrator) SetStatus(status string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStage(StageTracking); err != nil {
		return err
	}
	switch status {
	case models.ApplicationStatusApproved, models.ApplicationStatusRejected:
		o.application.Status = status
		o.application.UpdatedAt = o.now().UTC()
		o.advanceFrom(StageTracking)
	case models.ApplicationStatusInReview:
		o.application.Status = status
		o.application.UpdatedAt = o.now().UTC()
	default:
		return stderrors.NewProfileValidationFailedError("unknown application status " + status)
	}
	return nil
}

// Application returns a copy of the current application aggregate, or nil
// before lender selection.
func (o *Orchestrator) Application() *models.Application {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.application == nil {
		return nil
	}
	app := *o.application
	app.Documents = append([]models.DocumentUpload(nil), o.application.Documents...)
	return &app
}

// Summary builds the loan summary for the completed application over the
// given tenure.
func (o *Orchestrator) Summary(tenureMonths int) (*models.LoanSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStage(StageSummary); err != nil {
		return nil, err
	}
	if tenureMonths <= 0 || tenureMonths > o.application.Lender.TenureMaxMonths {
		tenureMonths = o.application.Lender.TenureMaxMonths
	}
	s := BuildSummary(*o.application, tenureMonths)
	return &s, nil
}
