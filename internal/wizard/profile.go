// internal/wizard/profile.go
package wizard

import (
	"fmt"
	"regexp"
	"strings"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

const minLoanAmount = 100000

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// ValidateProfile checks every profile field and returns the first failure as
// a profile-validation error. Amount fields share a floor: loans below one
// lakh are not brokered.
func ValidateProfile(p models.StudentProfile) error {
	var problems []string

	if len(strings.TrimSpace(p.FullName)) < 3 {
		problems = append(problems, "full name must be at least 3 characters")
	}
	if !emailPattern.MatchString(p.Email) {
		problems = append(problems, "email is not valid")
	}
	if !phonePattern.MatchString(p.Phone) {
		problems = append(problems, "phone must be exactly 10 digits")
	}
	if strings.TrimSpace(p.DateOfBirth) == "" {
		problems = append(problems, "date of birth is required")
	}
	if strings.TrimSpace(p.StudyDestination) == "" {
		problems = append(problems, "study destination is required")
	}
	if strings.TrimSpace(p.StudyLevel) == "" {
		problems = append(problems, "study level is required")
	}
	if strings.TrimSpace(p.School) == "" {
		problems = append(problems, "school is required")
	}
	if strings.TrimSpace(p.Program) == "" {
		problems = append(problems, "program is required")
	}
	if strings.TrimSpace(p.IntakeMonth) == "" {
		problems = append(problems, "intake month is required")
	}
	if strings.TrimSpace(p.IntakeYear) == "" {
		problems = append(problems, "intake year is required")
	}
	if p.CourseFee < minLoanAmount {
		problems = append(problems, fmt.Sprintf("course fee must be at least %d", minLoanAmount))
	}
	if p.RequestedAmount < minLoanAmount {
		problems = append(problems, fmt.Sprintf("requested amount must be at least %d", minLoanAmount))
	}

	if len(problems) > 0 {
		return stderrors.NewProfileValidationFailedError(strings.Join(problems, "; "))
	}
	return nil
}
