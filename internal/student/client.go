// internal/student/client.go
package student

import (
	"context"
	"time"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/httpclient"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
)

// Client talks to the student identity service: signup, login and profile
// updates. Profile updates require the bearer token issued at login.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"client": "student"}),
	}
}

type SignupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the identity the service hands back on signup or login.
type Session struct {
	StudentID string `json:"student_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type ProfileUpdate struct {
	FullName         string `json:"full_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	StudyDestination string `json:"study_destination,omitempty"`
	StudyLevel       string `json:"study_level,omitempty"`
	School           string `json:"school,omitempty"`
	Program          string `json:"program,omitempty"`
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	var out Session
	if err := c.http.PostJSON(ctx, c.baseURL+"/student/signup", nil, req, &out); err != nil {
		return nil, stderrors.NewStudentAuthFailedError(err.Error())
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var out Session
	if err := c.http.PostJSON(ctx, c.baseURL+"/student/login", nil, req, &out); err != nil {
		return nil, stderrors.NewStudentAuthFailedError(err.Error())
	}
	return &out, nil
}

// UpdateProfile writes profile fields for the authenticated student.
func (c *Client) UpdateProfile(ctx context.Context, session Session, update ProfileUpdate) error {
	headers := map[string]string{"Authorization": "Bearer " + session.Token}
	endpoint := c.baseURL + "/student/" + session.StudentID
	if err := c.http.PutJSON(ctx, endpoint, headers, update, nil); err != nil {
		c.logger.Warn("student profile update failed", map[string]interface{}{
			"studentId": session.StudentID,
			"error":     err.Error(),
		})
		return stderrors.NewStudentAuthFailedError(err.Error())
	}
	return nil
}
