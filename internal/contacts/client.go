// internal/contacts/client.go
package contacts

import (
	"context"
	"time"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/httpclient"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// Client talks to the contacts service, which keeps marketing/CRM contact
// records keyed by phone or email.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"client": "contacts"}),
	}
}

// UpsertRequest carries the contact fields captured before and during the
// wizard. The service matches on phone or email and merges.
type UpsertRequest struct {
	FullName         string `json:"full_name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	IntakeMonth      string `json:"intake_month,omitempty"`
	IntakeYear       string `json:"intake_year,omitempty"`
	DegreeLevel      string `json:"degree_level,omitempty"`
	StudyDestination string `json:"study_destination,omitempty"`
	Source           string `json:"source,omitempty"`
}

// Upsert creates or merges a contact record.
func (c *Client) Upsert(ctx context.Context, req UpsertRequest) (*models.ContactProfile, error) {
	var out models.ContactProfile
	if err := c.http.PostJSON(ctx, c.baseURL+"/contacts/upsert", nil, req, &out); err != nil {
		c.logger.Warn("contact upsert failed", map[string]interface{}{"error": err.Error()})
		return nil, stderrors.NewContactUpsertFailedError(err)
	}
	return &out, nil
}

// Lookup fetches the contact record for a verified phone, used to pre-fill
// browse filters. A missing contact is not an error; it returns nil.
func (c *Client) Lookup(ctx context.Context, phone string) (*models.ContactProfile, error) {
	var out models.ContactProfile
	err := c.http.GetJSON(ctx, c.baseURL+"/contacts/by-phone/"+phone, nil, &out)
	if err != nil {
		c.logger.Debug("contact lookup missed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}
	return &out, nil
}
