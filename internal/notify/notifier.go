// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// SESService abstracts the AWS SES client for testing.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService abstracts the AWS SNS client for testing.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier sends application-status updates to students over email and SMS.
type Notifier struct {
	sesClient SESService
	snsClient SNSService
	sender    string
	logger    logger.Logger
}

// New builds a notifier against real AWS clients.
func New(ctx context.Context, region, senderEmail string, log logger.Logger) (*Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Notifier{
		sesClient: ses.NewFromConfig(cfg),
		snsClient: sns.NewFromConfig(cfg),
		sender:    senderEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}, nil
}

// NewWithClients wires preconstructed clients, used in tests.
func NewWithClients(sesClient SESService, snsClient SNSService, senderEmail string, log logger.Logger) *Notifier {
	return &Notifier{
		sesClient: sesClient,
		snsClient: snsClient,
		sender:    senderEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

var statusSubjects = map[string]string{
	models.ApplicationStatusSubmitted: "Your loan application has been submitted",
	models.ApplicationStatusInReview:  "Your loan application is in review",
	models.ApplicationStatusApproved:  "Your loan application has been approved",
	models.ApplicationStatusRejected:  "Update on your loan application",
}

func statusBody(app models.Application) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour application %s with %s for an amount of %d is now %q.\n\nThe EduLoan Team",
		app.Profile.FullName, app.ID, app.Lender.Name, app.LoanAmount, app.Status)
}

// EmailStatus sends the status update email for an application.
func (n *Notifier) EmailStatus(ctx context.Context, app models.Application) error {
	subject, ok := statusSubjects[app.Status]
	if !ok {
		subject = "Update on your loan application"
	}

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{app.Profile.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(statusBody(app))},
			},
		},
	})
	if err != nil {
		n.logger.Error("status email failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
		return stderrors.NewNotificationSendFailedError("email", err)
	}

	n.logger.Info("status email sent", map[string]interface{}{
		"applicationId": app.ID,
		"status":        app.Status,
	})
	return nil
}

// SMSStatus sends the status update text for an application.
func (n *Notifier) SMSStatus(ctx context.Context, app models.Application) error {
	message := fmt.Sprintf("EduLoan: application %s is now %s.", shortID(app.ID), app.Status)

	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(message),
		PhoneNumber: aws.String("+91" + app.Profile.Phone),
	})
	if err != nil {
		n.logger.Error("status sms failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
		return stderrors.NewNotificationSendFailedError("sms", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
