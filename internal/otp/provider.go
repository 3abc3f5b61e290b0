// internal/otp/provider.go
package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/httpclient"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
)

// Provider delivers a generated code to a phone over some SMS channel.
type Provider interface {
	SendCode(ctx context.Context, countryCode, number, code string) error
}

// GupshupProvider ships codes through the Gupshup gateway sitting behind the
// platform's API. The code is generated locally and handed to the gateway;
// the gateway only delivers it.
type GupshupProvider struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewGupshupProvider(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *GupshupProvider {
	return &GupshupProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"provider": "gupshup"}),
	}
}

type gupshupSendRequest struct {
	CountryCode string `json:"country_code"`
	Number      string `json:"number"`
	OtpCode     string `json:"otp_code"`
}

func (p *GupshupProvider) SendCode(ctx context.Context, countryCode, number, code string) error {
	endpoint := p.baseURL + "/send-otp"
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}

	req := gupshupSendRequest{CountryCode: countryCode, Number: number, OtpCode: code}
	if err := p.http.PostJSON(ctx, endpoint, headers, req, nil); err != nil {
		return fmt.Errorf("gupshup send failed: %w", err)
	}
	return nil
}

// SNSService abstracts the AWS SNS client for testing.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSProvider is the fallback SMS channel used when the primary gateway is
// down, publishing directly through AWS SNS.
type SNSProvider struct {
	client SNSService
	logger logger.Logger
}

func NewSNSProvider(ctx context.Context, region string, log logger.Logger) (*SNSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNSProvider{
		client: sns.NewFromConfig(cfg),
		logger: log.WithFields(map[string]interface{}{"provider": "sns"}),
	}, nil
}

// NewSNSProviderWithClient wires a preconstructed SNS client, used in tests.
func NewSNSProviderWithClient(client SNSService, log logger.Logger) *SNSProvider {
	return &SNSProvider{
		client: client,
		logger: log.WithFields(map[string]interface{}{"provider": "sns"}),
	}
}

func (p *SNSProvider) SendCode(ctx context.Context, countryCode, number, code string) error {
	message := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(message),
		PhoneNumber: aws.String("+" + countryCode + number),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}
	return nil
}
