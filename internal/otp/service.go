// internal/otp/service.go
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/metrics"
)

var (
	nonDigits   = regexp.MustCompile(`\D`)
	exactSixDig = regexp.MustCompile(`^\d{6}$`)
)

// ServiceConfig tunes code lifetime and delivery behavior.
type ServiceConfig struct {
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	// FailOpen treats a provider delivery failure as success, letting the
	// user proceed when the SMS gateway is down. Off unless explicitly
	// enabled.
	FailOpen           bool
	DefaultCountryCode string
}

// Service issues and verifies SMS one-time codes. Codes are generated here,
// stored with a TTL and shipped to the delivery provider; the provider never
// generates codes.
type Service struct {
	store    Store
	provider Provider
	fallback Provider
	cfg      ServiceConfig
	logger   logger.Logger
}

func NewService(store Store, provider Provider, cfg ServiceConfig, log logger.Logger) *Service {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 5 * time.Minute
	}
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = 30 * time.Second
	}
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = "91"
	}
	return &Service{
		store:    store,
		provider: provider,
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "otp-service"}),
	}
}

// WithFallback attaches a secondary delivery channel tried when the primary
// provider fails.
func (s *Service) WithFallback(p Provider) *Service {
	s.fallback = p
	return s
}

// NormalizePhone strips everything but digits and validates the length. The
// returned string is the canonical storage key for the phone.
func NormalizePhone(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) < 10 || len(digits) > 15 {
		return "", stderrors.NewOTPPhoneInvalidError(
			fmt.Sprintf("phone must contain 10 to 15 digits, got %d", len(digits)))
	}
	return digits, nil
}

// splitPhone separates a normalized phone into country code and local number.
// The last ten digits are the local number; anything before them is the
// country code, defaulting when the phone is exactly ten digits.
func (s *Service) splitPhone(digits string) (countryCode, number string) {
	if len(digits) <= 10 {
		return s.cfg.DefaultCountryCode, digits
	}
	return digits[:len(digits)-10], digits[len(digits)-10:]
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Send issues a fresh code for the phone and delivers it. A send inside the
// resend cooldown is rejected with the remaining seconds; a resend after the
// cooldown replaces the stored code, so only the newest code verifies.
func (s *Service) Send(ctx context.Context, rawPhone string) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		metrics.OTPSends.WithLabelValues("sms", "rejected").Inc()
		return err
	}

	remaining, err := s.store.Cooldown(ctx, phone)
	if err != nil {
		metrics.OTPSends.WithLabelValues("sms", "error").Inc()
		return stderrors.NewOTPStoreFailedError(err)
	}
	if remaining > 0 {
		metrics.OTPSends.WithLabelValues("sms", "cooldown").Inc()
		return stderrors.NewOTPResendCooldownError(int(remaining.Round(time.Second).Seconds()))
	}

	code, err := generateCode()
	if err != nil {
		return stderrors.NewOTPSendFailedError(err)
	}

	if err := s.store.SaveCode(ctx, phone, code, s.cfg.CodeTTL); err != nil {
		metrics.OTPSends.WithLabelValues("sms", "error").Inc()
		return stderrors.NewOTPStoreFailedError(err)
	}

	countryCode, number := s.splitPhone(phone)
	if err := s.deliver(ctx, countryCode, number, code); err != nil {
		if !s.cfg.FailOpen {
			metrics.OTPSends.WithLabelValues("sms", "error").Inc()
			return stderrors.NewOTPSendFailedError(err)
		}
		s.logger.Warn("otp delivery failed, continuing fail-open", map[string]interface{}{
			"phone": maskPhone(phone),
			"error": err.Error(),
		})
	}

	if err := s.store.MarkSent(ctx, phone, s.cfg.ResendCooldown); err != nil {
		s.logger.Warn("failed to arm resend cooldown", map[string]interface{}{
			"phone": maskPhone(phone),
			"error": err.Error(),
		})
	}

	metrics.OTPSends.WithLabelValues("sms", "ok").Inc()
	s.logger.Info("otp sent", map[string]interface{}{"phone": maskPhone(phone)})
	return nil
}

func (s *Service) deliver(ctx context.Context, countryCode, number, code string) error {
	err := s.provider.SendCode(ctx, countryCode, number, code)
	if err == nil || s.fallback == nil {
		return err
	}

	s.logger.Warn("primary otp channel failed, trying fallback", map[string]interface{}{
		"error": err.Error(),
	})
	if fbErr := s.fallback.SendCode(ctx, countryCode, number, code); fbErr != nil {
		return fmt.Errorf("primary: %v, fallback: %w", err, fbErr)
	}
	return nil
}

// Verify checks a submitted code against the stored one. A mismatch leaves
// the stored code alive for another attempt; success consumes it. Attempts
// are bounded only by the code's TTL.
func (s *Service) Verify(ctx context.Context, rawPhone, code string) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return err
	}

	if !exactSixDig.MatchString(code) {
		metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return stderrors.NewOTPCodeInvalidError("code must be exactly 6 digits")
	}

	stored, err := s.store.GetCode(ctx, phone)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return stderrors.NewOTPStoreFailedError(err)
	}
	if stored == "" {
		metrics.OTPVerifications.WithLabelValues("expired").Inc()
		return stderrors.NewOTPCodeExpiredError(maskPhone(phone))
	}
	if stored != code {
		metrics.OTPVerifications.WithLabelValues("mismatch").Inc()
		return stderrors.NewOTPCodeInvalidError("code does not match")
	}

	if err := s.store.DeleteCode(ctx, phone); err != nil {
		s.logger.Warn("failed to consume verified code", map[string]interface{}{
			"phone": maskPhone(phone),
			"error": err.Error(),
		})
	}

	metrics.OTPVerifications.WithLabelValues("ok").Inc()
	s.logger.Info("otp verified", map[string]interface{}{"phone": maskPhone(phone)})
	return nil
}

// maskPhone keeps the last four digits for log correlation.
func maskPhone(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
