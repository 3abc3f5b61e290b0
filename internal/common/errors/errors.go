// Package errors provides standardized error handling across the platform.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeOTPPhoneInvalid   ErrorCode = "OTP_PHONE_INVALID"
	ErrCodeOTPCodeInvalid    ErrorCode = "OTP_CODE_INVALID"
	ErrCodeOTPCodeExpired    ErrorCode = "OTP_CODE_EXPIRED"
	ErrCodeOTPSendFailed     ErrorCode = "OTP_SEND_FAILED"
	ErrCodeOTPResendCooldown ErrorCode = "OTP_RESEND_COOLDOWN"
	ErrCodeOTPStoreFailed    ErrorCode = "OTP_STORE_FAILED"

	ErrCodeCatalogFetchFailed ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"
	ErrCodeCatalogBadResponse ErrorCode = "CATALOG_BAD_RESPONSE"

	ErrCodeFilterInvalidValue ErrorCode = "FILTER_INVALID_VALUE"

	ErrCodePresetNameRequired   ErrorCode = "PRESET_NAME_REQUIRED"
	ErrCodePresetEmptyFilters   ErrorCode = "PRESET_EMPTY_FILTERS"
	ErrCodePresetNotFound       ErrorCode = "PRESET_NOT_FOUND"
	ErrCodePresetStoreFailed    ErrorCode = "PRESET_STORE_FAILED"
	ErrCodePresetPayloadInvalid ErrorCode = "PRESET_PAYLOAD_INVALID"

	ErrCodeProfileValidationFailed ErrorCode = "PROFILE_VALIDATION_FAILED"
	ErrCodeStageOrderViolation     ErrorCode = "STAGE_ORDER_VIOLATION"
	ErrCodeLenderAmountInvalid     ErrorCode = "LENDER_AMOUNT_INVALID"

	ErrCodeContactUpsertFailed      ErrorCode = "CONTACT_UPSERT_FAILED"
	ErrCodeStudentAuthFailed        ErrorCode = "STUDENT_AUTH_FAILED"
	ErrCodeExchangeRateUnavailable  ErrorCode = "EXCHANGE_RATE_UNAVAILABLE"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSessionNotFound          ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewOTPPhoneInvalidError creates a non-retryable phone validation error.
func NewOTPPhoneInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOTPPhoneInvalid,
		Message:   "Phone number must contain 10 to 15 digits",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPCodeInvalidError creates a non-retryable verification mismatch error.
func NewOTPCodeInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOTPCodeInvalid,
		Message:   "Verification code did not match",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPCodeExpiredError creates a non-retryable expiry error.
func NewOTPCodeExpiredError(phone string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOTPCodeExpired,
		Message:   "No active verification code for this phone",
		Details:   fmt.Sprintf("phone: %s", phone),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPSendFailedError creates a retryable provider delivery error.
func NewOTPSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOTPSendFailed,
		Message:   "OTP provider delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPResendCooldownError reports the remaining cooldown in seconds.
func NewOTPResendCooldownError(remainingSeconds int) *StandardError {
	return &StandardError{
		Code:      ErrCodeOTPResendCooldown,
		Message:   "Resend is rate limited",
		Details:   fmt.Sprintf("retry in %d seconds", remainingSeconds),
		Retryable: false,
		Metadata:  map[string]interface{}{"remainingSeconds": remainingSeconds},
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPStoreFailedError creates a retryable store error.
func NewOTPStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOTPStoreFailed,
		Message:   "Verification store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchFailedError creates a retryable catalog error.
func NewCatalogFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Loan catalog request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogTimeoutError creates a retryable timeout error.
func NewCatalogTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Loan catalog request timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogBadResponseError creates a non-retryable decode error.
func NewCatalogBadResponseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogBadResponse,
		Message:   "Loan catalog returned an unexpected payload",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFilterInvalidValueError creates a non-retryable filter validation error.
func NewFilterInvalidValueError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFilterInvalidValue,
		Message:   fmt.Sprintf("Invalid value for filter '%s'", field),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPresetNameRequiredError creates a non-retryable preset validation error.
func NewPresetNameRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodePresetNameRequired,
		Message:   "Preset name must not be blank",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPresetEmptyFiltersError creates a non-retryable preset validation error.
func NewPresetEmptyFiltersError() *StandardError {
	return &StandardError{
		Code:      ErrCodePresetEmptyFilters,
		Message:   "Cannot save a preset with no applied filters",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPresetNotFoundError creates a non-retryable lookup error.
func NewPresetNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodePresetNotFound,
		Message:   "Preset not found",
		Details:   fmt.Sprintf("presetId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPresetStoreFailedError creates a retryable persistence error.
func NewPresetStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePresetStoreFailed,
		Message:   "Preset persistence error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPresetPayloadInvalidError creates a non-retryable stored-payload error.
func NewPresetPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePresetPayloadInvalid,
		Message:   "Stored preset filters failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileValidationFailedError creates a non-retryable profile error.
func NewProfileValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileValidationFailed,
		Message:   "Student profile validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageOrderViolationError creates a non-retryable wizard ordering error.
func NewStageOrderViolationError(current, attempted string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageOrderViolation,
		Message:   "Wizard stage completed out of order",
		Details:   fmt.Sprintf("current: %s, attempted: %s", current, attempted),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLenderAmountInvalidError creates a non-retryable selection error.
func NewLenderAmountInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLenderAmountInvalid,
		Message:   "Requested loan amount is outside the lender's range",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContactUpsertFailedError creates a retryable contacts-service error.
func NewContactUpsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContactUpsertFailed,
		Message:   "Contact upsert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStudentAuthFailedError creates a non-retryable auth error.
func NewStudentAuthFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStudentAuthFailed,
		Message:   "Student authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExchangeRateUnavailableError notes that the fallback table was used.
func NewExchangeRateUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExchangeRateUnavailable,
		Message:   "Exchange rate service unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable registry lookup error.
func NewSessionNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Browse session not found or expired",
		Details:   fmt.Sprintf("sessionId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeOTPSendFailed,
		ErrCodeOTPStoreFailed,
		ErrCodeCatalogFetchFailed,
		ErrCodePresetStoreFailed,
		ErrCodeContactUpsertFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeDatabaseConnectionFailed:
		return 3

	case ErrCodeCatalogTimeout,
		ErrCodeExchangeRateUnavailable:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "OTP"):
		return "OTP"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "FILTER"):
		return "CATALOG"
	case strings.Contains(codeStr, "PRESET"):
		return "PRESET"
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "STAGE") || strings.Contains(codeStr, "LENDER"):
		return "WIZARD"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "SESSION"):
		return "INFRA"
	default:
		return "OTHER"
	}
}
