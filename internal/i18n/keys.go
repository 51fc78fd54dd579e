// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAgentAccessDenied      = "agent.access_denied"

	// Applications
	KeyApplicationCreated     = "application.created"
	KeyApplicationUpdated     = "application.updated"
	KeyApplicationNotFound    = "application.not_found"
	KeyApplicationSubmitted   = "application.submitted"
	KeyApplicationAssigned    = "application.assigned"
	KeyApplicationVerified    = "application.verified"
	KeyApplicationRejected    = "application.rejected"
	KeyApplicationDuplicate   = "application.duplicate_pending"
	KeyApplicationWrongState  = "application.wrong_state"
	KeyApplicationNotAssigned = "application.not_assigned_to_agent"

	// OTP
	KeyOTPSent          = "otp.sent"
	KeyOTPSentDev       = "otp.sent_dev"
	KeyOTPVerified      = "otp.verified"
	KeyOTPInvalid       = "otp.invalid_or_expired"
	KeyOTPEmailRequired = "otp.email_required"

	// Numbers
	KeyNumberNotFound    = "msisdn.not_found"
	KeyNumberUnavailable = "msisdn.unavailable"
	KeyNumberAssigned    = "msisdn.assigned"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
