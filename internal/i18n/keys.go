// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"
	KeyWarning = "warning"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Valuation requests
	KeyValuationCreated     = "valuation.created"
	KeyValuationUpdated     = "valuation.updated"
	KeyValuationNotFound    = "valuation.not_found"
	KeyValuationRejected    = "valuation.rejected"
	KeyValuationRevision    = "valuation.revision_requested"
	KeyValuationCompleted   = "valuation.completed"
	KeyValuationApproved    = "valuation.approved"
	KeyValuationDeclined    = "valuation.declined"
	KeyValuationTransferred = "valuation.transferred"
	KeyValuationConflict    = "valuation.conflict_retry"

	// Appointments
	KeyAppointmentProposed  = "appointment.proposed"
	KeyAppointmentNotFound  = "appointment.not_found"
	KeyAppointmentResponded = "appointment.responded"
	KeyAppointmentFinalized = "appointment.finalized"

	// Documents
	KeyDocumentUploaded    = "document.uploaded"
	KeyDocumentInvalidType = "document.invalid_type"

	// Conversations
	KeyConversationNotFound = "conversation.not_found"
	KeyConversationClosed   = "conversation.closed"
	KeyMessageSent          = "message.sent"
	KeyMessageBlocked       = "message.blocked_contact"
	KeyMessageTooLong       = "message.too_long"

	// Pricing
	KeyPricingImported    = "pricing.imported"
	KeyPricingBadHeader   = "pricing.bad_header"
	KeyPricingNoPrice     = "pricing.no_price"
	KeyLandPriceNotFound  = "land_price.not_found"

	// Banks / matching
	KeyBankNotFound       = "bank.not_found"
	KeyCompanyNotFound    = "company.not_found"
	KeyApprovalRecorded   = "approval.recorded"
	KeyLoanPolicyNotFound = "loan_policy.not_found"

	// Admin
	KeyAdminActionSuccess = "admin.action_success"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
