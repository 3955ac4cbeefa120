package types

import "fmt"

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeTimeout        ErrorType = "timeout"
)

// ClinicError represents a structured error in the clinic backend
type ClinicError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *ClinicError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *ClinicError) Unwrap() error {
	return e.Cause
}

// Token and authorization error codes
const (
	ErrCodeTokenMalformed = "TOKEN_MALFORMED"
	ErrCodeTokenExpired   = "TOKEN_EXPIRED"
	ErrCodeRoleMismatch   = "ROLE_MISMATCH"
	ErrCodeUnknownSubject = "UNKNOWN_SUBJECT"
	ErrCodeForbidden      = "FORBIDDEN"
)

// Scheduling and ledger error codes
const (
	ErrCodeDoctorNotFound       = "DOCTOR_NOT_FOUND"
	ErrCodeSlotUnavailable      = "SLOT_UNAVAILABLE"
	ErrCodeAppointmentNotFound  = "APPOINTMENT_NOT_FOUND"
	ErrCodeAppointmentNotActive = "APPOINTMENT_NOT_ACTIVE"
	ErrCodePersistError         = "PERSIST_ERROR"
	ErrCodeStoreUnavailable     = "STORE_UNAVAILABLE"
)

// Directory and account error codes
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAdminNotFound      = "ADMIN_NOT_FOUND"
	ErrCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	ErrCodePatientNotFound    = "PATIENT_NOT_FOUND"
	ErrCodeDuplicateRecord    = "DUPLICATE_RECORD"
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrCodeInvalidInput       = "INVALID_INPUT"
)

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeAuthentication,
		Code:    code,
		Message: message,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeAuthorization,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(code, message string, cause error) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeTimeout,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the clinic error code carried by err, or "" when err is
// not a ClinicError.
func CodeOf(err error) string {
	if ce, ok := err.(*ClinicError); ok {
		return ce.Code
	}
	return ""
}
