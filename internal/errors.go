package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeForbidden  ErrorType = "FORBIDDEN"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidMonth     ErrorCode = "INVALID_MONTH"
	ErrCodeInvalidCommand   ErrorCode = "INVALID_COMMAND"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"

	ErrCodeRecordNotFound    ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeStaffNotFound     ErrorCode = "STAFF_NOT_FOUND"
	ErrCodeNoPendingLeave    ErrorCode = "NO_PENDING_LEAVE"
	ErrCodeNoPayrollConfig   ErrorCode = "NO_PAYROLL_CONFIG"
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"

	ErrCodeAlreadyClockedOut ErrorCode = "ALREADY_CLOCKED_OUT"
	ErrCodeOnLeaveToday      ErrorCode = "ON_LEAVE_TODAY"
	ErrCodeNonWorkingDay     ErrorCode = "NON_WORKING_DAY"
	ErrCodeAllNonWorkingDays ErrorCode = "ALL_NON_WORKING_DAYS"
	ErrCodeDuplicateBonus    ErrorCode = "DUPLICATE_BONUS"

	ErrCodeHolidaySourceDown ErrorCode = "HOLIDAY_SOURCE_DOWN"
	ErrCodeClassifierFailed  ErrorCode = "CLASSIFIER_FAILED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches by code, so a WithCause clone still compares equal to its
// sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewExternalError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

var (
	// ErrRecordNotFound is the repository-edge translation of a missing
	// row. Services branch on it; any other repository error is a store
	// failure and must propagate.
	ErrRecordNotFound = NewNotFoundError("record not found", ErrCodeRecordNotFound)

	ErrStaffNotFound   = NewNotFoundError("no staff record for this name", ErrCodeStaffNotFound)
	ErrNoPendingLeave  = NewNotFoundError("no matching pending request", ErrCodeNoPendingLeave)
	ErrNoPayrollConfig = NewNotFoundError("no payroll configuration for this user", ErrCodeNoPayrollConfig)

	ErrAlreadyClockedOut = NewConflictError("attendance already completed today", ErrCodeAlreadyClockedOut)
	ErrOnLeaveToday      = NewConflictError("on leave today, no clock-in needed", ErrCodeOnLeaveToday)
	ErrNonWorkingDay     = NewConflictError("non-working day, no clock-in required", ErrCodeNonWorkingDay)
	ErrAllNonWorkingDays = NewConflictError("all dates are non-working days", ErrCodeAllNonWorkingDays)
	ErrDuplicateBonus    = NewConflictError("bonus already recorded for this month", ErrCodeDuplicateBonus)

	ErrInvalidCredentials = NewUnauthorizedError("invalid API key", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
