package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Billing rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeQuotaExceeded is used when a metered feature hits its monthly limit
	ErrCodeQuotaExceeded = "ERR_QUOTA_EXCEEDED"
	// ErrCodeDiscountApplied is used when the retention discount was already granted
	ErrCodeDiscountApplied = "ERR_DISCOUNT_ALREADY_APPLIED"
	// ErrCodeDiscountNotEligible is used when the payment history is too short for a discount
	ErrCodeDiscountNotEligible = "ERR_DISCOUNT_NOT_ELIGIBLE"
	// ErrCodeInvalidItemSet is used when processor line items resolve to more than one plan
	ErrCodeInvalidItemSet = "ERR_INVALID_ITEM_SET"
	// ErrCodePendingRequestExists is used when an open manual payment request blocks a new one
	ErrCodePendingRequestExists = "ERR_PENDING_REQUEST_EXISTS"
	// ErrCodePlanRequired is used when an addon purchase needs an active plan first
	ErrCodePlanRequired = "ERR_PLAN_REQUIRED"
	// ErrCodePlanAlreadyActive is used when the account already has an active plan
	ErrCodePlanAlreadyActive = "ERR_PLAN_ALREADY_ACTIVE"
	// ErrCodeBotAlreadyActive is used when the account already has the requested bot
	ErrCodeBotAlreadyActive = "ERR_BOT_ALREADY_ACTIVE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidSignature is used when a webhook signature fails verification
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Billing rule errors
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeQuotaExceeded:        http.StatusUnprocessableEntity,
	ErrCodeDiscountApplied:      http.StatusConflict,
	ErrCodeDiscountNotEligible:  http.StatusUnprocessableEntity,
	ErrCodeInvalidItemSet:       http.StatusUnprocessableEntity,
	ErrCodePendingRequestExists: http.StatusConflict,
	ErrCodePlanRequired:         http.StatusUnprocessableEntity,
	ErrCodePlanAlreadyActive:    http.StatusConflict,
	ErrCodeBotAlreadyActive:     http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeInvalidSignature: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"UNAUTHORIZED":             ErrCodeUnauthorized,
	"FORBIDDEN":                ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":     ErrCodeConcurrencyConflict,
	"QUOTA_EXCEEDED":           ErrCodeQuotaExceeded,
	"DISCOUNT_ALREADY_APPLIED": ErrCodeDiscountApplied,
	"DISCOUNT_NOT_ELIGIBLE":    ErrCodeDiscountNotEligible,
	"INVALID_ITEM_SET":         ErrCodeInvalidItemSet,
	"PENDING_REQUEST_EXISTS":   ErrCodePendingRequestExists,
	"PLAN_REQUIRED":            ErrCodePlanRequired,
	"PLAN_ALREADY_ACTIVE":      ErrCodePlanAlreadyActive,
	"BOT_ALREADY_ACTIVE":       ErrCodeBotAlreadyActive,
	"BAD_REQUEST":              ErrCodeBadRequest,
	"INTERNAL_ERROR":           ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the wire format
// If the code is already in the wire format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
