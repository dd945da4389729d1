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
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"
)

// Identity error codes
const (
	// ErrCodeTenantRequired is used when X-Tenant-ID is missing or malformed
	ErrCodeTenantRequired = "ERR_TENANT_REQUIRED"
	// ErrCodeOperatorRequired is used when X-Operator-ID is missing
	ErrCodeOperatorRequired = "ERR_OPERATOR_REQUIRED"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
	ErrCodeConflict = "ERR_CONFLICT"
)

// Console error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the dialog state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeRunInProgress is used when a consolidation run is already running
	ErrCodeRunInProgress = "ERR_RUN_IN_PROGRESS"
	// ErrCodeNoEligibleItems is used when no selected order item can be consolidated
	ErrCodeNoEligibleItems = "ERR_NO_ELIGIBLE_ITEMS"
	// ErrCodeNothingSelected is used when a bulk action has an empty selection
	ErrCodeNothingSelected = "ERR_NOTHING_SELECTED"
	// ErrCodeNotSelectable is used when a terminal or deleted record is toggled
	ErrCodeNotSelectable = "ERR_NOT_SELECTABLE"
	// ErrCodeTerminalRecord is used when a consolidated record is modified
	ErrCodeTerminalRecord = "ERR_TERMINAL_RECORD"
	// ErrCodeInvalidShippingMethod is used for unknown shipping methods
	ErrCodeInvalidShippingMethod = "ERR_INVALID_SHIPPING_METHOD"
)

// Ledger error codes
const (
	// ErrCodeLedgerUnavailable is used when the ledger cannot be reached
	ErrCodeLedgerUnavailable = "ERR_LEDGER_UNAVAILABLE"
	// ErrCodeLedgerRejected is used when the ledger refuses a call
	ErrCodeLedgerRejected = "ERR_LEDGER_REJECTED"
	// ErrCodeLedgerInvalidResponse is used when a ledger reply cannot be decoded
	ErrCodeLedgerInvalidResponse = "ERR_LEDGER_INVALID_RESPONSE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
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
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Identity errors
	ErrCodeTenantRequired:   http.StatusBadRequest,
	ErrCodeOperatorRequired: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	// Console state conflicts -> 409 Conflict
	ErrCodeInvalidState:   http.StatusConflict,
	ErrCodeRunInProgress:  http.StatusConflict,
	ErrCodeNotSelectable:  http.StatusConflict,
	ErrCodeTerminalRecord: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeNoEligibleItems: http.StatusUnprocessableEntity,
	ErrCodeNothingSelected: http.StatusUnprocessableEntity,

	// Ledger errors -> 502 Bad Gateway
	ErrCodeLedgerUnavailable:     http.StatusBadGateway,
	ErrCodeLedgerRejected:        http.StatusBadGateway,
	ErrCodeLedgerInvalidResponse: http.StatusBadGateway,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:            http.StatusBadRequest,
	ErrCodeInvalidInput:          http.StatusBadRequest,
	ErrCodeInvalidJSON:           http.StatusBadRequest,
	ErrCodeInvalidShippingMethod: http.StatusBadRequest,
	ErrCodePayloadTooLarge:       http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain and ledger error codes to the
// standardized codes returned by the API
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"RUN_IN_PROGRESS":         ErrCodeRunInProgress,
	"NO_ELIGIBLE_ITEMS":       ErrCodeNoEligibleItems,
	"NOTHING_SELECTED":        ErrCodeNothingSelected,
	"NOT_SELECTABLE":          ErrCodeNotSelectable,
	"TERMINAL_RECORD":         ErrCodeTerminalRecord,
	"INVALID_SHIPPING_METHOD": ErrCodeInvalidShippingMethod,
	"TRANSPORT_ERROR":         ErrCodeLedgerUnavailable,
	"INVALID_RESPONSE":        ErrCodeLedgerInvalidResponse,
	"REJECTED":                ErrCodeLedgerRejected,
	"EXTERNAL_CALL_FAILED":    ErrCodeLedgerRejected,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
