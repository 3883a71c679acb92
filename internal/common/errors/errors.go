// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Match pipeline / catalog errors
const (
	ErrCodeCatalogUnavailable      ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogQueryFailed      ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeProfileValidationFailed ErrorCode = "PROFILE_VALIDATION_FAILED"

	ErrCodeScenarioValidationFailed ErrorCode = "SCENARIO_VALIDATION_FAILED"
	ErrCodeMatchRunFailed           ErrorCode = "MATCH_RUN_FAILED"
	ErrCodeRecordBuildFailed        ErrorCode = "DECISION_RECORD_BUILD_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeAuditIndexFailed              ErrorCode = "AUDIT_INDEX_FAILED"
	ErrCodeAuditTimeout                  ErrorCode = "AUDIT_TIMEOUT"

	ErrCodeAeOverrideLookupFailed ErrorCode = "AE_OVERRIDE_LOOKUP_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewCatalogUnavailableError creates a retryable catalog fetch error.
func NewCatalogUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Lender catalog could not be loaded",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryFailedError creates a retryable catalog query error.
func NewCatalogQueryFailedError(lenderType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryFailed,
		Message:   "Lender catalog query error",
		Details:   fmt.Sprintf("lenderType: %s, error: %s", lenderType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileValidationFailedError creates a non-retryable profile schema error.
func NewProfileValidationFailedError(lenderID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileValidationFailed,
		Message:   "Lender profile failed schema validation",
		Details:   fmt.Sprintf("lenderId: %s, %s", lenderID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScenarioValidationFailedError creates a non-retryable scenario payload error.
func NewScenarioValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScenarioValidationFailed,
		Message:   "Scenario payload could not be decoded",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchRunFailedError creates a retryable match pipeline error.
func NewMatchRunFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchRunFailed,
		Message:   "Lender match run failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordBuildFailedError creates a non-retryable record assembly error.
func NewRecordBuildFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordBuildFailed,
		Message:   "Decision record could not be assembled",
		Details:   details,
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

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Callers are
// expected to fall through to the database when they see this.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Catalog cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexFailedError creates a retryable audit indexing error.
func NewAuditIndexFailedError(recordID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Decision record indexing failed",
		Details:   fmt.Sprintf("recordId: %s, error: %s", recordID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditTimeoutError creates a retryable audit timeout error.
func NewAuditTimeoutError(recordID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditTimeout,
		Message:   "Decision record indexing timeout",
		Details:   fmt.Sprintf("recordId: %s", recordID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAeOverrideLookupFailedError creates a retryable AE override lookup error.
func NewAeOverrideLookupFailedError(lenderName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAeOverrideLookupFailed,
		Message:   "AE override lookup failed",
		Details:   fmt.Sprintf("lenderName: %s, error: %s", lenderName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCatalogUnavailable:            "CATALOG_UNAVAILABLE",
	ErrCodeCatalogQueryFailed:            "CATALOG_QUERY_FAILED",
	ErrCodeProfileValidationFailed:       "PROFILE_VALIDATION_FAILED",
	ErrCodeScenarioValidationFailed:      "SCENARIO_VALIDATION_FAILED",
	ErrCodeMatchRunFailed:                "MATCH_RUN_FAILED",
	ErrCodeRecordBuildFailed:             "DECISION_RECORD_BUILD_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeCacheUnavailable:              "CACHE_UNAVAILABLE",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeAuditIndexFailed:              "AUDIT_INDEX_FAILED",
	ErrCodeAuditTimeout:                  "AUDIT_TIMEOUT",
	ErrCodeAeOverrideLookupFailed:        "AE_OVERRIDE_LOOKUP_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error class.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodeCatalogQueryFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeAuditIndexFailed,
		ErrCodeAeOverrideLookupFailed,
		ErrCodeMatchRunFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeAuditTimeout,
		ErrCodeCacheUnavailable:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "PROFILE"):
		return "CATALOG"
	case strings.Contains(codeStr, "SCENARIO") || strings.Contains(codeStr, "MATCH") || strings.Contains(codeStr, "RECORD_BUILD"):
		return "MATCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "CACHE"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "AUDIT"):
		return "AUDIT"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
