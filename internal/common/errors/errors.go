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

const (
	ErrCodeProductNotFound    ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeCatalogAuthFailed  ErrorCode = "CATALOG_AUTH_FAILED"
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"

	ErrCodeClassificationFailed  ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeKeywordTableInvalid   ErrorCode = "KEYWORD_TABLE_INVALID"
	ErrCodeAttributesUnavailable ErrorCode = "ATTRIBUTES_UNAVAILABLE"

	ErrCodeScoreBlocked     ErrorCode = "SCORE_BLOCKED"
	ErrCodeScoreNotComputed ErrorCode = "SCORE_NOT_COMPUTED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeIndexingFailed                ErrorCode = "INDEXING_FAILED"
	ErrCodeInvalidFilterFormat           ErrorCode = "INVALID_FILTER_FORMAT"

	ErrCodeReviewRoutingFailed ErrorCode = "REVIEW_ROUTING_FAILED"
	ErrCodeDigestSendFailed    ErrorCode = "DIGEST_SEND_FAILED"

	ErrCodeBatchStateFailed ErrorCode = "BATCH_STATE_FAILED"
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

// NewProductNotFoundError creates a non-retryable catalog lookup error.
func NewProductNotFoundError(productDetailID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductNotFound,
		Message:   "Product not found in catalog",
		Details:   fmt.Sprintf("productDetailId: %d", productDetailID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogAuthFailedError creates a retryable catalog authentication error.
// Token issuance failures are usually transient.
func NewCatalogAuthFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogAuthFailed,
		Message:   "Catalog API authentication failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError creates a retryable catalog transport error.
func NewCatalogUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Catalog API unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogTimeoutError creates a retryable catalog timeout error.
func NewCatalogTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Catalog API timeout",
		Details:   "request exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError creates a non-retryable classification error.
// The pipeline is deterministic, so retrying the same text cannot help.
func NewClassificationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Product classification failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewKeywordTableInvalidError creates a non-retryable keyword table error.
func NewKeywordTableInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeKeywordTableInvalid,
		Message:   "Keyword table failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAttributesUnavailableError creates a non-retryable missing-attributes error.
func NewAttributesUnavailableError(productDetailID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeAttributesUnavailable,
		Message:   "Processed attributes not found for product",
		Details:   fmt.Sprintf("productDetailId: %d", productDetailID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoreBlockedError creates a non-retryable withheld-score error.
func NewScoreBlockedError(reasons []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoreBlocked,
		Message:   "Base score withheld pending manual review",
		Details:   strings.Join(reasons, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoreNotComputedError creates a non-retryable missing-score error.
func NewScoreNotComputedError(productDetailID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoreNotComputed,
		Message:   "Base score has not been computed for product",
		Details:   fmt.Sprintf("productDetailId: %d", productDetailID),
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
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Attribute cache unavailable",
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

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable document indexing error.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Product document indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReviewRoutingFailedError creates a retryable review routing error.
func NewReviewRoutingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReviewRoutingFailed,
		Message:   "Manual review routing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDigestSendFailedError creates a retryable digest delivery error.
func NewDigestSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDigestSendFailed,
		Message:   "Review digest delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchStateFailedError creates a retryable batch progress tracking error.
func NewBatchStateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchStateFailed,
		Message:   "Batch progress tracking failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProductNotFound:               "PRODUCT_NOT_FOUND",
	ErrCodeCatalogAuthFailed:             "CATALOG_AUTH_FAILED",
	ErrCodeCatalogUnavailable:            "CATALOG_UNAVAILABLE",
	ErrCodeCatalogTimeout:                "CATALOG_TIMEOUT",
	ErrCodeClassificationFailed:          "CLASSIFICATION_FAILED",
	ErrCodeKeywordTableInvalid:           "KEYWORD_TABLE_INVALID",
	ErrCodeAttributesUnavailable:         "ATTRIBUTES_UNAVAILABLE",
	ErrCodeScoreBlocked:                  "SCORE_BLOCKED",
	ErrCodeScoreNotComputed:              "SCORE_NOT_COMPUTED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeCacheUnavailable:              "CACHE_UNAVAILABLE",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeIndexingFailed:                "INDEXING_FAILED",
	ErrCodeInvalidFilterFormat:           "INVALID_FILTER_FORMAT",
	ErrCodeReviewRoutingFailed:           "REVIEW_ROUTING_FAILED",
	ErrCodeDigestSendFailed:              "DIGEST_SEND_FAILED",
	ErrCodeBatchStateFailed:              "BATCH_STATE_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogAuthFailed,
		ErrCodeCatalogUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeCacheUnavailable,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeIndexingFailed,
		ErrCodeReviewRoutingFailed,
		ErrCodeDigestSendFailed,
		ErrCodeBatchStateFailed:
		return 3 // Retryable technical errors

	case ErrCodeCatalogTimeout,
		ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
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
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "PRODUCT_NOT_FOUND"):
		return "CATALOG"
	case strings.Contains(codeStr, "CLASSIFICATION") || strings.Contains(codeStr, "KEYWORD") || strings.Contains(codeStr, "ATTRIBUTES"):
		return "CLASSIFICATION"
	case strings.Contains(codeStr, "SCORE"):
		return "SCORING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "BATCH"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "REVIEW") || strings.Contains(codeStr, "DIGEST"):
		return "REVIEW"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
