package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every module.
const (
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeMessagingError     ErrorCode = "COMMON_010"
	ErrCodeStorageError       ErrorCode = "COMMON_011"
	ErrCodeConfigInvalid      ErrorCode = "COMMON_012"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_013"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Alias/Pattern Registry error codes.  All of these are configuration errors:
// they surface at registry load time and abort startup.
const (
	// ErrCodeRegistryAmbiguousAlias is returned when one alias phrase maps to
	// two different canonical names within the same category.  Ambiguity is
	// rejected at load time, never resolved by last-write-wins.
	ErrCodeRegistryAmbiguousAlias ErrorCode = "REG_001"

	// ErrCodeRegistryInvalidPattern is returned when a configured regular
	// expression fails to compile.  Extraction itself never compiles patterns.
	ErrCodeRegistryInvalidPattern ErrorCode = "REG_002"

	// ErrCodeRegistrySourceInvalid is returned when the registry source file
	// exists but cannot be parsed.  A missing source is not an error; the
	// registry falls back to its built-in default set instead.
	ErrCodeRegistrySourceInvalid ErrorCode = "REG_003"
)

// Mention extraction error codes.
const (
	ErrCodeExtractionCategoryUnknown ErrorCode = "EXT_001"
	ErrCodeExtractionFailed          ErrorCode = "EXT_002"
)

// Classification error codes.
const (
	ErrCodeClassificationFailed ErrorCode = "CLS_001"
)

// Completeness scoring error codes.
const (
	// ErrCodeScoringFieldsMissing is returned when a category has no critical
	// field list configured and is not explicitly exempted from scoring.
	ErrCodeScoringFieldsMissing ErrorCode = "SCR_001"
)

// Catalog error codes.
const (
	ErrCodeCatalogToolNotFound   ErrorCode = "CAT_001"
	ErrCodeCatalogCategoryUnknown ErrorCode = "CAT_002"
)

// Mining job error codes.
const (
	ErrCodeMiningJobNotFound ErrorCode = "JOB_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeConfigInvalid:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeRegistryAmbiguousAlias: http.StatusInternalServerError,
	ErrCodeRegistryInvalidPattern: http.StatusInternalServerError,
	ErrCodeRegistrySourceInvalid:  http.StatusInternalServerError,

	ErrCodeExtractionCategoryUnknown: http.StatusBadRequest,
	ErrCodeExtractionFailed:          http.StatusInternalServerError,
	ErrCodeClassificationFailed:      http.StatusInternalServerError,
	ErrCodeScoringFieldsMissing:      http.StatusInternalServerError,

	ErrCodeCatalogToolNotFound:    http.StatusNotFound,
	ErrCodeCatalogCategoryUnknown: http.StatusBadRequest,
	ErrCodeMiningJobNotFound:      http.StatusNotFound,
}

// HTTPStatus returns the HTTP status code associated with c, defaulting to
// 500 for unmapped codes.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
