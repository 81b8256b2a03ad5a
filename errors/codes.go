package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Contract errors (detected before any adapter activity)
const (
	// ErrCodeInvalidConfig indicates a request configuration violates its contract.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeMissingField indicates a required configuration field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeTransformFailed indicates a data transformer returned an error.
	ErrCodeTransformFailed ErrorCode = "TRANSFORM_FAILED"
)

// Completion errors (delivered through the rejected path)
const (
	// ErrCodeBadAdapter indicates the adapter failed while being invoked.
	ErrCodeBadAdapter ErrorCode = "BAD_ADAPTER"
	// ErrCodeRequestFailed indicates the adapter reported a transport failure.
	ErrCodeRequestFailed ErrorCode = "REQUEST_FAILED"
	// ErrCodeValidateStatus indicates a response failed status validation.
	ErrCodeValidateStatus ErrorCode = "VALIDATE_STATUS"
	// ErrCodeCanceled indicates the caller canceled the request.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRequestFailed:  true,
	ErrCodeBadAdapter:     false,
	ErrCodeValidateStatus: false,
	ErrCodeCanceled:       false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
