package schemas

// ErrorCode is a stable machine-readable error kind. Wire names are lowercase
// snake_case and never change.
type ErrorCode string

const (
	ErrCodeValidation         ErrorCode = "validation_error"
	ErrCodeUserNotFound       ErrorCode = "user_not_found"
	ErrCodeRateLimited        ErrorCode = "rate_limited"
	ErrCodeInvalidToken       ErrorCode = "invalid_token"
	ErrCodeInsufficientScopes ErrorCode = "insufficient_scopes"
	ErrCodeNetworkError       ErrorCode = "network_error"
	ErrCodeTimeout            ErrorCode = "timeout"
	ErrCodeNotImplemented     ErrorCode = "not_implemented"
	ErrCodeProviderError      ErrorCode = "provider_error"
	ErrCodeUnknown            ErrorCode = "unknown_error"
)

// UpstreamError is one structured error entry from the upstream GraphQL
// response, preserved for provider_error details.
type UpstreamError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// SearchError is the structured error every fallible langboard operation
// returns. It always carries a machine code and a human-readable message;
// StatusCode and the upstream error list are kept when known so the HTTP
// layer can surface them as details.
type SearchError struct {
	Code              ErrorCode       `json:"code"`
	Message           string          `json:"message"`
	StatusCode        *int            `json:"status_code,omitempty"`
	RetryAfterSeconds *int            `json:"retry_after_seconds,omitempty"`
	UpstreamErrors    []UpstreamError `json:"upstream_errors,omitempty"`
	Err               error           `json:"-"`
}

// Error implements the error interface; the machine code prefixes the message
// so log lines stay greppable.
func (e *SearchError) Error() string {
	if e == nil {
		return ""
	}
	return string(e.Code) + ": " + e.Message
}

// NewSearchError builds a SearchError with just a code and message.
func NewSearchError(code ErrorCode, message string) *SearchError {
	return &SearchError{Code: code, Message: message}
}

// NewRateLimitedError builds the upstream rate-limit error with its retry
// hint in seconds.
func NewRateLimitedError(message string, retryAfter int) *SearchError {
	return &SearchError{
		Code:              ErrCodeRateLimited,
		Message:           message,
		RetryAfterSeconds: Ptr(retryAfter),
	}
}
