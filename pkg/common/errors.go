package common

type ErrorCode string

const (
	ErrInvalidInput  ErrorCode = "ERR_001"
	ErrServerError   ErrorCode = "ERR_002"
	ErrUnauthorized  ErrorCode = "ERR_003"
	ErrForbidden     ErrorCode = "ERR_004"
	ErrNotFound      ErrorCode = "ERR_005"
	ErrRateLimited   ErrorCode = "ERR_006"
	ErrPaymentFailed ErrorCode = "ERR_007"
)

type ErrorResponse struct {
	Code    ErrorCode `json:"code"`              // internal error code
	Message string    `json:"message"`           // user-friendly message
	Details string    `json:"details,omitempty"` // optional developer detail
	TraceID string    `json:"traceId,omitempty"` // unique identifier for the API request
}
