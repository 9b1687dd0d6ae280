// Package handlers provides HTTP request handlers for the langboard HTTP
// transport: the search endpoint, the leaderboard endpoint and the shared
// response plumbing.
package handlers

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/langboard/langboard/schemas"
)

// SuccessResponse is the envelope of every 2xx search response.
type SuccessResponse struct {
	OK       bool                     `json:"ok"`
	Provider schemas.Provider         `json:"provider"`
	Profile  schemas.Account          `json:"profile"`
	Data     []schemas.LanguageBucket `json:"data"`
	Metadata schemas.ResultMetadata   `json:"metadata"`
}

// ErrorBody is the machine-readable error detail inside ErrorResponse.
type ErrorBody struct {
	Code              schemas.ErrorCode       `json:"code"`
	Message           string                  `json:"message"`
	Details           []schemas.UpstreamError `json:"details,omitempty"`
	RetryAfterSeconds *int                    `json:"retryAfterSeconds,omitempty"`
}

// ErrorResponse is the envelope of every non-2xx response.
type ErrorResponse struct {
	OK       bool                   `json:"ok"`
	Provider schemas.Provider       `json:"provider,omitempty"`
	Error    ErrorBody              `json:"error"`
	Metadata schemas.ResultMetadata `json:"metadata"`
}

// SendJSON writes an arbitrary payload as a JSON response.
func SendJSON(ctx *fasthttp.RequestCtx, payload interface{}, logger schemas.Logger) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		logger.Error("failed to encode response: %v", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"ok":false,"error":{"code":"unknown_error","message":"failed to encode response"}}`)
		ctx.SetContentType("application/json")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// SendError writes an error envelope with the given status code.
func SendError(ctx *fasthttp.RequestCtx, statusCode int, provider schemas.Provider, code schemas.ErrorCode, message string, logger schemas.Logger) {
	SendSearchError(ctx, statusCode, provider, &schemas.SearchError{Code: code, Message: message}, logger)
}

// SendSearchError maps a structured search error onto the wire envelope.
func SendSearchError(ctx *fasthttp.RequestCtx, statusCode int, provider schemas.Provider, serr *schemas.SearchError, logger schemas.Logger) {
	resp := ErrorResponse{
		Provider: provider,
		Metadata: schemas.ResultMetadata{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Unit:        schemas.ResultUnit,
		},
		Error: ErrorBody{
			Code:              serr.Code,
			Message:           serr.Message,
			Details:           serr.UpstreamErrors,
			RetryAfterSeconds: serr.RetryAfterSeconds,
		},
	}
	body, err := sonic.Marshal(resp)
	if err != nil {
		logger.Error("failed to encode error response: %v", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"ok":false,"error":{"code":"unknown_error","message":"failed to encode response"}}`)
		ctx.SetContentType("application/json")
		return
	}
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// StatusForError maps the error taxonomy onto HTTP status codes.
func StatusForError(serr *schemas.SearchError) int {
	switch serr.Code {
	case schemas.ErrCodeValidation:
		return fasthttp.StatusBadRequest
	case schemas.ErrCodeInvalidToken:
		return fasthttp.StatusUnauthorized
	case schemas.ErrCodeUserNotFound:
		return fasthttp.StatusNotFound
	case schemas.ErrCodeRateLimited, schemas.ErrCodeInsufficientScopes:
		return fasthttp.StatusForbidden
	case schemas.ErrCodeNotImplemented:
		return fasthttp.StatusNotImplemented
	case schemas.ErrCodeNetworkError:
		return fasthttp.StatusServiceUnavailable
	case schemas.ErrCodeTimeout:
		return fasthttp.StatusGatewayTimeout
	default:
		return fasthttp.StatusInternalServerError
	}
}
