// Package dto holds the JSON request and response bodies of the HTTP API.
package dto

import "net/http"

// Machine-readable codes carried in every error envelope.
const (
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal    = "INTERNAL_ERROR"
	ErrorCodeTimeout     = "TIMEOUT"
	ErrorCodeBadRequest  = "BAD_REQUEST"
)

var codeStatus = map[string]int{
	ErrorCodeNotFound:    http.StatusNotFound,
	ErrorCodeValidation:  http.StatusBadRequest,
	ErrorCodeBadRequest:  http.StatusBadRequest,
	ErrorCodeUnavailable: http.StatusServiceUnavailable,
	ErrorCodeTimeout:     http.StatusGatewayTimeout,
	ErrorCodeInternal:    http.StatusInternalServerError,
}

// ErrorResponse is the envelope of every 4xx and 5xx response:
//
//	{"error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}, "traceId": "..."}
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the body of an ErrorResponse. Details maps request fields
// to validation messages.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// WithDetails attaches field-level messages.
func (e *ErrorResponse) WithDetails(details map[string]string) *ErrorResponse {
	e.Error.Details = details
	return e
}

func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// Status is the HTTP status for the envelope's code. Unknown codes are 500.
func (e *ErrorResponse) Status() int {
	if status, ok := codeStatus[e.Error.Code]; ok {
		return status
	}

	return http.StatusInternalServerError
}
