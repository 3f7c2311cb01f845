package errors

import (
	"net/http"
)

// ErrorDetail is the wire shape of a single error.
type ErrorDetail struct {
	Message          string                 `json:"message"`
	InternalError    string                 `json:"internal_error,omitempty"`
	ReportableDetail map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse builds the wire representation of an error. The hint,
// when present, is the user-facing message; the raw error string is kept
// under internal_error for debugging.
func NewErrorResponse(err error) *ErrorResponse {
	detail := ErrorDetail{
		Message:          err.Error(),
		ReportableDetail: ReportableDetails(err),
	}
	if hint := Hint(err); hint != "" {
		detail.Message = hint
		detail.InternalError = err.Error()
	}
	return &ErrorResponse{Success: false, Error: detail}
}

// HTTPStatusFromErr maps a classified error to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsInvalidOperation(err):
		return http.StatusConflict
	case IsPermissionDenied(err):
		return http.StatusForbidden
	case IsIntegration(err), Is(err, ErrHTTPClient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
