package models

// APIResponse is a generic structure for all API responses
type APIResponse struct {
	Status  string      `json:"status"`            // "success" or "error"
	Code    int         `json:"code"`              // HTTP status code (200, 400, 500, etc.)
	Message string      `json:"message,omitempty"` // Human-readable message
	Data    interface{} `json:"data,omitempty"`    // Any response data (can be map, struct, list, etc.)
	Error   *APIError   `json:"error,omitempty"`   // Detailed error info (nil if success)
}

// APIError holds detailed error information
type APIError struct {
	Type    string `json:"type,omitempty"`    // e.g., "ValidationError", "Conflict"
	Details string `json:"details,omitempty"` // More context about the error
	Field   string `json:"field,omitempty"`   // For validation errors (which field failed)
}

// SuccessResponse builds the standard success envelope.
func SuccessResponse(code int, message string, data interface{}) APIResponse {
	return APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// ErrorResponse builds the standard error envelope.
func ErrorResponse(code int, message, errType, details string) APIResponse {
	return APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Error: &APIError{
			Type:    errType,
			Details: details,
		},
	}
}
