package domainerrors

import "net/http"

// Code identifies an error category. Codes map 1:1 to the error_code values
// exposed on the wire so handlers never invent ad hoc strings.
type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeInternal    Code = "INTERNAL_SERVER_ERROR"
)

// Error is a coded domain error. Fields carries per-field validation messages
// when the code is CodeValidation.
type Error struct {
	Code    Code
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidation builds a validation error carrying one message per failing field.
func NewValidation(message string, fields []string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// ToHTTPStatus translates a code into the HTTP status handlers respond with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
