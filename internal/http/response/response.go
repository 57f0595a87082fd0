// Package response builds the JSON envelopes returned by the HTTP handlers:
// {"status":"OK","data":...} on success and {"status":"Error","error":...}
// on failure.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

const (
	// StatusOK marks a successful response.
	StatusOK = "OK"
	// StatusError marks a failed response.
	StatusError = "Error"
)

// OKResponse is the success envelope.
type OKResponse struct {
	Status string `json:"status" example:"OK"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// OK returns an empty success envelope.
func OK() OKResponse {
	return OKResponse{Status: StatusOK}
}

// OKWithData returns a success envelope carrying data.
func OKWithData(data any) OKResponse {
	return OKResponse{
		Status: StatusOK,
		Data:   data,
	}
}

// Error returns a failure envelope with msg.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError turns validator errors into one readable message, one
// clause per field joined by commas.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	msgs := make([]string, 0, len(errs))

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "cycle":
			msgs = append(msgs, fmt.Sprintf("field %s must be a known billing cycle", err.Field()))
		case "category":
			msgs = append(msgs, fmt.Sprintf("field %s must be a known category", err.Field()))
		case "isodate":
			msgs = append(msgs, fmt.Sprintf("field %s must be a date in format YYYY-MM-DD", err.Field()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("field %s must be exactly %s characters long", err.Field(), err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return ErrorResponse{
		Status: StatusError,
		Error:  strings.Join(msgs, ", "),
	}
}
