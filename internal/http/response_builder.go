// Package http serves the ledger over HTTP/JSON.
//
// This file implements the Builder Pattern for constructing responses so
// every handler sets status, headers and body the same way.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financepilot/internal/core"
)

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body, b.err = json.Marshal(v)
	if b.err == nil {
		b.body = append(b.body, '\n')
	}
	return b
}

// Text sets a plain-text body.
func (b *ResponseBuilder) Text(s string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(s)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Path  string `json:"path,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, code, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message, Code: code})
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *ResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed").
		Header("Allow", allowedMethods)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "bad_request", message)
}

// FromError maps ledger errors onto HTTP statuses: a missing file is 404,
// rejected input 422, a locked file 423 and anything else 500.
func FromError(err error) *ResponseBuilder {
	var (
		missing *core.FileMissingError
		invalid *core.ValidationError
	)
	switch {
	case errors.As(err, &missing):
		return NewResponse().Status(http.StatusNotFound).JSON(errorBody{
			Error: err.Error(), Code: "file_missing", Path: missing.Path,
		})
	case errors.As(err, &invalid):
		return NewResponse().Status(http.StatusUnprocessableEntity).JSON(errorBody{
			Error: err.Error(), Code: "invalid_input", Field: invalid.Field,
		})
	case errors.Is(err, core.ErrLockedFile):
		return NewResponse().Status(http.StatusLocked).
			Header("Retry-After", "1").
			JSON(errorBody{Error: err.Error(), Code: "locked_file"})
	case errors.Is(err, core.ErrFileTooLarge):
		return ErrorResponse(http.StatusInternalServerError, "file_too_large", err.Error())
	default:
		return ErrorResponse(http.StatusInternalServerError, "internal", "internal error")
	}
}
