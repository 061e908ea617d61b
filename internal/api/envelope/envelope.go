// Package envelope defines the single response shape every API outcome is
// rendered as: {success, message, data, errors, status_code}.
//
// An Envelope is either Ok (carrying data) or Err (carrying at least one
// ErrorDetail). Its fields are unexported, so the constructors in this file
// are the only way to build one.
package envelope

import (
	"encoding/json"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultSuccessMessage = "Operation completed successfully"
	DefaultCreatedMessage = "Resource created successfully"
	DefaultErrorMessage   = "An error occurred"
	DefaultResource       = "Resource"
)

// Response is what handlers hand back to the transport layer.
type Response interface {
	StatusCode() int
	IsSuccess() bool
	json.Marshaler
}

// Envelope is the uniform response wrapper.
type Envelope[T any] struct {
	ok      bool
	message string
	data    T
	errors  []ErrorDetail
	status  int
}

type wire[T any] struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	Data       *T            `json:"data"`
	Errors     []ErrorDetail `json:"errors"`
	StatusCode int           `json:"status_code"`
}

// Success builds an Ok envelope. An empty message and a zero status fall back
// to DefaultSuccessMessage and 200.
func Success[T any](message string, data T, status int) Envelope[T] {
	if message == "" {
		message = DefaultSuccessMessage
	}
	if status == 0 {
		status = http.StatusOK
	}
	return Envelope[T]{ok: true, message: message, data: data, status: status}
}

// Created is Success with the status fixed at 201.
func Created[T any](message string, data T) Envelope[T] {
	if message == "" {
		message = DefaultCreatedMessage
	}
	return Success(message, data, http.StatusCreated)
}

// Error builds an Err envelope. Without details a single ErrorDetail carrying
// message is synthesized, so a failure always has at least one entry.
func Error(message string, status int, details ...Detailer) Envelope[any] {
	if message == "" {
		message = DefaultErrorMessage
	}
	if status == 0 {
		status = http.StatusBadRequest
	}
	errs := make([]ErrorDetail, 0, max(len(details), 1))
	for _, d := range details {
		if d == nil {
			continue
		}
		errs = append(errs, d.Detail())
	}
	if len(errs) == 0 {
		errs = append(errs, Msg(message))
	}
	return Envelope[any]{message: message, errors: errs, status: status}
}

// NotFound reports "{resource} not found" with status 404.
func NotFound(resource string) Envelope[any] {
	if resource == "" {
		resource = DefaultResource
	}
	return Error(resource+" not found", http.StatusNotFound)
}

// NoContent is the successful outcome that renders as 204 with no body.
func NoContent() Envelope[any] {
	return Envelope[any]{ok: true, message: "No content", status: http.StatusNoContent}
}

func (e Envelope[T]) StatusCode() int { return e.status }
func (e Envelope[T]) IsSuccess() bool { return e.ok }
func (e Envelope[T]) Message() string { return e.message }

// Data returns the payload and whether the envelope is Ok.
func (e Envelope[T]) Data() (T, bool) {
	if !e.ok {
		var zero T
		return zero, false
	}
	return e.data, true
}

// Errors returns a copy of the error list; nil for Ok envelopes.
func (e Envelope[T]) Errors() []ErrorDetail {
	if e.ok {
		return nil
	}
	out := make([]ErrorDetail, len(e.errors))
	copy(out, e.errors)
	return out
}

func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	w := wire[T]{
		Success:    e.ok,
		Message:    e.message,
		StatusCode: e.status,
	}
	if e.ok {
		d := e.data
		w.Data = &d
	} else {
		w.Errors = e.errors
	}
	return codec.Marshal(w)
}
