// Package apperr turns failures that escape request handling into envelopes.
// Every failure class ends up in the same wire shape; only the status code
// and the error list differ.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/5w1tchy/book-catalog-api/internal/api/envelope"
	"github.com/5w1tchy/book-catalog-api/internal/validate"
)

const (
	MsgValidation = "Validation error"
	MsgInternal   = "Internal server error"
	MsgUnexpected = "An unexpected error occurred"
)

// Translator is wired once at server construction and shared by the handler
// adapter and the recovery middleware.
type Translator struct {
	Log *slog.Logger
}

func New(log *slog.Logger) Translator {
	return Translator{Log: log}
}

func (t Translator) logger() *slog.Logger {
	if t.Log == nil {
		return slog.Default()
	}
	return t.Log
}

// Translate classifies err and builds its envelope.
func (t Translator) Translate(r *http.Request, err error) envelope.Envelope[any] {
	var verr *validate.Errors
	if errors.As(err, &verr) {
		return Validation(verr)
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return envelope.Error("Request body too large", http.StatusRequestEntityTooLarge,
			envelope.FieldDetail("body", fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit), "body_too_large"))
	}
	return t.Unhandled(r, err)
}

// Validation wraps every violation into a single 422 envelope, in input
// order.
func Validation(err *validate.Errors) envelope.Envelope[any] {
	details := make([]envelope.Detailer, 0, len(err.Violations))
	for _, v := range err.Violations {
		details = append(details, envelope.FieldDetail(v.Field, v.Message, v.Type))
	}
	return envelope.Error(MsgValidation, http.StatusUnprocessableEntity, details...)
}

// Unhandled logs err with full detail and returns the generic 500. Nothing
// from err reaches the client.
func (t Translator) Unhandled(r *http.Request, err error) envelope.Envelope[any] {
	t.logger().ErrorContext(r.Context(), "unhandled error",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r),
	)
	return Internal()
}

// Panic is Unhandled for a recovered panic value; stack is logged verbatim.
func (t Translator) Panic(r *http.Request, v any, stack []byte) envelope.Envelope[any] {
	t.logger().ErrorContext(r.Context(), "panic recovered",
		"panic", fmt.Sprint(v),
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r),
		"stack", string(stack),
	)
	return Internal()
}

// Store translates a failure a handler got back from the record store into
// a 500 naming the failed action. The cause, and its driver class when there
// is one, only reach the log.
func (t Translator) Store(r *http.Request, action string, err error) envelope.Envelope[any] {
	attrs := []any{
		"action", action,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r),
	}
	if class := Classify(err); class != "" {
		attrs = append(attrs, "class", class)
	}
	t.logger().ErrorContext(r.Context(), "store operation failed", attrs...)
	return envelope.Error("Failed to "+action, http.StatusInternalServerError, envelope.Msg(MsgUnexpected))
}

// Internal is the generic 500 envelope.
func Internal() envelope.Envelope[any] {
	return envelope.Error(MsgInternal, http.StatusInternalServerError, envelope.Msg(MsgUnexpected))
}

// RequestID middleware mirrors the id into the request header.
func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("X-Request-ID")
}
