package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"Inshorts/internal/models"
)

// ErrorKind classifies a failed API call.
type ErrorKind string

const (
	KindTransport      ErrorKind = "transport"
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindOther          ErrorKind = "other"
)

// Error is returned by every Client method on failure.
// Msg is the backend's message when it sent one.
type Error struct {
	Kind   ErrorKind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of an API error, or KindOther for anything else.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// MessageOf returns the backend-supplied message of err, if any.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Msg
	}
	return ""
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindAuthorization
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindOther
	}
}

// HandleApiError builds the Error of a >= 400 response from its body.
func HandleApiError(r *http.Response, errBody []byte) *Error {
	apiErr := &Error{
		Kind:   kindForStatus(r.StatusCode),
		Status: r.StatusCode,
	}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		apiErr.Msg = strings.TrimSpace(string(errBody))
		return apiErr
	}

	var body models.ErrorResponse
	if err := json.Unmarshal(errBody, &body); err != nil {
		apiErr.Msg = strings.TrimSpace(string(errBody))
		return apiErr
	}
	apiErr.Msg = body.Message
	if apiErr.Msg == "" {
		apiErr.Msg = body.Error
	}
	return apiErr
}
