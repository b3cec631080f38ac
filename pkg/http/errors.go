package http

import (
	"encoding/json"
	"errors"
	"fmt"
	gohttp "net/http"
	"strings"
)

// Kind classifies a failed API call.
type Kind string

const (
	// KindNetwork: no response at all (DNS, refused, reset, timeout).
	KindNetwork Kind = "network"
	// KindAuth: 401 or 403.
	KindAuth Kind = "auth"
	// KindValidation: 400 or 422, the server rejected the input shape.
	KindValidation Kind = "validation"
	// KindBusiness: 409 and other 4xx, e.g. duplicate phone or invalid OTP.
	KindBusiness Kind = "business"
	KindNotFound Kind = "not_found"
	KindServer   Kind = "server"
)

// APIError is returned for every non-2xx response and for transport failures.
type APIError struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int // 0 for KindNetwork
	Message    string
	Field      string // set when the server names the offending field
	Err        error  // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("http: %s %s: network error: %v", e.Method, e.Path, e.Err)
	}
	if e.Message == "" {
		return fmt.Sprintf("http: %s %s: %d %s", e.Method, e.Path, e.StatusCode, gohttp.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("http: %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same request could succeed.
func (e *APIError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

// KindOf returns the Kind of err, or "" when err is not an *APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func IsNetwork(err error) bool    { return KindOf(err) == KindNetwork }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsBusiness(err error) bool   { return KindOf(err) == KindBusiness }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsServer(err error) bool     { return KindOf(err) == KindServer }

// Message returns the server-provided message of err, falling back to
// err.Error() for anything else.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func kindForStatus(status int) Kind {
	switch {
	case status == gohttp.StatusUnauthorized || status == gohttp.StatusForbidden:
		return KindAuth
	case status == gohttp.StatusBadRequest || status == gohttp.StatusUnprocessableEntity:
		return KindValidation
	case status == gohttp.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindBusiness
	}
}

func newStatusError(method, path string, status int, body []byte) *APIError {
	msg, field := parseErrorBody(body)
	return &APIError{
		Kind:       kindForStatus(status),
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    msg,
		Field:      field,
	}
}

// errorBody covers the shapes the API uses:
//
//	{"message": "Invalid OTP"}
//	{"message": ["phone_number must be a valid phone number"], "error": "Bad Request"}
//	{"error": "Vendor not found"}
//	{"error": {"message": "...", "field": "phone_number"}}
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
	Field   string          `json:"field"`
}

func parseErrorBody(body []byte) (msg, field string) {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return strings.TrimSpace(string(body)), ""
	}
	field = eb.Field

	if m := rawMessage(eb.Message); m != "" {
		return m, field
	}

	var nested struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if len(eb.Error) > 0 && eb.Error[0] == '{' && json.Unmarshal(eb.Error, &nested) == nil {
		if field == "" {
			field = nested.Field
		}
		return nested.Message, field
	}
	return rawMessage(eb.Error), field
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
