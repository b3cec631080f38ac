package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/shashiranjanraj/vendordesk/pkg/http"
	"github.com/shashiranjanraj/vendordesk/pkg/validate"
)

var (
	// ErrIllegalTransition is returned when a requested order status is not
	// the single legal next status of the order.
	ErrIllegalTransition = errors.New("illegal order status transition")

	// ErrVendorNotFound means no vendor is registered for the session user.
	ErrVendorNotFound = errors.New("vendor not found")

	ErrNotAuthenticated = errors.New("not logged in")

	// ErrInvalidInput wraps input rejected before any network call.
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError is a message attached to one form field.
type FieldError struct {
	Field   string
	Message string
}

// FormError carries per-field messages plus an optional form-level
// message. It unwraps to the cause: ErrInvalidInput for client-side
// validation or the *http.APIError for server rejections.
type FormError struct {
	Fields  []FieldError
	Message string
	Err     error
}

func (e *FormError) Error() string {
	var parts []string
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *FormError) Unwrap() error { return e.Err }

// Field returns the message for name, or "".
func (e *FormError) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

func inputError(errs validate.Errors) error {
	if errs == nil {
		return nil
	}
	names := make([]string, 0, len(errs))
	for k := range errs {
		names = append(names, k)
	}
	sort.Strings(names)

	fe := &FormError{Err: ErrInvalidInput}
	for _, n := range names {
		fe.Fields = append(fe.Fields, FieldError{Field: n, Message: errs[n]})
	}
	return fe
}

// fieldHints maps words in a server message to the form field it is about.
var fieldHints = []struct {
	word  string
	field string
}{
	{"otp", "otp"},
	{"code", "otp"},
	{"phone", "phone_number"},
	{"email", "email"},
	{"password", "password"},
	{"name", "name"},
}

// formError maps a server business or validation rejection to a field
// error when the field can be identified, and to a form-level message
// otherwise. Other errors pass through.
func formError(err error) error {
	var apiErr *http.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Kind != http.KindBusiness && apiErr.Kind != http.KindValidation {
		return err
	}

	msg := apiErr.Message
	if msg == "" {
		return err
	}
	field := apiErr.Field
	if field == "" {
		lower := strings.ToLower(msg)
		for _, h := range fieldHints {
			if strings.Contains(lower, h.word) {
				field = h.field
				break
			}
		}
	}
	if field == "" {
		return &FormError{Message: msg, Err: err}
	}
	return &FormError{Fields: []FieldError{{Field: field, Message: msg}}, Err: err}
}
