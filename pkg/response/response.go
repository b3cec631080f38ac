// Package response writes the JSON bodies the vendor API answers with.
//
// Success bodies are the resource itself, without an envelope. Error bodies
// carry a message and, when the failure is about one input, the field:
//
//	{"message":"Phone number already registered","field":"phone_number"}
package response

import (
	"encoding/json"
	"net/http"
	"sort"
)

type errorBody struct {
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends a 200 with v.
func OK(w http.ResponseWriter, v interface{}) { JSON(w, http.StatusOK, v) }

// Created sends a 201 with v.
func Created(w http.ResponseWriter, v interface{}) { JSON(w, http.StatusCreated, v) }

// Message sends {"message": msg} with a 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Error sends an error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Message: message})
}

// FieldError sends an error body naming the offending field.
func FieldError(w http.ResponseWriter, status int, field, message string) {
	JSON(w, status, errorBody{Message: message, Field: field})
}

// ValidationError sends a 400 whose message is the first failing field's.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	body := errorBody{Message: "Validation failed", Errors: errs}
	if len(fields) > 0 {
		body.Field = fields[0]
		body.Message = errs[fields[0]]
	}
	JSON(w, http.StatusBadRequest, body)
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found"
	}
	Error(w, http.StatusNotFound, message)
}
