// Package bind decodes and validates a request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/vendordesk/config"
	"github.com/shashiranjanraj/vendordesk/pkg/validate"
)

// maxBodyBytes is MAX_BODY_BYTES, 4 MB by default.
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// JSON decodes the body of r into dest and validates it. A malformed or
// oversized body is an error; rule failures come back as errs.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) (errs validate.Errors, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return validate.Struct(dest), nil
}

// Multipart parses a multipart form of r into memory, capped like JSON.
func Multipart(w http.ResponseWriter, r *http.Request) error {
	limit := maxBodyBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit*8)
	if err := r.ParseMultipartForm(limit); err != nil {
		return fmt.Errorf("invalid multipart body: %w", err)
	}
	return nil
}
