// Package repositories wraps each endpoint group of the vendor REST API.
// Every response is decoded into an explicit struct and validated, so a
// malformed payload fails here with models.ErrMalformedResponse instead of
// leaking zero values upward.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// decode sends req into dest and classifies failures that are neither API
// errors nor cancellation as malformed responses.
func decode(ctx context.Context, req *http.Request, dest interface{}) error {
	err := req.Decode(ctx, dest)
	if err == nil {
		return nil
	}
	var apiErr *http.APIError
	if errors.As(err, &apiErr) || errors.Is(err, models.ErrMalformedResponse) || ctx.Err() != nil {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
}

// Message is the {"message": "..."} acknowledgement many endpoints return.
type Message struct {
	Message string `json:"message"`
}

// list validates every element of a JSON array response.
type list[T any, PT interface {
	*T
	Validate() error
}] []T

func (l *list[T, PT]) Validate() error {
	for i := range *l {
		if err := PT(&(*l)[i]).Validate(); err != nil {
			return err
		}
	}
	return nil
}
