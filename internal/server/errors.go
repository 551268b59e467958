package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/talentsync/internal/db"
)

// ErrStoreUnavailable is returned by document routes when no store is configured.
var ErrStoreUnavailable = errors.New("document history is not enabled on this server")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var verr *ErrValidation
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
