package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/collab-matcher/internal/ingestion"
	"github.com/jonathan/collab-matcher/internal/matching"
)

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
	switch matching.KindOf(err) {
	case matching.KindNotFound:
		return http.StatusNotFound
	case matching.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case matching.KindInvalid:
		return http.StatusBadRequest
	}

	var validationErr *ErrValidation
	var fieldErrs validator.ValidationErrors
	var loadErr *ingestion.LoadError
	var payloadErr *ingestion.ValidationError
	switch {
	case errors.As(err, &loadErr), errors.As(err, &payloadErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
