package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"blogapi/internal/apperror"
)

// normalizer is implemented by request types that trim their fields before
// validation, so length rules apply to the value that will be stored rather
// than to surrounding whitespace.
type normalizer interface {
	normalize()
}

// bindAndValidate decodes the request body into req, normalizes it, and
// validates it. Validation failures are converted into the Validation
// taxonomy entry with one ordered detail message per offending field.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.NewValidation([]string{"invalid request body"})
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	if err := c.Validate(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			details := make([]string, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				details = append(details, fieldMessage(fe))
			}
			return apperror.NewValidation(details)
		}
		return apperror.NewValidation([]string{err.Error()})
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// pathID parses the :id path parameter. A malformed identifier is a
// MalformedID taxonomy entry (400), matching the store's id format.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NewMalformedID(err)
	}
	return id, nil
}
