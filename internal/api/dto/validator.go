package dto

import (
	"github.com/go-playground/validator/v10"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
)

var validate = validator.New()

// validateStruct runs tag-based validation and converts failures into
// validation errors. Semantic checks live in each request's Validate.
func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation)
	}
	return nil
}
