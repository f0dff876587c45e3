package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/vanshika/skillgraph/backend/internal/apperr"
)

var validate = validator.New()

// validateInput checks struct tags and reports any failure with msg.
// Callers rely on fixed messages, so field-level detail is not surfaced.
func validateInput(input any, msg string) error {
	if err := validate.Struct(input); err != nil {
		return apperr.Validation(msg)
	}
	return nil
}
