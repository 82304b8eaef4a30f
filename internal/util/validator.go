package util

import "github.com/go-playground/validator/v10"

// NewValidator creates a validator using JSON field names in violation
// reports, matching what API clients actually sent.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(ValidatorTagNameFunc)
	return validate
}
