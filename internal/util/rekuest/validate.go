// Package rekuest validates incoming request payloads and renders violations
// as structured invalid-request errors.
package rekuest

import (
	"github.com/go-playground/validator/v10"

	"github.com/liveops-hq/backend/internal/pkg/apperr"
	"github.com/liveops-hq/backend/internal/util"
)

var validate = util.NewValidator()

type Violation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Validate checks a request struct and converts any violations into an
// invalid-request error carrying the per-field details.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.ErrInvalidReq
	}

	violations := make([]Violation, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		violations = append(violations, Violation{
			Field:   fieldError.Field(),
			Tag:     fieldError.Tag(),
			Param:   fieldError.Param(),
			Message: fieldError.Error(),
		})
	}
	return apperr.NewInvalidViolations(violations)
}
