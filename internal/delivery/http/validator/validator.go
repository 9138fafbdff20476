// Package validator adapts go-playground/validator to echo's Validator
// interface so request DTOs are checked right after binding.
package validator

import (
	"strings"

	domainerrors "conectar/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// Validator wraps a shared validate instance. Safe for concurrent use.
type Validator struct {
	validate *playground.Validate
}

// New creates the request validator.
func New() *Validator {
	return &Validator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Violations are flattened into the
// details of a single 400 error.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs playground.ValidationErrors
	if !asValidationErrors(err, &validationErrs) {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	details := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details = append(details, fieldErr.Field()+" failed on '"+fieldErr.Tag()+"'")
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(details, "; "))
}

func asValidationErrors(err error, target *playground.ValidationErrors) bool {
	validationErrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return false
	}
	*target = validationErrs

	return true
}
