package controllers

import (
	"github.com/go-playground/validator/v10"

	"powerpulse/apperrors"
)

var validate = validator.New()

// fieldErrors converts validator failures into the field-level detail map
// carried by VALIDATION_ERROR responses
func fieldErrors(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation("Invalid input", nil)
	}
	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			fields[fieldErr.Field()] = "Field is required"
		case "min":
			fields[fieldErr.Field()] = "Must be at least " + fieldErr.Param() + " characters long"
		case "gt":
			fields[fieldErr.Field()] = "Must be greater than " + fieldErr.Param()
		case "email":
			fields[fieldErr.Field()] = "Must be a valid email address"
		default:
			fields[fieldErr.Field()] = "Invalid value"
		}
	}
	return apperrors.Validation("Invalid input", fields)
}
