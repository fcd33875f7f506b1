package api

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the request-specific rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("nonblank", nonBlank)
	return validate
}

func nonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
