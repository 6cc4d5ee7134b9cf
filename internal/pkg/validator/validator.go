package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
)

// Shared validator instance to avoid creating multiple instances
var validate *validator.Validate

func init() {
	validate = validator.New()

	// currency accepts the supported currency codes; an empty value passes
	// so optional fields can default downstream.
	_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		return code == "" || domain.IsSupportedCurrency(code)
	})
}

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}
