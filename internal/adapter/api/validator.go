package api

import (
	"github.com/go-playground/validator/v10"

	"slem/internal/domain/service"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("sladdress", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || service.IsDeliverableAddress(value)
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
