package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomRules installs dispenser-specific rules on gin's binding
// validator. Call once at startup before serving requests.
func RegisterCustomRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	// "compartment" restricts an int field to the physical compartment range.
	return v.RegisterValidation("compartment", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 1 && n <= 3
	})
}
