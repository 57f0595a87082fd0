package models

import (
	"slices"
	"time"

	"github.com/go-playground/validator"
)

// NewValidator returns a validator that knows the "cycle", "category" and
// "isodate" tags used by the request structs of this package.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("cycle", func(fl validator.FieldLevel) bool {
		return slices.Contains(Cycles, fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		c := fl.Field().String()
		return c == OtherCategory || slices.Contains(Categories, c)
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})
	return v
}
