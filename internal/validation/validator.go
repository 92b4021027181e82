package validation

import (
	"regexp"

	validatorv10 "github.com/go-playground/validator/v10"

	pkgerrors "storefront/pkg/errors"
)

var couponCodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// New returns a validator with the storefront's custom tags registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// coupon_code: upper-case letters and digits only, e.g. AMOUNT5000
	_ = v.RegisterValidation("coupon_code", func(fl validatorv10.FieldLevel) bool {
		return couponCodePattern.MatchString(fl.Field().String())
	})

	return v
}

// Struct validates s and converts failures into a coded validation error
// whose details map each failing field to the rule it broke.
func Struct(v *validatorv10.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
			WithDetails(validationErrorsToMap(err))
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Tag()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
