package validation

import (
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	pkgerrors "storefront/pkg/errors"
)

// BindAndValidate binds the JSON body into out and runs validation.
// Both failures come back as CodeValidation errors for the caller to render.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	return Struct(v, out)
}
