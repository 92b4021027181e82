package api

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// writeError renders err with the status its code maps to. Internal and
// dependency failures are logged and hidden behind the public message.
func writeError(ctx context.Context, logg *logger.Logger, c *gin.Context, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	payload := ErrorEnvelope{Error: APIError{Code: string(typed.Code()), Message: meta.PublicMessage}}

	switch typed.Code() {
	case pkgerrors.CodeValidation:
		payload.Error.Message = typed.Message()
		payload.Error.Details = typed.Details()
	case pkgerrors.CodeNotFound, pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
		payload.Error.Message = typed.Message()
	default:
		if logg != nil {
			logg.Error(logg.WithField(ctx, "error_code", string(typed.Code())), "request.error", err)
		}
	}

	c.AbortWithStatusJSON(meta.HTTPStatus, payload)
}
