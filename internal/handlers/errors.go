package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/response"
)

// handleServiceError maps the error taxonomy onto HTTP status codes.
// Services have already logged the failure; handlers only translate it.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequestError(c, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		response.ConflictError(c, err.Error())
	case errors.Is(err, apperrors.ErrTransient):
		response.ServiceUnavailableError(c, "temporary storage failure, retry the request")
	default:
		response.InternalServerError(c, "internal server error")
	}
}
