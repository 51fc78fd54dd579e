// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/smartify/sim-backend/internal/i18n"
	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP statuses.
// resource names the entity for not-found messages ("application",
// "msisdn", ...).
func handleServiceError(c *gin.Context, err error, resource string) {
	lang := utils.GetLangFromContext(c)

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(fieldErrors))
		return
	}

	var dup *services.DuplicatePendingError
	if errors.As(err, &dup) {
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyApplicationDuplicate), gin.H{
			"cart_id":        dup.CartID,
			"application_id": dup.ApplicationID,
		})
		return
	}

	var invalid *services.InvalidStateError
	if errors.As(err, &invalid) {
		utils.InvalidStateResponse(c, i18n.T(lang, i18n.KeyApplicationWrongState), gin.H{
			"status": invalid.CurrentStatus,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyApplicationNotAssigned))
	case errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		logrus.WithError(err).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}
