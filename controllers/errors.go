// controllers/errors.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"teravolta-backend/services"
	"teravolta-backend/utils"
)

// respondServiceError maps lifecycle service errors to HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuoteNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrAppointmentNotFound),
		errors.Is(err, services.ErrPhaseNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrPhasesRequired),
		errors.Is(err, services.ErrPhasesUnbalanced),
		errors.Is(err, services.ErrPhasesUnpaid),
		errors.Is(err, services.ErrQuoteLocked):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrMissingReason):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}
