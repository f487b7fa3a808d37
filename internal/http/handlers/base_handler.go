// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carebridge/internal/http/middleware"
	"carebridge/internal/modules/order"
	"carebridge/internal/modules/pricing"
	"carebridge/internal/types"
)

type errorResponse struct {
	Error       string `json:"error"`
	RequiresKYC bool   `json:"requires_kyc,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func callerID(c *gin.Context) types.ID {
	return types.ID(middleware.CallerUID(c))
}

func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrBadRequest), errors.Is(err, order.ErrInvalidRating):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrKYCRequired):
		writeJSON(c, http.StatusForbidden, errorResponse{Error: err.Error(), RequiresKYC: true})
	case errors.Is(err, order.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, order.ErrNotAssigned):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrNotAvailable), errors.Is(err, order.ErrMustBeAccepted),
		errors.Is(err, order.ErrReleaseNotAccepted), errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writePricingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrBadRequest), errors.Is(err, pricing.ErrUnknownService):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
