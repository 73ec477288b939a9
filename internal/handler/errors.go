package handler

import (
	"errors"
	"net/http"

	"carebill/internal/service"
	"carebill/pkg/caldate"
	"carebill/pkg/response"
	"carebill/pkg/timecalc"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP statuses in one place so every
// handler reports the same way.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateInvoice):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrRateNotFound),
		errors.Is(err, service.ErrNoBillableActivity),
		errors.Is(err, service.ErrEmptyInvoice),
		errors.Is(err, caldate.ErrInvalidDate),
		errors.Is(err, timecalc.ErrInvalidClock):
		status = http.StatusBadRequest
	}
	c.JSON(status, response.Error(status, err.Error()))
}

// currentUserID returns the authenticated user's id from the JWT claims set
// by the auth middleware, or "" for unauthenticated routes.
func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	s, _ := userID.(string)
	return s
}
