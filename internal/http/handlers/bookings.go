package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twotable/twotable-backend/internal/http/response"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/services"
)

type BookingHandler struct {
	bookings services.BookingService
}

func NewBookingHandler(bookings services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var in services.BookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidArgument):
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		case errors.Is(err, apperrors.ErrNotFound):
			response.RespondError(c, http.StatusNotFound, "not_found", err)
		case errors.Is(err, apperrors.ErrConflict):
			response.RespondError(c, http.StatusConflict, "conflict", err)
		default:
			response.RespondError(c, http.StatusInternalServerError, "booking_failed", err)
		}
		return
	}
	response.RespondCreated(c, booking)
}
