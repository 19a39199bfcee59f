package handlers

import (
	"net/http"
	"strconv"

	"reservo/models"
	"reservo/services/booking"
	"reservo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req booking.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.Service.ValidateAndCreateBooking(c.Request.Context(), t, req)
	if err != nil {
		getLogger(c).Info("Booking rejected", zap.String("professionalId", req.ProfessionalID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler filters by professionalId, clientId, status, from, to
// and limit query parameters.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	f := booking.ListFilter{
		ProfessionalID: c.Query("professionalId"),
		ClientID:       c.Query("clientId"),
		Status:         models.BookingStatus(c.Query("status")),
		From:           c.Query("from"),
		To:             c.Query("to"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			utils.RespondError(c, utils.NewValidationError("limit", "limit must be a non-negative integer"))
			return
		}
		f.Limit = n
	}

	out, err := h.Service.ListBookings(c.Request.Context(), t, f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	b, err := h.Service.GetBooking(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *BookingHandler) UpdateBookingHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req booking.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.UpdateBooking(c.Request.Context(), t, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	b, err := h.Service.Confirm(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	b, err := h.Service.Complete(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, b)
}

type cancelRequest struct {
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelledBy"`
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req cancelRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Service.Cancel(c.Request.Context(), t, c.Param("id"), req.Reason, req.CancelledBy)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Booking cancelled", zap.String("bookingId", b.ID), zap.String("by", req.CancelledBy))
	respondOK(c, b)
}

func (h *BookingHandler) NoShowBookingHandler(c *gin.Context) {
	t, ok := tenantFrom(c)
	if !ok {
		return
	}
	b, err := h.Service.MarkNoShow(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondOK(c, b)
}
