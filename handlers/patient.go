package handlers

import (
	"net/http"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

// ReserveSlot handles POST /slot-reservations.
func (h *HandlerBundle) ReserveSlot(c *gin.Context) {
	var req models.ReserveSlotRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Bookings.ReserveSlot(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Slot reserved", res)
}

func (h *HandlerBundle) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.CreateBooking(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Booking created successfully", b)
}

func (h *HandlerBundle) ListUserBookings(c *gin.Context) {
	out, err := h.Bookings.ListUserBookings(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Bookings fetched successfully", out)
}

func (h *HandlerBundle) ListUserNotifications(c *gin.Context) {
	out, err := h.Notifications.ListUserNotifications(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Notifications fetched successfully", out)
}

func (h *HandlerBundle) UpdateFCMToken(c *gin.Context) {
	var req models.UpdateFCMTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Notifications.UpdateFCMToken(c.Request.Context(), c.GetString("userID"), req.FCMToken); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Device token updated", nil)
}
