package handlers

import (
	"net/http"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

func (h *HandlerBundle) ListBookings(c *gin.Context) {
	out, err := h.Bookings.ListBookings(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Bookings fetched successfully", out)
}

func (h *HandlerBundle) GetBooking(c *gin.Context) {
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking fetched successfully", b)
}

// ChangeSessionInfo handles POST /admin-changes-sessions.
func (h *HandlerBundle) ChangeSessionInfo(c *gin.Context) {
	var req models.ChangeSessionInfoRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.ChangeSessionInfo(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Session updated successfully", b)
}

func (h *HandlerBundle) AddNextSession(c *gin.Context) {
	var req models.AddNextSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.AddNextSession(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Next session added successfully", b)
}

// ChangeSessionStatus handles PUT /admin-session-change-status/:id. The body
// bookingId wins over the path id when both are present.
func (h *HandlerBundle) ChangeSessionStatus(c *gin.Context) {
	var req models.ChangeSessionStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.BookingID == "" {
		req.BookingID = c.Param("id")
	}
	s, err := h.Bookings.ChangeSessionStatus(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Session status updated successfully", s)
}

func (h *HandlerBundle) DeleteSession(c *gin.Context) {
	var req models.DeleteSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	sessions, err := h.Bookings.DeleteSession(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Session deleted successfully", sessions)
}
