package handlers

import (
	"net/http"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

func (h *HandlerBundle) CreateClinic(c *gin.Context) {
	var req models.CreateClinicRequest
	if !bindJSON(c, &req) {
		return
	}
	clinic, err := h.Clinics.CreateClinic(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Clinic created successfully", clinic)
}

func (h *HandlerBundle) ListClinics(c *gin.Context) {
	out, err := h.Clinics.ListClinics(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Clinics fetched successfully", out)
}

func (h *HandlerBundle) GetClinic(c *gin.Context) {
	clinic, err := h.Clinics.GetClinic(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Clinic fetched successfully", clinic)
}

func (h *HandlerBundle) UpdateBookingWindow(c *gin.Context) {
	var req models.UpdateBookingWindowRequest
	if !bindJSON(c, &req) {
		return
	}
	clinic, err := h.Clinics.UpdateBookingWindow(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking window updated successfully", clinic)
}
