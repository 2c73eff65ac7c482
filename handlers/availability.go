package handlers

import (
	"net/http"

	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

// GetAvailableDates handles GET /get-available-date?_id=<clinicId>.
func (h *HandlerBundle) GetAvailableDates(c *gin.Context) {
	res, err := h.Availability.GetAvailableDates(c.Request.Context(), c.Query("_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Available dates fetched successfully", res)
}
