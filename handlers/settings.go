package handlers

import (
	"net/http"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

func (h *HandlerBundle) GetSettings(c *gin.Context) {
	st, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Settings fetched successfully", st)
}

func (h *HandlerBundle) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.Settings.UpdateBookingConfig(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Settings updated successfully", st)
}

func (h *HandlerBundle) UpsertSpecialRestriction(c *gin.Context) {
	var req models.SpecialRestrictionRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.Settings.UpsertSpecialRestriction(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Special restriction saved successfully", st)
}

// Health reports the last dependency snapshot; 503 when anything is down.
func (h *HandlerBundle) Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, utils.Response{Success: healthy, Message: "health", Data: status})
}
