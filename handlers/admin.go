package handlers

import (
	"net/http"

	"clinicbook/middleware"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

// AdminLogin starts an admin session and sets the session cookie. The token is
// returned too for clients that prefer a Bearer header.
func (h *HandlerBundle) AdminLogin(c *gin.Context) {
	var req models.AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, admin, err := h.Admins.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(utils.AdminSessionCookie, token, int(h.AdminSessionTTL.Seconds()), "/", "", h.SecureCookies, true)
	utils.RespondOK(c, http.StatusOK, "Login successful", gin.H{"token": token, "admin": admin})
}

func (h *HandlerBundle) AdminLogout(c *gin.Context) {
	if token := middleware.AdminTokenFromRequest(c); token != "" {
		if err := h.Admins.Logout(c.Request.Context(), token); err != nil {
			utils.RespondError(c, err)
			return
		}
	}
	c.SetCookie(utils.AdminSessionCookie, "", -1, "/", "", h.SecureCookies, true)
	utils.RespondOK(c, http.StatusOK, "Logged out", nil)
}
