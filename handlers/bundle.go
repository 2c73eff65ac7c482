package handlers

import (
	"time"

	"clinicbook/services/admin"
	"clinicbook/services/availability"
	"clinicbook/services/booking"
	"clinicbook/services/clinic"
	"clinicbook/services/notification"
	"clinicbook/services/settings"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the services every endpoint handler needs.
type HandlerBundle struct {
	Availability  availability.AvailabilityService
	Bookings      booking.BookingService
	Clinics       clinic.ClinicService
	Settings      settings.SettingsService
	Admins        admin.AdminService
	Notifications notification.NotificationService

	AdminSessionTTL time.Duration
	SecureCookies   bool
}

// bindJSON decodes the body into dst and writes a validation envelope on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body: %v", err))
		return false
	}
	return true
}
