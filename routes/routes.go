package routes

import (
	"time"

	"clinicbook/config"
	"clinicbook/handlers"
	"clinicbook/middleware"
	"clinicbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Guards are the authentication middlewares routes attach to protected groups.
type Guards struct {
	Admin gin.HandlerFunc
	User  gin.HandlerFunc
}

// RegisterPublicRoutes registers endpoints that need no authentication.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/get-available-date", hb.GetAvailableDates)
	r.GET("/clinics/:id", hb.GetClinic)
	r.POST("/admin-login", hb.AdminLogin)
}

// RegisterAdminRoutes registers the dashboard endpoints behind an admin session.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, guard gin.HandlerFunc) {
	api := r.Group("")
	api.Use(guard)
	{
		api.POST("/admin-logout", hb.AdminLogout)

		api.GET("/admin-bookings", hb.ListBookings)
		api.GET("/admin-bookings/:id", hb.GetBooking)
		api.POST("/admin-changes-sessions", hb.ChangeSessionInfo)
		api.POST("/admin-add-updated-prescriptions", hb.AddOrUpdatePrescription)
		api.POST("/admin-add-next-sessions", hb.AddNextSession)
		api.PUT("/admin-session-change-status/:id", hb.ChangeSessionStatus)
		api.POST("/admin-session-delete", hb.DeleteSession)

		api.GET("/admin-clinics", hb.ListClinics)
		api.POST("/admin-clinics", hb.CreateClinic)
		api.PUT("/admin-clinics/:id/booking-window", hb.UpdateBookingWindow)

		api.GET("/admin-settings", hb.GetSettings)
		api.PUT("/admin-settings", hb.UpdateSettings)
		api.POST("/admin-settings/special-restrictions", hb.UpsertSpecialRestriction)
	}
}

// RegisterUserRoutes registers patient endpoints authenticated by JWT.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle, guard gin.HandlerFunc) {
	api := r.Group("")
	api.Use(guard)
	{
		api.POST("/slot-reservations", hb.ReserveSlot)
		api.POST("/bookings", hb.CreateBooking)
		api.GET("/user-bookings", hb.ListUserBookings)
		api.GET("/user-notifications", hb.ListUserNotifications)
		api.PUT("/user-fcm-token", hb.UpdateFCMToken)
	}
}

// RegisterHealthRoute registers the health snapshot and, when enabled, the
// Prometheus scrape endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle, metricsEnabled bool) {
	r.GET("/health", hb.Health)
	if metricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// CORSConfig allows credentials (the admin session cookie) for the listed
// origins. A "*" entry opens the API to every origin without credentials,
// since browsers drop cookies on wildcard responses.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// RegisterRoutes installs global middleware and every route group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, guards Guards, metrics *utils.Metrics) {
	if err := r.SetTrustedProxies(config.AppConfig.TrustedProxies); err != nil {
		utils.GetLogger().Error("Invalid TRUSTED_PROXIES, ignoring forwarding headers", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	r.Use(cors.New(CORSConfig(config.AppConfig.CORSAllowedOrigins)))

	RegisterHealthRoute(r, hb, config.AppConfig.MetricsEnabled)
	RegisterPublicRoutes(r, hb)
	RegisterAdminRoutes(r, hb, guards.Admin)
	RegisterUserRoutes(r, hb, guards.User)
}
