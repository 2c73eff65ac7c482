package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicbook/config"
	"clinicbook/cron"
	"clinicbook/database"
	adminRepo "clinicbook/database/repository/admin"
	bookingRepo "clinicbook/database/repository/booking"
	clinicRepo "clinicbook/database/repository/clinic"
	notificationRepo "clinicbook/database/repository/notification"
	settingsRepo "clinicbook/database/repository/settings"
	userRepoPkg "clinicbook/database/repository/user"
	"clinicbook/handlers"
	"clinicbook/middleware"
	"clinicbook/routes"
	"clinicbook/services/admin"
	"clinicbook/services/availability"
	"clinicbook/services/booking"
	"clinicbook/services/clinic"
	"clinicbook/services/notification"
	"clinicbook/services/payment"
	"clinicbook/services/settings"
	"clinicbook/services/storage"
	"clinicbook/services/tasks"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.InitDB()
	if err != nil {
		logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
	}
	utils.InitRedis()
	utils.StartHealthMonitor(rootCtx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	stripe.Key = config.AppConfig.StripeKey
	metrics := utils.NewMetrics(nil)

	// repositories.
	clinics := clinicRepo.NewMongoClinicRepo(db)
	settingsStore := settingsRepo.NewMongoSettingsRepo(db)
	bookings := bookingRepo.NewMongoBookingRepo(db)
	users := userRepoPkg.NewMongoUserRepo(db)
	admins := adminRepo.NewMongoAdminRepo(db)
	notifications := notificationRepo.NewMongoNotificationRepo(db)

	// services.
	settingsService := &settings.DefaultSettingsService{Repo: settingsStore, Clinics: clinics}
	clinicService := &clinic.DefaultClinicService{Repo: clinics}
	availabilityService := &availability.DefaultAvailabilityService{
		Clinics:  clinics,
		Settings: settingsService,
		Bookings: bookings,
	}

	notificationService := &notification.DefaultNotificationService{
		Users:    users,
		Repo:     notifications,
		Bookings: bookings,
	}
	if config.FirebaseEnabled() {
		push, err := utils.FirebaseInit(rootCtx)
		if err != nil {
			logger.Warn("main: FCM disabled", zap.Error(err))
		} else {
			notificationService.Push = push
		}
	}

	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()
	worker := cron.InitNotificationWorker(rootCtx, notificationService)

	bookingService := &booking.DefaultBookingService{
		Repo:         bookings,
		Clinics:      clinics,
		Settings:     settingsService,
		Payments:     payment.NewStripeGateway(logger),
		Reservations: booking.NewRedisReservationStore(utils.GetCacheClient()),
		Tasks: &tasks.AsynqEnqueuer{
			Client:   queue,
			LeadTime: config.AppConfig.ReminderLeadTime,
			Location: config.Location(),
		},
		Metrics:            metrics,
		PrescriptionFolder: config.AppConfig.PrescriptionFolder,
		ReservationTTL:     config.AppConfig.ReservationTTL,
	}
	if config.CloudinaryConfigured() {
		cld, err := utils.Cloudinary()
		if err != nil {
			logger.Fatal("main: failed to initialize cloudinary storage service", zap.Error(err))
		}
		bookingService.Storage = storage.NewStorageService(cld)
	} else {
		logger.Warn("main: Cloudinary not configured, prescription uploads are disabled")
	}

	adminService := &admin.DefaultAdminService{
		Repo:       admins,
		Sessions:   utils.GetAuthCacheClient(),
		SessionTTL: config.AppConfig.AdminSessionTTL,
	}
	if err := adminService.EnsureBootstrapAdmin(rootCtx,
		config.AppConfig.AdminBootstrapEmail, config.AppConfig.AdminBootstrapPassword); err != nil {
		logger.Error("main: failed to create bootstrap admin", zap.Error(err))
	}

	handlerBundle := &handlers.HandlerBundle{
		Availability:    availabilityService,
		Bookings:        bookingService,
		Clinics:         clinicService,
		Settings:        settingsService,
		Admins:          adminService,
		Notifications:   notificationService,
		AdminSessionTTL: config.AppConfig.AdminSessionTTL,
		SecureCookies:   config.IsProduction(),
	}

	router := gin.New()
	routes.RegisterRoutes(router, handlerBundle, routes.Guards{
		Admin: middleware.AdminSessionMiddleware(adminService),
		User:  middleware.JWTAuthUserMiddleware(users),
	}, metrics)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	stop()
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
