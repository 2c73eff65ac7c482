package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	MetricsEnabled    bool   `mapstructure:"METRICS_ENABLED"`

	// Browser origins allowed to call the API with credentials.
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// Proxies whose X-Forwarded-For / X-Real-IP headers are believed.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Admin sessions and slot holds.
	AdminSessionTTL time.Duration `mapstructure:"ADMIN_SESSION_TTL"`
	ReservationTTL  time.Duration `mapstructure:"RESERVATION_TTL"`

	// Seeds the first admin account when the admins collection is empty.
	AdminBootstrapEmail    string `mapstructure:"ADMIN_BOOTSTRAP_EMAIL"`
	AdminBootstrapPassword string `mapstructure:"ADMIN_BOOTSTRAP_PASSWORD"`

	// Session reminders are scheduled this long before the session starts.
	ReminderLeadTime time.Duration `mapstructure:"REMINDER_LEAD_TIME"`
	ClinicTimezone   string        `mapstructure:"CLINIC_TIMEZONE"`

	// Payments.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Cloudinary storage for prescriptions.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	PrescriptionFolder  string `mapstructure:"PRESCRIPTION_FOLDER"`

	// Firebase service account used for FCM pushes. Empty disables pushes.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("TRUSTED_PROXIES", []string{})
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("DATABASE_NAME", "clinicbook")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("ADMIN_SESSION_TTL", "12h")
	viper.SetDefault("RESERVATION_TTL", "10m")
	viper.SetDefault("ADMIN_BOOTSTRAP_EMAIL", "")
	viper.SetDefault("ADMIN_BOOTSTRAP_PASSWORD", "")
	viper.SetDefault("REMINDER_LEAD_TIME", "24h")
	viper.SetDefault("CLINIC_TIMEZONE", "UTC")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("PRESCRIPTION_FOLDER", "prescriptions")
	viper.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
}

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
}

// Validate rejects settings that must not reach production.
func (c Config) Validate() error {
	if c.Env != "production" {
		return nil
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			return errors.New("CORS_ALLOWED_ORIGINS must list explicit origins in production")
		}
	}
	return nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location returns the clinic timezone, falling back to UTC.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.ClinicTimezone)
	if err != nil || AppConfig.ClinicTimezone == "" {
		return time.UTC
	}
	return loc
}
