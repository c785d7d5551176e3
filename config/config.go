package config

import (
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

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Third-party credentials.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	CloudinaryCloudName     string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey        string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret     string `mapstructure:"CLOUDINARY_API_SECRET"`
	StripeKey               string `mapstructure:"STRIPE_KEY"`

	// Booking rules.
	Timezone              string        `mapstructure:"TIMEZONE"`
	CancellationCutoff    time.Duration `mapstructure:"CANCELLATION_CUTOFF"`
	CompletionOTPTTL      time.Duration `mapstructure:"COMPLETION_OTP_TTL"`
	QRTokenTTL            time.Duration `mapstructure:"QR_TOKEN_TTL"`
	AllowDirectCompletion bool          `mapstructure:"ALLOW_DIRECT_COMPLETION"`
	ReminderLead          time.Duration `mapstructure:"REMINDER_LEAD"`

	// Login OTP.
	LoginOTPTTL         time.Duration `mapstructure:"LOGIN_OTP_TTL"`
	LoginOTPMaxAttempts int           `mapstructure:"LOGIN_OTP_MAX_ATTEMPTS"`

	// Notification delivery.
	NotifyTimeout   time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	NotifyQueueSize int           `mapstructure:"NOTIFY_QUEUE_SIZE"`
}

var AppConfig Config

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
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "carenest")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("CANCELLATION_CUTOFF", "4h")
	viper.SetDefault("COMPLETION_OTP_TTL", "10m")
	viper.SetDefault("QR_TOKEN_TTL", "24h")
	viper.SetDefault("ALLOW_DIRECT_COMPLETION", false)
	viper.SetDefault("REMINDER_LEAD", "1h")
	viper.SetDefault("LOGIN_OTP_TTL", "5m")
	viper.SetDefault("LOGIN_OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("NOTIFY_TIMEOUT", "5s")
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves the configured timezone, falling back to UTC.
func Location() *time.Location {
	if AppConfig.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		log.Printf("invalid TIMEZONE %q, falling back to UTC: %v", AppConfig.Timezone, err)
		return time.UTC
	}
	return loc
}
