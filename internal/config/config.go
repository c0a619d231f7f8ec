package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Match    MatchConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ProfileCacheTTL    time.Duration

	// InProcessNotifications sends emails from the API process. Turn it
	// off when cmd/notifier consumes from NATS instead.
	InProcessNotifications bool
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret string
}

type PaymentConfig struct {
	Provider           string // "mock" or "midtrans"
	MidtransServerKey  string
	MidtransProduction bool
	Currency           string
	ReturnPath         string
	CancelPath         string
	GatewayTimeout     time.Duration
	PendingTTL         time.Duration
}

type MatchConfig struct {
	RequestTTL    time.Duration
	SweepInterval time.Duration
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ProfileCacheTTL:    getEnvAsDuration("PROFILE_CACHE_TTL", 5*time.Minute),

			InProcessNotifications: getEnv("NOTIFICATIONS_IN_PROCESS", "true") == "true",
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "CareMatch"),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Payment: PaymentConfig{
			Provider:           getEnv("PAYMENT_PROVIDER", "mock"),
			MidtransServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
			Currency:           getEnv("PAYMENT_CURRENCY", "USD"),
			ReturnPath:         getEnv("PAYMENT_RETURN_PATH", "/payment/success"),
			CancelPath:         getEnv("PAYMENT_CANCEL_PATH", "/payment/cancel"),
			GatewayTimeout:     getEnvAsDuration("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second),
			PendingTTL:         getEnvAsDuration("PAYMENT_PENDING_TTL", 24*time.Hour),
		},
		Match: MatchConfig{
			RequestTTL:    getEnvAsDuration("MATCH_REQUEST_TTL", 72*time.Hour),
			SweepInterval: getEnvAsDuration("MATCH_SWEEP_INTERVAL", 15*time.Minute),
		},
		Otel: OtelConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("15m", "72h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
