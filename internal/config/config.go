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
	Gateway  GatewayConfig
	Billing  BillingConfig
	Fraud    FraudConfig
	SMTP     SMTPConfig
	JWT      JWTConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type GatewayConfig struct {
	// Provider selects the active adapter: "simulated" or "midtrans".
	Provider            string
	ServerKey           string
	IsProduction        bool
	FinishURL           string
	TimeoutSeconds      int
	SimulatedConfirmSec int
}

type BillingConfig struct {
	Currency           string
	TrialDays          int
	ReferralBonusDays  int
	MaxRenewalAttempts int
	SweepBatchSize     int
	SweepLeaseTTL      time.Duration
}

type FraudConfig struct {
	BaseURL  string
	APIKey   string
	FailOpen bool
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type JWTConfig struct {
	Secret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "billing.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Gateway: GatewayConfig{
			Provider:            getEnv("PAYMENT_PROVIDER", "simulated"),
			ServerKey:           getEnv("PAYMENT_SERVER_KEY", ""),
			IsProduction:        getEnvAsBool("PAYMENT_IS_PRODUCTION", false),
			FinishURL:           getEnv("PAYMENT_FINISH_URL", "http://localhost:5173/app?payment=finished"),
			TimeoutSeconds:      getEnvAsInt("PAYMENT_TIMEOUT_SECONDS", 30),
			SimulatedConfirmSec: getEnvAsInt("PAYMENT_SIMULATED_CONFIRM_SECONDS", 5),
		},
		Billing: BillingConfig{
			Currency:           getEnv("BILLING_CURRENCY", "XOF"),
			TrialDays:          getEnvAsInt("BILLING_TRIAL_DAYS", 30),
			ReferralBonusDays:  getEnvAsInt("BILLING_REFERRAL_BONUS_DAYS", 30),
			MaxRenewalAttempts: getEnvAsInt("BILLING_MAX_RENEWAL_ATTEMPTS", 3),
			SweepBatchSize:     getEnvAsInt("BILLING_SWEEP_BATCH_SIZE", 200),
			SweepLeaseTTL:      time.Duration(getEnvAsInt("BILLING_SWEEP_LEASE_SECONDS", 300)) * time.Second,
		},
		Fraud: FraudConfig{
			BaseURL:  getEnv("FRAUD_SERVICE_URL", ""),
			APIKey:   getEnv("FRAUD_SERVICE_API_KEY", ""),
			FailOpen: getEnvAsBool("FRAUD_FAIL_OPEN", true),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Marketplace Billing"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
