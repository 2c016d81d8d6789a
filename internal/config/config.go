package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything the server needs at startup.
type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret string

	PaystackSecret      string
	MomoCallbackToken   string
	StripeWebhookSecret string

	ConversionFeeRate decimal.Decimal
	OperationTimeout  time.Duration
	RateCacheTTL      time.Duration
	WalletCacheTTL    time.Duration
	CORSOrigins       string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Env:  GetEnv("ENV", "development"),
		Port: GetEnv("PORT", "3000"),

		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASSWORD", "postgres"),
		DBName:     GetEnv("DB_NAME", "kudi"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		KafkaBrokers: GetListEnv("KAFKA_BROKERS"),
		KafkaTopic:   GetEnv("KAFKA_TOPIC", "kudi.transactions"),

		JWTSecret: GetEnv("JWT_SECRET", "kudi"),

		PaystackSecret:      GetEnv("PAYSTACK_SECRET_KEY", ""),
		MomoCallbackToken:   GetEnv("MOMO_CALLBACK_TOKEN", ""),
		StripeWebhookSecret: GetEnv("STRIPE_WEBHOOK_SECRET", ""),

		ConversionFeeRate: GetDecimalEnv("CONVERSION_FEE_RATE", decimal.RequireFromString("0.02")),
		OperationTimeout:  GetDurationEnv("OPERATION_TIMEOUT", 10*time.Second),
		RateCacheTTL:      GetDurationEnv("RATE_CACHE_TTL", 5*time.Minute),
		WalletCacheTTL:    GetDurationEnv("WALLET_CACHE_TTL", 5*time.Minute),
		CORSOrigins:       GetEnv("CORS_ORIGINS", "http://localhost:5173"),
	}
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

// IsProduction checks if the app runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable ("30s", "5m") or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

// GetDecimalEnv returns a decimal environment variable or a default value.
func GetDecimalEnv(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetListEnv splits a comma separated variable, dropping empty items.
func GetListEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(GetEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
