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

type Config struct {
	AppEnv    string
	Port      string
	OriginURL string

	DatabaseURL  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	MigrationDir string

	RedisURL       string
	RedisAddr      string
	RedisPassword  string
	CartTTL        time.Duration
	ProductTTL     time.Duration
	IdempotencyTTL time.Duration

	SessionSecret string
	SessionTTL    time.Duration

	Currency              string
	AssemblyFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	EligibleCategory      string

	KafkaBrokers      []string
	OrderTopic        string
	PaymentSessionURL string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

var AppConfig *Config

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}

	AppConfig = &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("APP_PORT", getEnv("PORT", "8082")),
		OriginURL: getEnv("ORIGIN_URL", ""),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", "furniture_shop"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		MigrationDir: getEnv("MIGRATION_DIR", "database/migration"),

		RedisURL:       getEnv("REDIS_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		CartTTL:        getDuration("CART_TTL", 30*24*time.Hour),
		ProductTTL:     getDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		SessionSecret: getEnv("SESSION_SECRET", "secret"),
		SessionTTL:    getDuration("SESSION_TTL", 30*24*time.Hour),

		Currency:              getEnv("CURRENCY", "GBP"),
		AssemblyFee:           getDecimal("ASSEMBLY_FEE", "49"),
		FreeShippingThreshold: getDecimal("FREE_SHIPPING_THRESHOLD", "500"),
		ShippingFee:           getDecimal("SHIPPING_FEE", "39"),
		EligibleCategory:      getEnv("DISCOUNT_ELIGIBLE_CATEGORY", "beds"),

		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		OrderTopic:        getEnv("ORDER_TOPIC", "orders.created"),
		PaymentSessionURL: getEnv("PAYMENT_SESSION_URL", ""),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),
	}

	return AppConfig
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getDecimal(key, defaultValue string) decimal.Decimal {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.RequireFromString(defaultValue)
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
