package config

import (
	"errors"
	"fmt"
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
	Port          string
	MongoURI      string
	MongoDatabase string

	TokenSecret  string
	TokenTTL     time.Duration
	CookieSecure bool

	AdminEmail    string
	AdminPassword string

	ClientURL   string
	CORSOrigins []string

	Currency        string
	DeliveryCharge  decimal.Decimal
	ProviderTimeout time.Duration

	StripeSecretKey   string
	RazorpayKeyID     string
	RazorpayKeySecret string

	GCSBucket        string
	GCSPublicBaseURL string

	SendGridAPIKey string
	MailFrom       string
}

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file loaded, using process environment")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load reads the configuration from the environment. Call LoadEnv first
// when a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              GetEnv("PORT", "5000"),
		MongoURI:          GetEnv("MONGODB_URI", ""),
		MongoDatabase:     GetEnv("MONGODB_DATABASE", "storefront"),
		TokenSecret:       GetEnv("ACCESS_TOKEN_SECRET", ""),
		AdminEmail:        GetEnv("ADMIN_EMAIL", ""),
		AdminPassword:     GetEnv("ADMIN_PASSWORD", ""),
		ClientURL:         strings.TrimRight(GetEnv("CLIENT_URL", "http://localhost:5173"), "/"),
		CORSOrigins:       splitList(GetEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		Currency:          strings.ToLower(GetEnv("CURRENCY", "inr")),
		StripeSecretKey:   GetEnv("STRIPE_SECRET_KEY", ""),
		RazorpayKeyID:     GetEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: GetEnv("RAZORPAY_KEY_SECRET", ""),
		GCSBucket:         GetEnv("GCS_BUCKET", ""),
		GCSPublicBaseURL:  GetEnv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		SendGridAPIKey:    GetEnv("SENDGRID_API_KEY", ""),
		MailFrom:          GetEnv("MAIL_FROM", ""),
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", "1h"); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = parseDuration("PROVIDER_TIMEOUT", "15s"); err != nil {
		return nil, err
	}

	cfg.CookieSecure, err = strconv.ParseBool(GetEnv("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("config: COOKIE_SECURE: %w", err)
	}

	cfg.DeliveryCharge, err = decimal.NewFromString(GetEnv("DELIVERY_CHARGE", "10"))
	if err != nil {
		return nil, fmt.Errorf("config: DELIVERY_CHARGE: %w", err)
	}
	if cfg.DeliveryCharge.IsNegative() {
		return nil, errors.New("config: DELIVERY_CHARGE must not be negative")
	}

	return cfg, nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("config: MONGODB_URI is required")
	}
	if c.TokenSecret == "" {
		return errors.New("config: ACCESS_TOKEN_SECRET is required")
	}
	return nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(GetEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
