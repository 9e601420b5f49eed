// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string

	// Midtrans payment gateway.
	MidtransServerKey  string
	MidtransClientKey  string
	MidtransProduction bool
	MidtransWebhookURL string
	MidtransVerifySig  bool

	// Kirimin address lookup API.
	AddressAPIURL string
	AddressAPIKey string

	// External QR image renderer.
	QRAPIURL string

	// Timeout applied to all outbound HTTP calls (gateway, address API).
	HTTPClientTimeout time.Duration

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	// MySQL – used only by cmd/migrate to import the legacy registration DB.
	MySQLDSN string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "korpri")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "korprirun")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "korprirun.app,www.korprirun.app")
	v.SetDefault("DEBUG", false)
	v.SetDefault("MIDTRANS_PRODUCTION", false)
	v.SetDefault("MIDTRANS_VERIFY_SIGNATURE", false)
	v.SetDefault("ADDRESS_API_URL", "https://api.kirimin.id/api")
	v.SetDefault("QR_API_URL", "https://api.qrserver.com/v1/create-qr-code/")
	v.SetDefault("HTTP_CLIENT_TIMEOUT", "15s")

	cfg := &Config{
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBUser:             v.GetString("DB_USER"),
		DBPass:             v.GetString("DB_PASS"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSLMODE"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		MidtransServerKey:  v.GetString("MIDTRANS_SERVER_KEY"),
		MidtransClientKey:  v.GetString("MIDTRANS_CLIENT_KEY"),
		MidtransProduction: v.GetBool("MIDTRANS_PRODUCTION"),
		MidtransWebhookURL: v.GetString("MIDTRANS_WEBHOOK_URL"),
		MidtransVerifySig:  v.GetBool("MIDTRANS_VERIFY_SIGNATURE"),
		AddressAPIURL:      v.GetString("ADDRESS_API_URL"),
		AddressAPIKey:      v.GetString("ADDRESS_API_KEY"),
		QRAPIURL:           v.GetString("QR_API_URL"),
		HTTPClientTimeout:  v.GetDuration("HTTP_CLIENT_TIMEOUT"),
		Debug:              v.GetBool("DEBUG"),
		Port:               v.GetString("PORT"),
		TLSDomains:         splitTrimmed(v.GetString("TLS_DOMAINS")),
		MySQLDSN:           v.GetString("MYSQL_DSN"),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET must be set")
	}
	if c.MidtransServerKey == "" {
		log.Fatal("config: MIDTRANS_SERVER_KEY must be set")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
