package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Mess    MessConfig
	Billing BillingConfig
	Push    PushConfig
	Sheets  SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// MessConfig carries the mess business defaults: local time zone and the standard
// monthly charges used by the scheduled bill run.
type MessConfig struct {
	Timezone            string
	PerDayCharge        float64
	EstablishmentCharge float64
	FeastCharge         float64
	SpecialCharge       float64
}

// BillingConfig holds the scheduled monthly-close settings.
type BillingConfig struct {
	CronSchedule         string
	AutoPublish          bool
	IncludeSaharaInmates bool
}

// PushConfig contains credentials for the push-notification gateway.
type PushConfig struct {
	BaseURL   string
	ServerKey string
}

// SheetsConfig contains configuration for the bill-register spreadsheet export.
// Both fields empty disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "sahara_mess"),
		},
		Mess: MessConfig{
			Timezone:            getenvWithDefault("MESS_TIMEZONE", "Asia/Kolkata"),
			PerDayCharge:        getenvFloat("MESS_PER_DAY_CHARGE", 85),
			EstablishmentCharge: getenvFloat("MESS_ESTABLISHMENT_CHARGE", 500),
			FeastCharge:         getenvFloat("MESS_FEAST_CHARGE", 0),
			SpecialCharge:       getenvFloat("MESS_SPECIAL_CHARGE", 0),
		},
		Billing: BillingConfig{
			CronSchedule:         getenvWithDefault("BILLING_CRON_SCHEDULE", "0 6 1 * *"),
			AutoPublish:          getenvBool("BILLING_AUTO_PUBLISH", false),
			IncludeSaharaInmates: getenvBool("BILLING_INCLUDE_SAHARA_INMATES", true),
		},
		Push: PushConfig{
			BaseURL:   getenvWithDefault("PUSH_GATEWAY_URL", "https://fcm.googleapis.com"),
			ServerKey: os.Getenv("PUSH_SERVER_KEY"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_BILL_REGISTER_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and coherent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Mess.Timezone == "" {
		return errors.New("MESS_TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Mess.Timezone); err != nil {
		return fmt.Errorf("MESS_TIMEZONE is not a valid IANA zone: %w", err)
	}
	if c.Mess.PerDayCharge <= 0 {
		return errors.New("MESS_PER_DAY_CHARGE must be positive")
	}

	if c.Billing.CronSchedule == "" {
		return errors.New("BILLING_CRON_SCHEDULE must be provided")
	}

	// Sheets export is optional, but a half-configured export is a mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_BILL_REGISTER_ID must be set together")
	}

	return nil
}

// Location resolves the configured mess time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Mess.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
