package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port         string
	DBConn       string
	LogLevel     string
	JWTSecret    string
	CBRURL       string
	RateMargin   float64 // added to the central bank key rate for variable-rate credits
	ReminderDays int     // how many days ahead payment reminders are sent
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	margin, err := strconv.ParseFloat(getEnv("RATE_MARGIN", "5.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_MARGIN: %w", err)
	}
	reminderDays, err := strconv.Atoi(getEnv("REMINDER_DAYS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_DAYS: %w", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBConn:       getEnv("DB_CONN", "host=localhost port=5432 user=finance password=finance dbname=finance sslmode=disable"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		CBRURL:       getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		RateMargin:   margin,
		ReminderDays: reminderDays,
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@fintrack.local"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
