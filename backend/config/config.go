package config

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// Invitation settings
	SiteURL           string
	InviteExpiryHours int

	// Password reset links live much shorter than invites
	ResetExpiryMinutes int

	// Email settings
	SendgridAPIKey string
	FromEmail      string
	FromName       string
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "academy"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		SiteURL:            getEnv("SITE_URL", "http://localhost:8080"),
		InviteExpiryHours:  getEnvInt("INVITE_EXPIRY_HOURS", 72),
		ResetExpiryMinutes: getEnvInt("RESET_EXPIRY_MINUTES", 60),
		SendgridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		FromEmail:          getEnv("FROM_EMAIL", "noreply@academy.local"),
		FromName:           getEnv("FROM_NAME", "AI Academy"),
	}

	// Sessions are stateless signed tokens, so the signing secret must be
	// provided in production. A development fallback keeps local setup easy.
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
