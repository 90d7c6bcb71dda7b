package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTP     HTTPConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Postgres PostgresConfig
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

// JWTConfig is read once at startup and never mutated afterwards.
// SecretKey must never be logged or echoed back in responses.
type JWTConfig struct {
	SecretKey       string
	Issuer          string
	Audience        string
	ExpirationHours float64
}

type AdminConfig struct {
	Username string
	Password string
	Email    string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

const DefaultExpirationHours = 24

func Load() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:           getenv("HTTP_ADDR", ":8080"),
			AllowedOrigins: splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		JWT: JWTConfig{
			SecretKey:       os.Getenv("JWT_SECRET_KEY"),
			Issuer:          getenv("JWT_ISSUER", "schedule-app"),
			Audience:        getenv("JWT_AUDIENCE", "schedule-app-client"),
			ExpirationHours: parseHours(os.Getenv("JWT_EXPIRATION_HOURS")),
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Email:    os.Getenv("ADMIN_EMAIL"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

// parseHours falls back to the default when the variable is absent,
// unparsable, or negative.
func parseHours(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultExpirationHours
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours < 0 {
		return DefaultExpirationHours
	}
	return hours
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
