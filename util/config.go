package util

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything that used to live in scattered module globals:
// datastore coordinates, the token secret and its lifetime, and the listen
// port. Loaded once in main and handed to the pieces that need it.
type Config struct {
	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	SSLMode    string
	SQLitePath string

	JWTSecret string
	TokenTTL  time.Duration

	ServerPort string
}

// LoadConfig reads the environment, loading a .env file first when one is
// present. Missing keys fall back to development defaults.
func LoadConfig() Config {
	_ = godotenv.Load()

	ttlHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "72"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 72
	}

	return Config{
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPass:     getEnv("DB_PASS", "postgres"),
		DBName:     getEnv("DB_NAME", "cliflow"),
		SSLMode:    getEnv("SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "cliflow.db"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		ServerPort: getEnv("SERVER_PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
