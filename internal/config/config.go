package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	SQLDSN        string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool
	BcryptCost    int

	LoginRateLimit float64
	NATSURL        string
	LogLevel       string
	SwaggerHost    string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "bloggingDB"),
		SQLDSN:         getEnv("SQL_DSN", "user:password@tcp(localhost:3306)/blog?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		CacheTTL:       getEnvDuration("CACHE_TTL", time.Minute),
		SessionSecret:  getEnv("SESSION_SECRET", "change-me"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		SessionCookie:  getEnv("SESSION_COOKIE", "blog_session"),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		BcryptCost:     getEnvInt("BCRYPT_COST", 10),
		LoginRateLimit: getEnvFloat("LOGIN_RATE_LIMIT", 5),
		NATSURL:        os.Getenv("NATS_URL"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
