package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	AuthJWTSecret    string
	JWTExpireSeconds int
	DefaultAuthUser  string
	DefaultAuthPass  string

	DefaultMonthlyCallLimit int64

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	// SkipMigrations runs the service without applying schema migrations,
	// used for DB-less smoke and performance testing.
	SkipMigrations bool

	Groq      GroqConfig
	Flags     FlagDefaults
	RateLimit RateLimitConfig
}

// GroqConfig configures the external LLM recommendation provider.
type GroqConfig struct {
	APIKey         string
	Model          string
	Endpoint       string
	TimeoutSeconds int
}

// FlagDefaults carries environment-level defaults for the migration flags.
// Persisted overrides win over these at startup; in-memory writes win after.
type FlagDefaults struct {
	V2Primary        bool
	V2Enabled        bool
	V1Deprecated     bool
	MigrationLogging bool
	ShadowMode       bool
}

// RateLimitConfig configures the optional redis-backed per-IP limiter.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Rate          float64
	Burst         int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "cohortlens"),
		AppVersion:  getenv("APP_VERSION", "2.0.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		AuthJWTSecret:    strings.TrimSpace(getenv("AUTH_JWT_SECRET", "cohortlens-dev-secret-change-in-production")),
		JWTExpireSeconds: getenvInt("JWT_EXPIRE_SECONDS", 3600),
		DefaultAuthUser:  getenv("DEFAULT_AUTH_USER", "admin"),
		DefaultAuthPass:  getenv("DEFAULT_USER_PASSWORD", "admin"),

		DefaultMonthlyCallLimit: getenvInt64("API_USAGE_LIMIT", 1000),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "cohortlens"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		SkipMigrations: getenvBool("SKIP_MIGRATIONS", false),

		Groq: GroqConfig{
			APIKey:         strings.TrimSpace(getenv("GROQ_API_KEY", "")),
			Model:          getenv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Endpoint:       getenv("GROQ_ENDPOINT", "https://api.groq.com/openai/v1/chat/completions"),
			TimeoutSeconds: getenvInt("GROQ_TIMEOUT_SECONDS", 10),
		},
		Flags: FlagDefaults{
			V2Primary:        getenvBool("FEATURE_FLAG_V2_PRIMARY", false),
			V2Enabled:        getenvBool("FEATURE_FLAG_V2_ENABLED", true),
			V1Deprecated:     getenvBool("FEATURE_FLAG_V1_DEPRECATED", false),
			MigrationLogging: getenvBool("FEATURE_FLAG_MIGRATION_LOGGING", false),
			ShadowMode:       getenvBool("FEATURE_FLAG_SHADOW_MODE", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			Rate:          getenvFloat("RATE_LIMIT_RATE", 1),
			Burst:         getenvInt("RATE_LIMIT_BURST", 60),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
