package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	DBDriver          string
	DatabaseURL       string
	DBPoolMax         int
	DBPoolIdleTimeout time.Duration
	DBConnectTimeout  time.Duration
	SlowQueryLog      time.Duration

	FirebaseCredentialsPath string
	JWTSecret               string

	StorageDriver        string
	StorageBucket        string
	StoragePublicBaseURL string
	MinioEndpoint        string
	MinioAccessKey       string
	MinioSecretKey       string
	MinioUseSSL          bool

	RedisURL        string
	CacheTTL        time.Duration
	UploadRateLimit float64
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		DBDriver:                getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		DBPoolMax:               getEnvInt("DB_POOL_MAX", 10),
		DBPoolIdleTimeout:       getEnvDuration("DB_POOL_IDLE_TIMEOUT", 30*time.Second),
		DBConnectTimeout:        getEnvDuration("DB_CONNECT_TIMEOUT", 2*time.Second),
		SlowQueryLog:            getEnvDuration("SLOW_QUERY_THRESHOLD", 900*time.Millisecond),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		StorageDriver:           getEnv("STORAGE_DRIVER", "gcs"),
		StorageBucket:           getEnv("STORAGE_BUCKET", "posts"),
		StoragePublicBaseURL:    getEnv("STORAGE_PUBLIC_BASE_URL", ""),
		MinioEndpoint:           getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:             getEnvBool("MINIO_USE_SSL", false),
		RedisURL:                getEnv("REDIS_URL", ""),
		CacheTTL:                getEnvDuration("CACHE_TTL", 10*time.Second),
		UploadRateLimit:         getEnvFloat("UPLOAD_RATE_LIMIT", 2),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("30s") or plain milliseconds ("2000").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
