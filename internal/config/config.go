package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data and cache backends
const (
	DataBackendPostgres = "postgres"
	DataBackendMemory   = "memory"

	CacheBackendLocal = "local"
	CacheBackendRedis = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DataBackend   string
	DatabaseURL   string
	RunMigrations bool

	// Cache
	CacheBackend    string
	RedisURL        string
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Server
	Port        string
	CORSOrigins []string
	Env         string
	APIBasePath string

	// Behaviour
	DefaultPageSize  int
	MaxPageSize      int
	DefaultLanguage  string
	CreateExistingID string

	// Auth
	JWT JWTConfig

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// Background stats worker
	WorkerInterval time.Duration

	// S3 Storage
	S3 S3Config

	// Change events mirrored to a message broker
	Events EventsConfig
}

// JWTConfig holds bearer token settings. An empty Secret disables authentication.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Enabled reports whether write endpoints require a bearer token
func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

// S3Config holds AWS S3 configuration for bank logos
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether logo storage is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// EventsConfig holds the optional AMQP broker change events are mirrored to
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// Enabled reports whether change events go to a broker as well as websocket clients
func (c EventsConfig) Enabled() bool {
	return c.AMQPURL != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	databaseURL, err := databaseURL()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataBackend:        strings.ToLower(getEnv("DATA_BACKEND", DataBackendPostgres)),
		DatabaseURL:        databaseURL,
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		CacheBackend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendLocal)),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:           getEnvDuration("CACHE_TTL", 10*time.Minute),
		CacheMaxEntries:    getEnvInt("CACHE_MAX_ENTRIES", 10000),
		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                getEnv("ENV", "development"),
		APIBasePath:        "/" + strings.Trim(getEnv("API_BASE_PATH", "/api"), "/"),
		DefaultPageSize:    getEnvInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:        getEnvInt("MAX_PAGE_SIZE", 100),
		DefaultLanguage:    strings.ToLower(getEnv("DEFAULT_LANGUAGE", "en")),
		CreateExistingID:   strings.ToLower(getEnv("CREATE_EXISTING_ID", "upsert")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 30),
		WorkerInterval:     getEnvDuration("WORKER_INTERVAL", 15*time.Minute),
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", "ledger-backend"),
			Audience: getEnv("JWT_AUDIENCE", "ledger-api"),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		Events: EventsConfig{
			AMQPURL:  getEnv("EVENTS_AMQP_URL", ""),
			Exchange: getEnv("EVENTS_EXCHANGE", "ledger.events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether ENV names the production environment
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) validate() error {
	switch c.DataBackend {
	case DataBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL or DATABASE_URL_FILE is required when DATA_BACKEND=postgres")
		}
	case DataBackendMemory:
	default:
		return fmt.Errorf("DATA_BACKEND must be %q or %q, got %q", DataBackendPostgres, DataBackendMemory, c.DataBackend)
	}

	switch c.CacheBackend {
	case CacheBackendLocal, CacheBackendRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendLocal, CacheBackendRedis, c.CacheBackend)
	}

	if c.CreateExistingID != "upsert" && c.CreateExistingID != "reject" {
		return fmt.Errorf("CREATE_EXISTING_ID must be \"upsert\" or \"reject\", got %q", c.CreateExistingID)
	}
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive")
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE must be at least DEFAULT_PAGE_SIZE")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.WorkerInterval <= 0 {
		return fmt.Errorf("WORKER_INTERVAL must be positive")
	}
	if c.JWT.Enabled() && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the secret file named by DATABASE_URL_FILE
func databaseURL() (string, error) {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url, nil
	}
	path := getEnv("DATABASE_URL_FILE", "")
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read DATABASE_URL_FILE: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
