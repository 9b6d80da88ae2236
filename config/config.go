package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Metadata cache backends.
const (
	MetadataBackendNone   = "none"
	MetadataBackendMemory = "memory"
	MetadataBackendRedis  = "redis"
	MetadataBackendMySQL  = "mysql"
)

// Config stores the application configuration.
type Config struct {
	ServerPort string

	// Upstream browse service
	BrowseServiceURL  string
	UpstreamTimeout   time.Duration
	UpstreamRate      float64 // requests per second
	UpstreamBurst     int
	BreakerFailures   uint32 // consecutive failures before the breaker opens
	BreakerOpenPeriod time.Duration

	// Aggregation
	ConcertCacheTTL    time.Duration
	DetailFetchPerPage int
	FetchMultiplier    int

	// Metadata cache for upstream responses: none, redis or mysql
	MetadataBackend string
	SearchCacheTTL  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	backend := strings.ToLower(getEnv("METADATA_CACHE_BACKEND", MetadataBackendNone))
	switch backend {
	case MetadataBackendMemory, MetadataBackendRedis, MetadataBackendMySQL:
	default:
		backend = MetadataBackendNone
	}

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8003"),
		BrowseServiceURL:   getEnv("BROWSE_SERVICE_URL", "http://127.0.0.1:8001"),
		UpstreamTimeout:    time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		UpstreamRate:       getEnvFloat("UPSTREAM_RATE_PER_SECOND", 5),
		UpstreamBurst:      getEnvInt("UPSTREAM_BURST", 10),
		BreakerFailures:    uint32(getEnvInt("UPSTREAM_BREAKER_FAILURES", 5)),
		BreakerOpenPeriod:  time.Duration(getEnvInt("UPSTREAM_BREAKER_OPEN_SECONDS", 30)) * time.Second,
		ConcertCacheTTL:    time.Duration(getEnvInt("CONCERT_CACHE_TTL_SECONDS", 300)) * time.Second,
		DetailFetchPerPage: getEnvInt("DETAIL_FETCH_PER_PAGE", 100),
		FetchMultiplier:    getEnvInt("FETCH_MULTIPLIER", 3),
		MetadataBackend:    backend,
		SearchCacheTTL:     time.Duration(getEnvInt("SEARCH_CACHE_TTL_MINUTES", 30)) * time.Minute,
		DBHost:             getEnv("DB_HOST", "127.0.0.1"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPassword:         os.Getenv("DB_PASSWORD"), // no hardcoded default for the password
		DBName:             getEnv("DB_NAME", "concerthub"),
		RedisHost:          getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""), // empty means no AUTH
		RedisDB:            getEnvInt("REDIS_DB", 0),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		LogMaxSize:         getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAge:          getEnvInt("LOG_MAX_AGE_DAYS", 30),
		LogCompress:        getEnvBool("LOG_COMPRESS", true),
	}
}
