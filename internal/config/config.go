package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string
	DB       DBConfig
	Server   ServerConfig
	Upstream UpstreamConfig
	Recent   RecentConfig
	Redis    RedisConfig
	Client   ClientConfig
	Seeder   SeederConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// RecentBackend selects where recent places are persisted
type RecentBackend string

const (
	RecentBackendMemory RecentBackend = "memory"
	RecentBackendFile   RecentBackend = "file"
	RecentBackendSQL    RecentBackend = "sql"
	RecentBackendRedis  RecentBackend = "redis"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// UpstreamConfig holds the geocoding, forecast and reverse geocoding providers
type UpstreamConfig struct {
	GeocodingURL string
	ForecastURL  string
	ReverseURL   string
	UserAgent    string
	Timeout      time.Duration
	ReverseRPS   float64
}

// RecentConfig holds settings for the recent places store
type RecentConfig struct {
	Backend RecentBackend
	Dir     string
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ClientConfig holds settings for the terminal client
type ClientConfig struct {
	BaseURL  string
	Debounce time.Duration
	Lang     string
}

// SeederConfig holds settings for the capitals dataset generator
type SeederConfig struct {
	DataDir          string
	Output           string
	AllowedLanguages []string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		if c.Name != "" && c.Name != "geoweather" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// Addr returns host:port for the redis client
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// IsDevelopment reports whether verbose development logging is wanted
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	backend := RecentBackend(getEnv("RECENT_BACKEND", string(RecentBackendMemory)))
	switch backend {
	case RecentBackendMemory, RecentBackendFile, RecentBackendSQL, RecentBackendRedis:
	default:
		return nil, fmt.Errorf("unknown RECENT_BACKEND %q", backend)
	}

	config := &Config{
		Env:      getEnv("APP_ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "geoweather"),
			Password: getEnv("DB_PASSWORD", "geoweather_password"),
			Name:     getEnv("DB_NAME", "geoweather"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			GeocodingURL: getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
			ForecastURL:  getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
			ReverseURL:   getEnv("REVERSE_URL", "https://nominatim.openstreetmap.org/reverse"),
			UserAgent:    getEnv("UPSTREAM_USER_AGENT", "WeatherApp/1.0"),
			Timeout:      time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_MS", 8000)) * time.Millisecond,
			ReverseRPS:   getEnvAsFloat("REVERSE_RPS", 1),
		},
		Recent: RecentConfig{
			Backend: backend,
			Dir:     getEnv("RECENT_DIR", "data/recent"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Client: ClientConfig{
			BaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),
			Debounce: time.Duration(getEnvAsInt("SUGGEST_DEBOUNCE_MS", 400)) * time.Millisecond,
			Lang:     strings.ToLower(getEnv("CLIENT_LANG", "en")),
		},
		Seeder: SeederConfig{
			DataDir:          getEnv("SEEDER_DATA_DIR", "data"),
			Output:           getEnv("SEEDER_OUTPUT", "internal/capital/data/country-capitals.json"),
			AllowedLanguages: getEnvAsSlice("SEEDER_ALLOWED_LANGUAGES"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
