package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultJWTSecret = "dev_secret_change_me"

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string // mysql, postgres, sqlite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	Seed            bool
	SeedEmail       string
	SeedPassword    string
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Config holds all configuration
type Config struct {
	Env               string
	Port              string
	BaseURL           string
	LogLevel          string
	DB                DBConfig
	JWT               JWTConfig
	AuthStrategy      string // password, fixture
	AllowRegistration bool
	CORSOrigins       []string
	TaxRate           decimal.Decimal
	Location          *time.Location
	GeminiAPIKey      string
	GeminiModel       string
}

// Load reads .env (optional) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using environment variables")
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("SERVER_PORT", "8080"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			DSN:             getEnv("DB_DSN", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
			Seed:            getEnvAsBool("DB_SEED", false),
			SeedEmail:       getEnv("SEED_ADMIN_EMAIL", "admin@roti.local"),
			SeedPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTTL:  getEnvAsDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL: getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		AuthStrategy:      strings.ToLower(getEnv("AUTH_STRATEGY", "password")),
		AllowRegistration: getEnvAsBool("ALLOW_REGISTRATION", false),
		CORSOrigins:       getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash-001"),
	}

	rate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.05"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	cfg.TaxRate = rate

	cfg.Location = time.Local
	if tz := getEnv("APP_TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects combinations that must never reach a running server.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres":
		if c.DB.DSN == "" {
			return errors.New("DB_DSN is required for driver " + c.DB.Driver)
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	switch c.AuthStrategy {
	case "password", "fixture":
	default:
		return fmt.Errorf("unsupported AUTH_STRATEGY %q", c.AuthStrategy)
	}

	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be between 0 and 1, got %s", c.TaxRate)
	}

	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be set in production")
		}
		if c.AuthStrategy == "fixture" {
			return errors.New("AUTH_STRATEGY=fixture is not allowed in production")
		}
	}
	return nil
}

// LogFields returns the non-secret settings for the startup log line.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Env),
		zap.String("port", c.Port),
		zap.String("db_driver", c.DB.Driver),
		zap.String("auth_strategy", c.AuthStrategy),
		zap.Bool("registration", c.AllowRegistration),
		zap.String("tax_rate", c.TaxRate.String()),
		zap.String("timezone", c.Location.String()),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid boolean for %s: %s", key, v)
		return defaultValue
	}
	return b
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
