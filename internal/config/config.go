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

	"rafiqe/internal/models"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Advisory service
	AdvisorAPIKey      string
	AdvisorBaseURL     string
	AdvisorModel       string
	AdvisorImageModel  string
	AdvisorTimeout     time.Duration
	AdvisorRetries     int
	AdvisorBackoffBase time.Duration

	// Ledger defaults
	DefaultCurrency string
	DefaultLocale   string
	DefaultIncome   decimal.Decimal

	// Error reporting
	SentryDSN string
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "rafiqe"),
		DBPassword: getEnv("DB_PASSWORD", "rafiqe"),
		DBName:     getEnv("DB_NAME", "rafiqe"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "rafiqe.db"),

		// Advisory service
		AdvisorAPIKey:     getEnv("ADVISOR_API_KEY", ""),
		AdvisorBaseURL:    getEnv("ADVISOR_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		AdvisorModel:      getEnv("ADVISOR_MODEL", "gemini-2.5-flash"),
		AdvisorImageModel: getEnv("ADVISOR_IMAGE_MODEL", "gemini-2.5-flash-image"),

		// Ledger defaults
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "SYP")),
		DefaultLocale:   strings.ToLower(getEnv("DEFAULT_LOCALE", "ar")),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	config.AdvisorTimeout = parseDuration("ADVISOR_TIMEOUT", 60*time.Second)
	config.AdvisorBackoffBase = parseDuration("ADVISOR_BACKOFF_BASE", 2*time.Second)

	retriesStr := getEnv("ADVISOR_RETRIES", "3")
	retries, err := strconv.Atoi(retriesStr)
	if err != nil {
		log.Printf("Warning: invalid ADVISOR_RETRIES value '%s', falling back to 3\n", retriesStr)
		retries = 3
	}
	config.AdvisorRetries = retries

	incomeStr := getEnv("DEFAULT_INCOME", "1000000")
	income, err := decimal.NewFromString(incomeStr)
	if err != nil {
		log.Printf("Warning: invalid DEFAULT_INCOME value '%s', falling back to 1000000\n", incomeStr)
		income = decimal.NewFromInt(1000000)
	}
	config.DefaultIncome = income

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port))
	}

	switch c.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be one of postgres, sqlite, memory, got %q", c.DBDriver))
	}

	if c.AdvisorRetries < 0 {
		errs = append(errs, fmt.Errorf("ADVISOR_RETRIES must not be negative, got %d", c.AdvisorRetries))
	}
	if c.AdvisorBackoffBase <= 0 {
		errs = append(errs, fmt.Errorf("ADVISOR_BACKOFF_BASE must be positive, got %s", c.AdvisorBackoffBase))
	}
	if c.AdvisorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ADVISOR_TIMEOUT must be positive, got %s", c.AdvisorTimeout))
	}

	if _, ok := models.LookupCurrency(c.DefaultCurrency); !ok {
		errs = append(errs, fmt.Errorf("DEFAULT_CURRENCY %q is not supported", c.DefaultCurrency))
	}
	if !models.Locale(c.DefaultLocale).Valid() {
		errs = append(errs, fmt.Errorf("DEFAULT_LOCALE must be en or ar, got %q", c.DefaultLocale))
	}
	if c.DefaultIncome.IsNegative() {
		errs = append(errs, fmt.Errorf("DEFAULT_INCOME must not be negative, got %s", c.DefaultIncome))
	}
	if !models.WithinMoneyScale(c.DefaultIncome) {
		errs = append(errs, fmt.Errorf("DEFAULT_INCOME must have at most %d decimal places, got %s", models.MoneyScale, c.DefaultIncome))
	}

	return errors.Join(errs...)
}

// AdvisorEnabled reports whether an advisory API key is configured.
func (c *Config) AdvisorEnabled() bool {
	return c.AdvisorAPIKey != ""
}

// PostgresDSN returns the PostgreSQL connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// MigrateURL returns the database URL understood by golang-migrate.
func (c *Config) MigrateURL() string {
	if c.DBDriver == DriverPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
	}
	return "sqlite3://" + c.SQLitePath
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, fallback.String())
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
