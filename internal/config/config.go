// Package config loads the API configuration from the environment.
// A .env file in the working directory is honoured when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	PricePolicyStrict  = "strict"
	PricePolicyCatalog = "catalog"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	Port        string
	BaseURL     string
	CORSOrigins []string
	UploadDir   string

	StoreDriver string
	Database    DatabaseConfig

	JWTSecret string
	TokenTTL  time.Duration

	AuthAttempts int
	AuthWindow   time.Duration

	Orders OrderConfig

	NotificationRetention int

	GuestCartTTL       time.Duration
	GuestSweepInterval time.Duration

	SeedCatalog bool

	GeminiAPIKey string
	GeminiModel  string
}

type DatabaseConfig struct {
	DSN              string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
}

type OrderConfig struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
	TxTimeout             time.Duration
	PricePolicy           string
	AllowBackorder        bool
}

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	// A missing .env is normal in containers; the real environment still applies.
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnv("PORT", "5000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:5000"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		Database: DatabaseConfig{
			DSN:              databaseDSN(),
			MaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			StatementTimeout: getEnvDuration("DB_STATEMENT_TIMEOUT", 5*time.Second),
		},

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 7*24*time.Hour),

		AuthAttempts: getEnvInt("AUTH_RATE_LIMIT_ATTEMPTS", 5),
		AuthWindow:   getEnvDuration("AUTH_RATE_LIMIT_WINDOW", 15*time.Minute),

		NotificationRetention: getEnvInt("NOTIFICATION_RETENTION", 50),

		GuestCartTTL:       getEnvDuration("GUEST_CART_TTL", 24*time.Hour),
		GuestSweepInterval: getEnvDuration("GUEST_CART_SWEEP_INTERVAL", 10*time.Minute),

		SeedCatalog: getEnvBool("SEED_CATALOG", true),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
	}

	var err error
	cfg.Orders, err = loadOrderConfig()
	if err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" && cfg.AppEnv == "dev" {
		cfg.JWTSecret = "dev-only-secret-change-me"
	}

	return cfg, cfg.Validate()
}

// Default returns the configuration used when nothing is set, with the
// in-memory store. Tests build on it.
func Default() Config {
	orders, _ := loadOrderConfigFrom(map[string]string{})
	return Config{
		AppEnv:                "dev",
		LogLevel:              "info",
		Port:                  "5000",
		BaseURL:               "http://localhost:5000",
		UploadDir:             "./uploads",
		StoreDriver:           DriverMemory,
		JWTSecret:             "dev-only-secret-change-me",
		TokenTTL:              7 * 24 * time.Hour,
		AuthAttempts:          5,
		AuthWindow:            15 * time.Minute,
		Orders:                orders,
		NotificationRetention: 50,
		GuestCartTTL:          24 * time.Hour,
		GuestSweepInterval:    10 * time.Minute,
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DATABASE_URL (or DB_HOST/DB_NAME) is required for the postgres store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.AuthAttempts <= 0 || c.AuthWindow <= 0 {
		errs = append(errs, errors.New("auth rate limit attempts and window must be positive"))
	}
	if c.NotificationRetention <= 0 {
		errs = append(errs, errors.New("NOTIFICATION_RETENTION must be positive"))
	}
	if c.Orders.PricePolicy != PricePolicyStrict && c.Orders.PricePolicy != PricePolicyCatalog {
		errs = append(errs, fmt.Errorf("unknown ORDER_PRICE_POLICY %q", c.Orders.PricePolicy))
	}
	if c.Orders.TaxRate.IsNegative() || c.Orders.ShippingFee.IsNegative() {
		errs = append(errs, errors.New("tax rate and shipping fee cannot be negative"))
	}
	return errors.Join(errs...)
}

func loadOrderConfig() (OrderConfig, error) {
	env := map[string]string{}
	for _, key := range []string{"FREE_SHIPPING_THRESHOLD", "SHIPPING_FEE", "TAX_RATE", "ORDER_TX_TIMEOUT", "ORDER_PRICE_POLICY", "ALLOW_BACKORDER"} {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return loadOrderConfigFrom(env)
}

func loadOrderConfigFrom(env map[string]string) (OrderConfig, error) {
	get := func(key, def string) string {
		if v, ok := env[key]; ok && v != "" {
			return v
		}
		return def
	}

	threshold, err := decimal.NewFromString(get("FREE_SHIPPING_THRESHOLD", "50.00"))
	if err != nil {
		return OrderConfig{}, fmt.Errorf("FREE_SHIPPING_THRESHOLD: %w", err)
	}
	fee, err := decimal.NewFromString(get("SHIPPING_FEE", "9.99"))
	if err != nil {
		return OrderConfig{}, fmt.Errorf("SHIPPING_FEE: %w", err)
	}
	rate, err := decimal.NewFromString(get("TAX_RATE", "0.10"))
	if err != nil {
		return OrderConfig{}, fmt.Errorf("TAX_RATE: %w", err)
	}
	timeout, err := time.ParseDuration(get("ORDER_TX_TIMEOUT", "5s"))
	if err != nil {
		return OrderConfig{}, fmt.Errorf("ORDER_TX_TIMEOUT: %w", err)
	}
	backorder, err := strconv.ParseBool(get("ALLOW_BACKORDER", "false"))
	if err != nil {
		return OrderConfig{}, fmt.Errorf("ALLOW_BACKORDER: %w", err)
	}

	return OrderConfig{
		FreeShippingThreshold: threshold,
		ShippingFee:           fee,
		TaxRate:               rate,
		TxTimeout:             timeout,
		PricePolicy:           strings.ToLower(get("ORDER_PRICE_POLICY", PricePolicyStrict)),
		AllowBackorder:        backorder,
	}, nil
}

// databaseDSN prefers DATABASE_URL and falls back to discrete DB_* variables.
func databaseDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host,
		getEnv("DB_PORT", "5432"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		name,
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
