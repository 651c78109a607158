package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string
	DB       DBConfig
	HTTP     HTTPConfig
	Shop     ShopConfig
	Checkout CheckoutConfig
	R2       R2Config
	Report   ReportConfig
}

type DBConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type HTTPConfig struct {
	CORSOrigins []string
}

type ShopConfig struct {
	Timezone string
	// Location is resolved from Timezone in Load.
	Location *time.Location
}

type CheckoutConfig struct {
	CommitTimeout time.Duration
	KeypadEnabled bool
	SnowflakeNode int64
	MaxSessions   int
	SessionIdle   time.Duration
}

type R2Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

type ReportConfig struct {
	Interval time.Duration
}

// Enabled reports whether enough R2 settings exist to build a client.
func (c R2Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// UsePostgres is false when DATABASE_URL is empty; the app then keeps
// everything in memory.
func (c *Config) UsePostgres() bool {
	return c.DB.URL != ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	commitTimeout, err := getDuration("CHECKOUT_COMMIT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	reportInterval, err := getDuration("REPORT_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	tz := getEnv("SHOP_TIMEZONE", "Asia/Tokyo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("SHOP_TIMEZONE %q: %w", tz, err)
	}

	node, err := getInt("SNOWFLAKE_NODE", 1)
	if err != nil {
		return nil, err
	}
	maxConns, err := getInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	maxSessions, err := getInt("CHECKOUT_MAX_SESSIONS", 256)
	if err != nil {
		return nil, err
	}
	sessionIdle, err := getDuration("CHECKOUT_SESSION_IDLE", 12*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(maxConns),
			MinConns: int32(minConns),
		},
		HTTP: HTTPConfig{
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Shop: ShopConfig{
			Timezone: tz,
			Location: loc,
		},
		Checkout: CheckoutConfig{
			CommitTimeout: commitTimeout,
			KeypadEnabled: getBool("KEYPAD_ENABLED", true),
			SnowflakeNode: node,
			MaxSessions:   int(maxSessions),
			SessionIdle:   sessionIdle,
		},
		R2: R2Config{
			Endpoint:      os.Getenv("R2_ENDPOINT"),
			AccessKey:     os.Getenv("R2_ACCESS_KEY"),
			SecretKey:     os.Getenv("R2_SECRET_KEY"),
			Bucket:        os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL: os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		Report: ReportConfig{
			Interval: reportInterval,
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || strings.EqualFold(v, "true")
}

func getInt(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
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
