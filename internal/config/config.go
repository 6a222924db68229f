package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MetricsPort string
	Env         string

	// Store selects the persistence backend: postgres or memory.
	Store       string
	DatabaseURL string

	JWTSecret       string
	JWTAccessExpiry time.Duration

	BaseURL string

	Log  LogConfig
	SMTP SMTPConfig
	Jobs JobsConfig

	Submission SubmissionConfig
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type JobsConfig struct {
	RequestSweepInterval time.Duration
	PollSweepInterval    time.Duration
	ReconcileInterval    time.Duration
	BackfillInterval     time.Duration
}

type SubmissionConfig struct {
	CheckReachability bool
	CheckTimeout      time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		Env:         getEnv("ENV", "development"),

		Store:       getEnv("STORE", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:       getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},

		Jobs: JobsConfig{
			RequestSweepInterval: getDuration("REQUEST_SWEEP_INTERVAL", 5*time.Minute),
			PollSweepInterval:    getDuration("POLL_SWEEP_INTERVAL", time.Minute),
			ReconcileInterval:    getDuration("RECONCILE_INTERVAL", 15*time.Minute),
			BackfillInterval:     getDuration("BACKFILL_INTERVAL", 10*time.Minute),
		},

		Submission: SubmissionConfig{
			CheckReachability: getBool("URL_CHECK_ENABLED", true),
			CheckTimeout:      getDuration("URL_CHECK_TIMEOUT", 5*time.Second),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
