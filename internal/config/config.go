// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env        string        // application environment (dev, test, prod)
	Port       string        // HTTP port to listen on
	MongoURI   string        // full connection string; built from DB_* when unset
	DBName     string        // database name
	JWTSecret  string        // secret used to sign JWTs
	TokenTTL   time.Duration // lifetime of session and verification tokens
	BcryptCost int           // bcrypt cost for password hashing

	FrontendURL    string // base URL for links embedded in emails
	UploadDir      string // directory holding uploaded profile pictures
	UploadMaxBytes int64  // largest accepted upload

	Mail      MailConfig
	Queue     QueueConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// MailConfig describes the SMTP relay used for notifications. An empty
// Host disables direct delivery.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// QueueConfig describes the RabbitMQ queue carrying notifications. An
// empty URL disables the queue.
type QueueConfig struct {
	URL   string
	Queue string
}

// LoadEnvFile loads variables from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the environment. Missing required
// variables are reported together.
func Load() (Config, error) {
	var missing []string
	must := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8500"),
		DBName:         envStr("DB_NAME", "Ticket_booking_system"),
		JWTSecret:      must("JWT_SECRET"),
		TokenTTL:       envDur("TOKEN_TTL", 24*time.Hour),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		FrontendURL:    strings.TrimRight(envStr("FRONTEND_URL", "http://localhost:3000"), "/"),
		UploadDir:      envStr("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: int64(envInt("UPLOAD_MAX_BYTES", 5<<20)),
		Mail: MailConfig{
			Host:     os.Getenv("EMAIL_HOST"),
			Port:     envInt("EMAIL_PORT", 587),
			Username: os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
			From:     envStr("EMAIL_FROM", os.Getenv("EMAIL_USER")),
			FromName: envStr("EMAIL_FROM_NAME", "Movie Booking System"),
		},
		Queue: QueueConfig{
			URL:   envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
			Queue: envStr("NOTIFY_QUEUE", "notifications.email"),
		},
		Redis:     LoadRedisConfig(),
		RateLimit: LoadRateLimitConfig(),
	}

	cfg.MongoURI = os.Getenv("MONGO_URI")
	if cfg.MongoURI == "" {
		user, host := must("DB_USER"), must("DB_HOST")
		cfg.MongoURI = mongoURI(user, os.Getenv("DB_PASS"), host)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return cfg, nil
}

// mongoURI builds an Atlas style SRV connection string.
func mongoURI(user, pass, host string) string {
	u := url.URL{Scheme: "mongodb+srv", Host: host, Path: "/"}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	u.RawQuery = "retryWrites=true&w=majority"
	return u.String()
}
