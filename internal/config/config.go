package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	Database Database
	JWT      JWT
	Redis    Redis
	MinIO    MinIO
	SMTP     SMTP

	CORSOrigins   []string
	MaxUploadSize int64
}

type Database struct {
	Driver          string // "postgres" or "sqlite"
	URL             string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
	AutoMigrate     bool
}

type JWT struct {
	Secret string
	TTL    time.Duration
}

type Redis struct {
	Addr     string
	Password string
}

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string

	// Private buckets serve images through presigned links valid for SignedURLTTL.
	Private      bool
	SignedURLTTL time.Duration
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (s SMTP) Enabled() bool { return s.Host != "" }

// Enabled reports whether object storage is configured.
func (m MinIO) Enabled() bool { return m.Endpoint != "" }

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("no .env file found, using process environment")
	} else {
		slog.Info(".env file loaded")
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "3001"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: Database{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			URL:             os.Getenv("DATABASE_URL"),
			SQLitePath:      getEnv("SQLITE_PATH", "dkstore.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second),
			ConnectTimeout:  getEnvDuration("DB_CONNECT_TIMEOUT", 2*time.Second),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWT{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    getEnvDuration("JWT_TTL", 7*24*time.Hour),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_HOST"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		MinIO: MinIO{
			Endpoint:     os.Getenv("MINIO_ENDPOINT"),
			AccessKey:    os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:    os.Getenv("MINIO_SECRET_KEY"),
			Bucket:       getEnv("MINIO_BUCKET", "product-images"),
			UseSSL:       getEnvBool("MINIO_USE_SSL", false),
			PublicURL:    os.Getenv("MINIO_PUBLIC_URL"),
			Private:      getEnvBool("MINIO_PRIVATE", false),
			SignedURLTTL: getEnvDuration("MINIO_SIGNED_URL_TTL", 15*time.Minute),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@dkstore.com.br"),
		},
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		MaxUploadSize: int64(getEnvInt("MAX_FILE_SIZE", 5*1024*1024)),
	}

	if cfg.Database.URL == "" && cfg.Database.Driver == "postgres" {
		cfg.Database.URL = fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "dkstore"),
			getEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
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
