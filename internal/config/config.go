// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const EnvProduction = "production"

type Config struct {
	Env string `json:"env"`

	Database struct {
		Host       string `json:"host"`
		Port       string `json:"port"`
		User       string `json:"user"`
		Password   string `json:"password"`
		Name       string `json:"name"`
		SSLMode    string `json:"sslmode"`
		SearchPath string `json:"schema"`
	} `json:"database"`
	JWT struct {
		Secret     string        `json:"secret"`
		AccessTTL  time.Duration `json:"access_ttl"`
		RefreshTTL time.Duration `json:"refresh_ttl"`
	} `json:"jwt"`
	Server struct {
		Port         string        `json:"port"`
		ReadTimeout  time.Duration `json:"read_timeout"`
		WriteTimeout time.Duration `json:"write_timeout"`
	}
	Redis struct {
		URL      string `json:"url"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Storage struct {
		Endpoint     string `json:"endpoint"`
		Region       string `json:"region"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		UsePathStyle bool   `json:"use_path_style"`
		PublicURL    string `json:"public_url"`
		FilesBucket  string `json:"files_bucket"`
		ImagesBucket string `json:"images_bucket"`
	} `json:"storage"`
	Upload struct {
		MaxBytes int64 `json:"max_bytes"`
	} `json:"upload"`
	EmailProvider string `json:"email_provider"`
	Sendgrid      struct {
		APIKey string `json:"api_key"`
		From   string `json:"from"`
	} `json:"sendgrid"`
	SMTP map[string]SMTPConfig `json:"smtp"`

	// AdminEmailWhitelist is the raw comma separated ADMIN_EMAIL_WHITELIST value.
	AdminEmailWhitelist string `json:"admin_email_whitelist"`

	BaseURL string `json:"base_url"`
	WebDir  string `json:"web_dir"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// IsProduction reports whether cookies must carry the Secure flag.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DSN renders the postgres connection string shared by the API and dealroomctl.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
		c.Database.SearchPath,
	)
}

func Load() *Config {
	cfg := &Config{}

	cfg.Env = getEnv("APP_ENV", "development")

	// Database configuration
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "dealroom")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.SearchPath = getEnv("DB_SCHEMA", "public")

	// JWT configuration
	cfg.JWT.Secret = getEnv("JWT_SECRET", "your-secret-key")
	cfg.JWT.AccessTTL = getEnvDuration("JWT_ACCESS_TTL", time.Hour)
	cfg.JWT.RefreshTTL = getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour)

	// Redis configuration
	cfg.Redis.URL = getEnv("REDIS_URL", "redis://localhost:6379/0")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// Object storage configuration
	cfg.Storage.Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.Storage.Region = getEnv("S3_REGION", "us-east-1")
	cfg.Storage.AccessKey = getEnv("S3_ACCESS_KEY", "")
	cfg.Storage.SecretKey = getEnv("S3_SECRET_KEY", "")
	cfg.Storage.UsePathStyle = getEnvBool("S3_USE_PATH_STYLE", false)
	cfg.Storage.PublicURL = getEnv("S3_PUBLIC_URL", "")
	cfg.Storage.FilesBucket = getEnv("S3_FILES_BUCKET", "opportunity-files")
	cfg.Storage.ImagesBucket = getEnv("S3_IMAGES_BUCKET", "opportunity-images")

	cfg.Upload.MaxBytes = int64(getEnvInt("UPLOAD_MAX_BYTES", 50*1024*1024))

	// Email configuration
	cfg.EmailProvider = getEnv("EMAIL_PROVIDER", "sendgrid")
	cfg.Sendgrid.APIKey = getEnv("SENDGRID_API_KEY", "")
	cfg.Sendgrid.From = getEnv("SENDGRID_FROM", "")

	if host := getEnv("SMTP_HOST", ""); host != "" {
		cfg.SMTP = map[string]SMTPConfig{
			"smtp": {
				Host:     host,
				Port:     getEnvInt("SMTP_PORT", 587),
				Username: getEnv("SMTP_USERNAME", ""),
				Password: getEnv("SMTP_PASSWORD", ""),
				From:     getEnv("SMTP_FROM", ""),
			},
		}
	}

	cfg.AdminEmailWhitelist = getEnv("ADMIN_EMAIL_WHITELIST", "")

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.ReadTimeout = time.Second * 15
	cfg.Server.WriteTimeout = time.Second * 60

	cfg.BaseURL = strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/")
	cfg.WebDir = getEnv("WEB_DIR", "")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
