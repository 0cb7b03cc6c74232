// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"` // SERVER_TIMEOUT_SECONDS

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"` // DB_CONN_MAX_LIFETIME_MINUTES

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Identity Provider (Keycloak) Configuration
	KeycloakBaseURL      string        `mapstructure:"KEYCLOAK_BASE_URL"`
	KeycloakRealm        string        `mapstructure:"KEYCLOAK_REALM"`
	KeycloakAdminRealm   string        `mapstructure:"KEYCLOAK_ADMIN_REALM"`
	KeycloakClientID     string        `mapstructure:"KEYCLOAK_CLIENT_ID"`
	KeycloakClientSecret string        `mapstructure:"KEYCLOAK_CLIENT_SECRET"`
	KeycloakTimeout      time.Duration `mapstructure:"-"` // KEYCLOAK_TIMEOUT_SECONDS
	KeycloakAudience     string        `mapstructure:"KEYCLOAK_AUDIENCE"`

	// KeycloakAllowedRealms lists realms besides the token's own that callers may
	// target with the realm header.
	KeycloakAllowedRealms []string `mapstructure:"-"` // KEYCLOAK_ALLOWED_REALMS, comma separated

	// Authorization
	ModeratorRole string `mapstructure:"MODERATOR_ROLE"`

	// Audit trail
	AuditRetentionDays        int    `mapstructure:"AUDIT_RETENTION_DAYS"`
	AuditRetentionJobSchedule string `mapstructure:"AUDIT_RETENTION_JOB_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "backend_resources")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("KEYCLOAK_BASE_URL", "http://localhost:8180")
	v.SetDefault("KEYCLOAK_REALM", "itm")
	v.SetDefault("KEYCLOAK_ADMIN_REALM", "")
	v.SetDefault("KEYCLOAK_CLIENT_ID", "backend-resources")
	v.SetDefault("KEYCLOAK_CLIENT_SECRET", "")
	v.SetDefault("KEYCLOAK_TIMEOUT_SECONDS", 5)
	v.SetDefault("KEYCLOAK_AUDIENCE", "")
	v.SetDefault("KEYCLOAK_ALLOWED_REALMS", "")

	v.SetDefault("MODERATOR_ROLE", "MODERATOR")

	v.SetDefault("AUDIT_RETENTION_DAYS", 90)
	v.SetDefault("AUDIT_RETENTION_JOB_SCHEDULE", "@daily")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.KeycloakTimeout = time.Duration(v.GetInt("KEYCLOAK_TIMEOUT_SECONDS")) * time.Second

	cfg.KeycloakAllowedRealms = splitList(v.GetString("KEYCLOAK_ALLOWED_REALMS"))

	cfg.KeycloakBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.KeycloakBaseURL), "/")
	if strings.TrimSpace(cfg.KeycloakAdminRealm) == "" {
		cfg.KeycloakAdminRealm = cfg.KeycloakRealm
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.KeycloakBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("KEYCLOAK_BASE_URL must be an absolute http(s) URL, got %q", c.KeycloakBaseURL)
	}
	if strings.TrimSpace(c.KeycloakRealm) == "" {
		return fmt.Errorf("KEYCLOAK_REALM is not set")
	}
	if strings.TrimSpace(c.KeycloakClientID) == "" {
		return fmt.Errorf("KEYCLOAK_CLIENT_ID is not set")
	}
	if c.KeycloakTimeout <= 0 {
		return fmt.Errorf("KEYCLOAK_TIMEOUT_SECONDS must be positive")
	}
	if strings.TrimSpace(c.ModeratorRole) == "" {
		return fmt.Errorf("MODERATOR_ROLE is not set")
	}
	return nil
}

// DSN builds the GORM postgres connection string from the individual DB_* settings.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
