package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is read once at start-up and never modified afterwards. Signing
// secrets live here and in the KeyManager built from it, nowhere else.
type Config struct {
	Issuer string // Issuer claim stamped into and required on every token (default: hospital-auth)

	Algorithm      string        // JWT signing algorithm, HS256 or EdDSA (default: HS256)
	AccessSecret   []byte        // HS256 secret for access tokens, at least 32 bytes
	RefreshSecret  []byte        // HS256 secret for refresh tokens, must differ from AccessSecret
	AccessKeyFile  string        // EdDSA PKCS8 PEM for access tokens (empty: ephemeral)
	RefreshKeyFile string        // EdDSA PKCS8 PEM for refresh tokens (empty: ephemeral)
	AccessTTL      time.Duration // Access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Refresh token lifetime (default: 7 days)
	TokenLeeway    time.Duration // Clock skew tolerated on exp/iat/nbf (default: 0)

	UserLookupTimeout time.Duration // Bound on each user store read (default: 2s)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database path (default: ./auth.db)
	DatabaseURL    string // Postgres connection URL
	PepperFile     string // Path to the password pepper, generated if absent (default: ./pepper)

	Bootstrap service.BootstrapConfig // First SUPER_ADMIN, created only into an empty store

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "hospital-auth"),
		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", jwtx.AlgorithmHS256),
		AccessSecret:   []byte(os.Getenv("AUTH_ACCESS_SECRET")),
		RefreshSecret:  []byte(os.Getenv("AUTH_REFRESH_SECRET")),
		AccessKeyFile:  os.Getenv("AUTH_ACCESS_KEY_FILE"),
		RefreshKeyFile: os.Getenv("AUTH_REFRESH_KEY_FILE"),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:     getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		TokenLeeway:    getEnvDurationOrDefault("AUTH_TOKEN_LEEWAY", 0),

		UserLookupTimeout: getEnvDurationOrDefault("AUTH_USER_LOOKUP_TIMEOUT", service.DefaultLookupTimeout),

		DatabaseDriver: getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Bootstrap: service.BootstrapConfig{
			Email:          os.Getenv("AUTH_BOOTSTRAP_EMAIL"),
			Password:       os.Getenv("AUTH_BOOTSTRAP_PASSWORD"),
			DisplayName:    os.Getenv("AUTH_BOOTSTRAP_NAME"),
			OrganizationID: os.Getenv("AUTH_BOOTSTRAP_ORGANIZATION"),
		},

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	var errs []error

	if c.Issuer == "" {
		errs = append(errs, errors.New("AUTH_ISSUER must not be empty"))
	}

	switch c.Algorithm {
	case jwtx.AlgorithmHS256:
		if len(c.AccessSecret) < jwtx.MinSecretSize {
			errs = append(errs, fmt.Errorf("AUTH_ACCESS_SECRET must be at least %d bytes", jwtx.MinSecretSize))
		}
		if len(c.RefreshSecret) < jwtx.MinSecretSize {
			errs = append(errs, fmt.Errorf("AUTH_REFRESH_SECRET must be at least %d bytes", jwtx.MinSecretSize))
		}
		if len(c.AccessSecret) > 0 && string(c.AccessSecret) == string(c.RefreshSecret) {
			errs = append(errs, errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must differ"))
		}
	case jwtx.AlgorithmEdDSA:
		if c.AccessKeyFile != "" && c.AccessKeyFile == c.RefreshKeyFile {
			errs = append(errs, errors.New("AUTH_ACCESS_KEY_FILE and AUTH_REFRESH_KEY_FILE must differ"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_ALGORITHM %q is not supported (HS256, EdDSA)", c.Algorithm))
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TTL and AUTH_REFRESH_TTL must be positive"))
	} else if c.AccessTTL > c.RefreshTTL {
		errs = append(errs, fmt.Errorf("AUTH_ACCESS_TTL (%s) must not exceed AUTH_REFRESH_TTL (%s)", c.AccessTTL, c.RefreshTTL))
	}
	if c.TokenLeeway < 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_LEEWAY must not be negative"))
	}
	if c.UserLookupTimeout <= 0 {
		errs = append(errs, errors.New("AUTH_USER_LOOKUP_TIMEOUT must be positive"))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE must not be empty"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_DATABASE_DRIVER %q is not supported (sqlite, postgres)", c.DatabaseDriver))
	}

	if c.Bootstrap.Email != "" && c.Bootstrap.Password == "" {
		errs = append(errs, errors.New("AUTH_BOOTSTRAP_PASSWORD is required when AUTH_BOOTSTRAP_EMAIL is set"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
