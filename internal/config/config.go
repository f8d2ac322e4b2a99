package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string
	Env            string
	Version        string
	AllowedOrigins []string

	DB        DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Bootstrap BootstrapConfig
	Photos    PhotosConfig
}

// DatabaseConfig contains connection parameters for the shared operational
// database. Driver is either "mysql" (the bot's MariaDB) or "postgres".
type DatabaseConfig struct {
	Driver        string
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	RunMigrations bool
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SessionConfig selects and configures the session store.
type SessionConfig struct {
	Store        string // memory, redis or cookie
	Secret       string
	Lifetime     time.Duration
	CookieSecure bool
}

// BootstrapConfig holds the first-run administrator account. All three
// values must be set for the account to be created.
type BootstrapConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Enabled reports whether a bootstrap administrator was configured.
func (b BootstrapConfig) Enabled() bool {
	return b.AdminUsername != "" && b.AdminEmail != "" && b.AdminPassword != ""
}

// PhotosConfig points at the bucket holding service photos uploaded by
// technicians. Bucket empty disables URL presigning.
type PhotosConfig struct {
	Bucket string
	Region string
	URLTTL time.Duration
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreCookie = "cookie"
)

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "5000")
	cfg.Env = getEnv("ENV", "development")
	cfg.Version = getEnv("APP_VERSION", "1.0.0")
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Driver:        strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		Host:          getEnv("DB_HOST", ""),
		Port:          getEnv("DB_PORT", ""),
		User:          getEnv("DB_USER", ""),
		Password:      getEnv("DB_PASSWORD", ""),
		Name:          getEnv("DB_NAME", ""),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		RunMigrations: getEnvBool("DB_RUN_MIGRATIONS", true),
	}
	if cfg.DB.Port == "" {
		cfg.DB.Port = defaultPort(cfg.DB.Driver)
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Session
	var err error
	cfg.Session = SessionConfig{
		Store:        strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		Secret:       getEnv("SESSION_SECRET", ""),
		CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", cfg.Env == "production"),
	}
	if cfg.Session.Lifetime, err = parseDurationEnv("SESSION_LIFETIME", "12h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}

	// First-run administrator; there is intentionally no default pair.
	cfg.Bootstrap = BootstrapConfig{
		AdminUsername: getEnv("BOOTSTRAP_ADMIN_USERNAME", ""),
		AdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}

	// Service photos
	cfg.Photos = PhotosConfig{
		Bucket: getEnv("PHOTOS_BUCKET", ""),
		Region: getEnv("PHOTOS_REGION", "sa-east-1"),
	}
	if cfg.Photos.URLTTL, err = parseDurationEnv("PHOTOS_URL_TTL", "15m"); err != nil {
		return nil, fmt.Errorf("invalid PHOTOS_URL_TTL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: use mysql or postgres", c.DB.Driver)
	}
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	case SessionStoreCookie:
		if len(c.Session.Secret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters when SESSION_STORE=cookie")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q: use memory, redis or cookie", c.Session.Store)
	}
	if c.Session.Lifetime == 0 {
		return errors.New("SESSION_LIFETIME must be greater than zero")
	}
	return nil
}

func defaultPort(driver string) string {
	if driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a bool or a default if empty/invalid.
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

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
