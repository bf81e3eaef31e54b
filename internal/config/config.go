package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// generatedSecretLength is the size of the fallback signing secret (256 bits)
const generatedSecretLength = 32

type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Automation AutomationConfig
	Email      EmailConfig
	Background BackgroundConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string // CIDRs whose X-Forwarded-For is honored for rate limiting
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// AuthConfig is resolved once at startup and never mutated afterwards.
type AuthConfig struct {
	JWTSecret         []byte
	SecretGenerated   bool // JWTSecret was randomly generated; tokens will not survive a restart
	AccessTokenExpiry time.Duration
	MaxFailedAttempts int
	LockoutWindow     time.Duration
	LoginRateLimit    int // Requests per minute per IP on /token and registration
}

type StorageConfig struct {
	Backend       string
	UploadDir     string
	MaxUploadSize int64
	S3            S3Config
	Minio         MinioConfig
}

type S3Config struct {
	Region       string
	Bucket       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AutomationConfig configures the RabbitMQ link to the automation subsystem.
// An empty AMQPURL means the subsystem is unavailable.
type AutomationConfig struct {
	AMQPURL     string
	Queue       string
	CallTimeout time.Duration
}

// EmailConfig configures lockout notifications. An empty FromAddress disables them.
type EmailConfig struct {
	AWSRegion   string
	FromAddress string
}

// Enabled reports whether an automation subsystem is configured
func (c AutomationConfig) Enabled() bool {
	return c.AMQPURL != ""
}

type BackgroundConfig struct {
	ReaperInterval       time.Duration
	EngagementStaleAfter time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	secret, generated, err := resolveJWTSecret(getEnv("JWT_SECRET_KEY", ""), env)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "tiktok_automation"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8000"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:         secret,
			SecretGenerated:   generated,
			AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 30*time.Minute),
			MaxFailedAttempts: getEnvAsInt("MAX_FAILED_LOGIN_ATTEMPTS", 5),
			LockoutWindow:     getEnvAsDuration("LOCKOUT_WINDOW", 30*time.Minute),
			LoginRateLimit:    getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
			UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 200)) << 20,
			S3: S3Config{
				Region:       getEnv("S3_REGION", "us-east-1"),
				Bucket:       getEnv("S3_BUCKET", ""),
				Endpoint:     getEnv("S3_ENDPOINT", ""),
				AccessKey:    getEnv("S3_ACCESS_KEY", ""),
				SecretKey:    getEnv("S3_SECRET_KEY", ""),
				UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false),
			},
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "videos"),
				UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			},
		},
		Automation: AutomationConfig{
			AMQPURL:     getEnv("AUTOMATION_AMQP_URL", ""),
			Queue:       getEnv("AUTOMATION_QUEUE", "tiktok.automation.rpc"),
			CallTimeout: getEnvAsDuration("AUTOMATION_TIMEOUT", 30*time.Second),
		},
		Email: EmailConfig{
			AWSRegion:   getEnv("EMAIL_AWS_REGION", "us-east-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		},
		Background: BackgroundConfig{
			ReaperInterval:       getEnvAsDuration("REAPER_INTERVAL", 5*time.Minute),
			EngagementStaleAfter: getEnvAsDuration("ENGAGEMENT_STALE_AFTER", 1*time.Hour),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if cfg.Auth.MaxFailedAttempts < 1 {
		return nil, fmt.Errorf("MAX_FAILED_LOGIN_ATTEMPTS must be at least 1")
	}

	positive := []struct {
		key   string
		value time.Duration
	}{
		{"ACCESS_TOKEN_EXPIRY", cfg.Auth.AccessTokenExpiry},
		{"LOCKOUT_WINDOW", cfg.Auth.LockoutWindow},
		{"REAPER_INTERVAL", cfg.Background.ReaperInterval},
		{"ENGAGEMENT_STALE_AFTER", cfg.Background.EngagementStaleAfter},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return nil, fmt.Errorf("%s must be positive (got %s)", p.key, p.value)
		}
	}

	if cfg.Storage.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE_MB must be at least 1")
	}

	switch cfg.Storage.Backend {
	case StorageLocal, StorageS3, StorageMinio:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of local, s3, minio (got %q)", cfg.Storage.Backend)
	}

	return cfg, nil
}

// resolveJWTSecret returns the configured signing secret or, when none is set,
// a random one generated for the lifetime of this process.
func resolveJWTSecret(secret, env string) ([]byte, bool, error) {
	if secret == "" {
		generated := make([]byte, generatedSecretLength)
		if _, err := rand.Read(generated); err != nil {
			return nil, false, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		return generated, true, nil
	}

	if err := validateJWTSecret(secret, env); err != nil {
		return nil, false, err
	}
	return []byte(secret), false, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	// Minimum length based on environment
	minLength := 16 // Development minimum
	if env == "production" {
		minLength = 32 // Production requires stronger secret (256 bits)
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET_KEY must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	// Check against common weak secrets
	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET_KEY cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

// parseList splits a comma separated value, dropping empty entries
func parseList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if origins := parseList(getEnv("ALLOWED_ORIGINS", "")); len(origins) > 0 {
		return origins
	}

	if env == "production" {
		return []string{} // Default to no origins in production
	}

	// Development: the dashboard dev server
	return []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
}
