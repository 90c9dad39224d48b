package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"

	AuthFirebase = "firebase"
	AuthClerk    = "clerk"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"3333"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, production
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	// Document store
	StoreBackend               string `env:"STORE_BACKEND" envDefault:"firestore"`
	FirebaseProjectID          string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile    string `env:"FIREBASE_CREDENTIALS_FILE" envDefault:"./serviceAccountKey.json"`
	FirebaseServiceAccountJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"` // base64 encoded
	DatabaseURL                string `env:"DATABASE_URL"`

	// Caller identity
	AuthProvider   string `env:"AUTH_PROVIDER" envDefault:"firebase"`
	ClerkSecretKey string `env:"CLERK_SECRET_KEY"`

	// External analysis and LLM
	ModelAPIURL    string `env:"MODEL_API_URL"`
	MistralAPIKey  string `env:"MISTRAL_API_KEY"`
	MistralBaseURL string `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai/v1"`
	MistralModel   string `env:"MISTRAL_MODEL" envDefault:"mistral-small-latest"`

	// Chore reset triggers
	RabbitMQURL       string        `env:"RABBITMQ_URL"`
	ResetQueue        string        `env:"RESET_QUEUE" envDefault:"daily-chore-reset"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	SweepLockTTL      time.Duration `env:"SWEEP_LOCK_TTL" envDefault:"10m"`
	ResetPolicy       string        `env:"RESET_POLICY" envDefault:"calendar"`
	PubSubResetPolicy string        `env:"PUB_SUB_RESET_POLICY" envDefault:"elapsed"`
	SweepHour         int           `env:"SWEEP_HOUR" envDefault:"0"`

	// HTTP surface
	MetricsUser    string  `env:"METRICS_USER"`
	MetricsPass    string  `env:"METRICS_PASS"`
	PprofSecret    string  `env:"PPROF_SECRET"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"30"`
}

// Load reads an optional .env file and then the process environment.
// It reports whether a .env file was found so the caller can log it.
func Load(files ...string) (*Config, bool, error) {
	foundEnvFile := godotenv.Load(files...) == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, foundEnvFile, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, foundEnvFile, err
	}

	return &cfg, foundEnvFile, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendFirestore:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	switch c.AuthProvider {
	case AuthFirebase:
	case AuthClerk:
		if c.ClerkSecretKey == "" {
			errs = append(errs, errors.New("CLERK_SECRET_KEY is required for the clerk auth provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider))
	}

	for name, policy := range map[string]string{"RESET_POLICY": c.ResetPolicy, "PUB_SUB_RESET_POLICY": c.PubSubResetPolicy} {
		if policy != "calendar" && policy != "elapsed" {
			errs = append(errs, fmt.Errorf("%s must be calendar or elapsed, got %q", name, policy))
		}
	}

	if c.SweepHour < 0 || c.SweepHour > 23 {
		errs = append(errs, fmt.Errorf("SWEEP_HOUR must be between 0 and 23, got %d", c.SweepHour))
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// NeedsFirebase reports whether a Firebase app has to be initialized.
func (c *Config) NeedsFirebase() bool {
	return c.StoreBackend == BackendFirestore || c.AuthProvider == AuthFirebase
}
