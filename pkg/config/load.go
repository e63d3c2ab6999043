package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePath (searching parent
// directories), then fills App from the environment.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		logger.Info("Loaded environment from file", "path", foundPath)
		return loadFromEnv()
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system environment variables")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Currency.MetaFile != "" {
		n, err := currency.Default().LoadFile(cfg.Currency.MetaFile)
		if err != nil {
			return nil, domain.Errorf(domain.ErrValidation, "CURRENCY_META_FILE: %v", err)
		}
		slog.Default().Info("Loaded currency metadata", "path", cfg.Currency.MetaFile, "count", n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"db_driver", cfg.DB.Driver,
		"db", maskValue(cfg.DB.Url),
		"auth_jwt_expiry", cfg.Auth.Jwt.Expiry,
		"limits_daily", cfg.Limits.Daily.String(),
		"limits_weekly", cfg.Limits.Weekly.String(),
		"settlement_currency", cfg.Settlement.Currency,
		"exchange_api_url", cfg.ExchangeRate.ApiUrl,
		"exchange_api_key", maskValue(cfg.ExchangeRate.ApiKey),
		"exchange_cache_ttl", cfg.ExchangeRate.CacheTTL,
		"redis", maskValue(cfg.Redis.URL),
		"kafka_brokers", cfg.Kafka.Brokers,
		"event_bus", cfg.EventBus.Driver,
	)
	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags.
func (a *App) Validate() error {
	if _, err := currency.Parse(a.Settlement.Currency); err != nil {
		return domain.Errorf(domain.ErrValidation, "SETTLEMENT_CURRENCY: %v", err)
	}
	if _, err := currency.Parse(a.ExchangeRate.Base); err != nil {
		return domain.Errorf(domain.ErrValidation, "EXCHANGE_RATE_BASE: %v", err)
	}
	if !a.Limits.Daily.IsPositive() || a.Limits.Weekly.LessThan(a.Limits.Daily) {
		return domain.NewError(domain.ErrValidation, "LIMITS_DAILY must be positive and not exceed LIMITS_WEEKLY")
	}
	if !a.Card.MinFunding.IsPositive() {
		return domain.NewError(domain.ErrValidation, "CARD_MIN_FUNDING must be positive")
	}
	if a.Card.NumberMaxAttempts < 1 {
		return domain.NewError(domain.ErrValidation, "CARD_NUMBER_MAX_ATTEMPTS must be at least 1")
	}
	if a.Fee.ConversionPercentage.IsNegative() {
		return domain.NewError(domain.ErrValidation, "FEE_CONVERSION_PERCENTAGE cannot be negative")
	}
	switch a.DB.Driver {
	case "postgres", "sqlite":
	default:
		return domain.Errorf(domain.ErrValidation, "DATABASE_DRIVER must be postgres or sqlite, got %q", a.DB.Driver)
	}
	switch a.EventBus.Driver {
	case "memory":
	case "kafka":
		if a.Kafka.Brokers == "" {
			return domain.NewError(domain.ErrValidation, "KAFKA_BROKERS is required when EVENT_BUS_DRIVER=kafka")
		}
	case "redis":
		if a.Redis.URL == "" {
			return domain.NewError(domain.ErrValidation, "REDIS_URL is required when EVENT_BUS_DRIVER=redis")
		}
	default:
		return domain.Errorf(domain.ErrValidation, "EVENT_BUS_DRIVER must be memory, kafka or redis, got %q", a.EventBus.Driver)
	}
	return nil
}

// FindEnvFile searches for filename in the working directory and its parents.
// An empty filename means .env.
func FindEnvFile(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	curr, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(curr, filename)
		if _, err = os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			return "", os.ErrNotExist
		}
		curr = parent
	}
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
