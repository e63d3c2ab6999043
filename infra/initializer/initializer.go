package initializer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/amirasaad/lendrix/infra"
	infracache "github.com/amirasaad/lendrix/infra/cache"
	infraeventbus "github.com/amirasaad/lendrix/infra/eventbus"
	infraprovider "github.com/amirasaad/lendrix/infra/provider"
	infrarepository "github.com/amirasaad/lendrix/infra/repository"
	"github.com/amirasaad/lendrix/pkg/app"
	"github.com/amirasaad/lendrix/pkg/cache"
	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/amirasaad/lendrix/pkg/provider"
)

// InitializeDependencies initializes all the application dependencies. The
// returned cleanup closes every connection that was opened.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	cleanup func(),
	err error,
) {
	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}
	defer func() {
		if err != nil {
			closeAll()
		}
	}()

	logger := setupLogger(cfg.Log)
	deps = &app.Deps{Logger: logger}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, sqlDB)

	if cfg.DB.Driver == "postgres" {
		if err = infra.RunMigrations(db, cfg.DB.MigrationsPath); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("Database migrations applied", "path", cfg.DB.MigrationsPath)
	}
	deps.Uow = infrarepository.NewUoW(db)

	deps.Numbers, err = infra.NewAccountNumberGenerator(cfg.AccountNumber.Node)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize account numbers: %w", err)
	}

	rates, rateCloser := initExchangeRate(cfg, logger)
	if rateCloser != nil {
		closers = append(closers, rateCloser)
	}
	deps.ExchangeRate = rates

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if c, ok := bus.(io.Closer); ok {
		closers = append(closers, c)
	}
	deps.EventBus = bus

	logger.Info("Dependencies initialized",
		"db_driver", cfg.DB.Driver,
		"rates", rates.Name(),
		"event_bus", fmt.Sprintf("%T", bus),
	)
	return deps, closeAll, nil
}

// initExchangeRate picks the live API when a key is configured and the static
// table otherwise, then puts a Redis or in-process cache in front of it.
func initExchangeRate(cfg *config.App, logger *slog.Logger) (provider.ExchangeRate, io.Closer) {
	var upstream provider.ExchangeRate
	if cfg.ExchangeRate.ApiKey != "" {
		upstream = infraprovider.NewExchangeRateAPIProvider(cfg.ExchangeRate, logger)
	} else {
		logger.Warn("EXCHANGE_RATE_API_KEY not set, using static exchange rates")
		upstream = infraprovider.NewStaticExchangeRate(
			currency.Code(cfg.ExchangeRate.Base),
			infraprovider.DefaultStaticRates(),
		)
	}

	var (
		rateCache cache.RateCache = infracache.NewMemoryCache()
		closer    io.Closer
	)
	if cfg.Redis.URL != "" {
		redisCache, err := infracache.NewRedisRateCache(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
		if err != nil {
			logger.Warn("Redis rate cache unavailable, using memory cache", "error", err)
		} else {
			rateCache = redisCache
			closer = redisCache
		}
	}
	return infraprovider.NewCachedExchangeRate(upstream, rateCache, cfg.ExchangeRate.CacheTTL, logger), closer
}

// initEventBus builds the configured bus. A configured broker that cannot be
// reached degrades to the in-memory bus.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = cfg.EventBus.Driver
	}

	switch driver {
	case "", "memory":
		logger.Info("Using in-memory event bus")
		return infraeventbus.NewWithMemory(logger), nil
	case "kafka":
		if cfg.Kafka == nil || cfg.Kafka.Brokers == "" {
			return nil, fmt.Errorf("KAFKA_BROKERS is required for the kafka event bus")
		}
		bus, err := infraeventbus.NewWithKafka(cfg.Kafka.Brokers, logger, infraeventbus.KafkaEventBusConfig{
			GroupID:     cfg.Kafka.GroupID,
			TopicPrefix: cfg.Kafka.TopicPrefix,
		})
		if err != nil {
			logger.Warn("Kafka unavailable, falling back to in-memory event bus", "error", err)
			return infraeventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis event bus")
		}
		group := "lendrix"
		if cfg.Kafka != nil && cfg.Kafka.GroupID != "" {
			group = cfg.Kafka.GroupID
		}
		bus, err := infraeventbus.NewWithRedis(cfg.Redis.URL, cfg.EventBus.Stream, group, logger)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory event bus", "error", err)
			return infraeventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unsupported event bus driver %q", driver)
	}
}
