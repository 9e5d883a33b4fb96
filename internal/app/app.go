package app

import (
	"context"
	"fmt"
	"log/slog"

	"example.com/finsight/backend/internal/advisor"
	"example.com/finsight/backend/internal/ai"
	"example.com/finsight/backend/internal/config"
	"example.com/finsight/backend/internal/database"
	"example.com/finsight/backend/internal/prices"
	"example.com/finsight/backend/internal/repository"
)

// App хранит собранные зависимости и освобождает их в Close.
type App struct {
	Advisor *advisor.Advisor
	closers []func()
}

// Build собирает оркестратор анализа из конфигурации.
// Redis и база аудита подключаются только если заданы их адреса.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	application := &App{}

	client, err := ai.NewClient(ai.ClientConfig{
		Provider:        cfg.AI.Provider,
		APIKey:          cfg.AI.APIKey,
		BaseURL:         cfg.AI.BaseURL,
		Model:           cfg.AI.Model,
		Timeout:         cfg.AI.Timeout,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	cache, err := application.priceCache(ctx, cfg.Cache, logger)
	if err != nil {
		application.Close()
		return nil, err
	}

	priceProvider := prices.NewProvider(prices.Options{
		Stocks:       prices.NewYahooClient(cfg.Prices.YahooBaseURL, cfg.Prices.Timeout),
		Crypto:       prices.NewCoinGeckoClient(cfg.Prices.CoinGeckoBaseURL, cfg.Prices.VsCurrency, cfg.Prices.Timeout),
		Cache:        cache,
		StockSymbols: cfg.Prices.Stocks,
		CryptoIDs:    cfg.Prices.Crypto,
		Logger:       logger,
	})

	recorder, err := application.recorder(ctx, cfg.Audit, logger)
	if err != nil {
		application.Close()
		return nil, err
	}

	application.Advisor = advisor.New(advisor.Options{
		Prices:    priceProvider,
		Generator: ai.NewService(client, logger),
		Recorder:  recorder,
		Logger:    logger,
		Provider:  cfg.AI.Provider,
		Model:     cfg.AI.Model,
	})

	return application, nil
}

// Close освобождает ресурсы в обратном порядке.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) priceCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (prices.Cache, error) {
	if cfg.RedisURL != "" {
		cache, err := prices.NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := cache.Close(); err != nil {
				logger.Warn("redis close failed", slog.String("error", err.Error()))
			}
		})
		logger.Info("price cache configured", slog.String("backend", "redis"))
		return cache, nil
	}

	cache, err := prices.NewMemoryCache(cfg.TTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cache.Close)
	return cache, nil
}

func (a *App) recorder(ctx context.Context, cfg config.AuditConfig, logger *slog.Logger) (advisor.Recorder, error) {
	if cfg.DatabaseURL == "" {
		return advisor.NopRecorder{}, nil
	}

	pool, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	audit := repository.NewAuditRepository(pool)
	if err := audit.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	logger.Info("analysis audit enabled")
	return advisor.NewStoreRecorder(audit, logger), nil
}
