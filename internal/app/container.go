package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapu/fitplan-engine-go/internal/config"
	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/prompt"
	"github.com/kapu/fitplan-engine-go/internal/server"
	"github.com/kapu/fitplan-engine-go/internal/service/ai"
	"github.com/kapu/fitplan-engine-go/internal/service/cache"
	"github.com/kapu/fitplan-engine-go/internal/service/catalog"
	"github.com/kapu/fitplan-engine-go/internal/service/plan"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Container holds the assembled services and the HTTP handler serving them.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Catalog  *catalog.IndexBuilder
	Resolver *catalog.Resolver
	Models   *ai.ModelManager
	Plans    *plan.Gateway
	Router   *gin.Engine

	closers []func()
}

// Close releases resources in reverse construction order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles every component. Network warmup is left to Warmup so that a
// slow upstream never blocks startup.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Catalog
	httpClient := &http.Client{
		Timeout:   constants.CatalogConfig.RequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	seedURL, err := catalog.SeedURL(cfg.Catalog.BaseURL, cfg.Catalog.PageSize)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base URL: %w", err)
	}
	fetcher := catalog.NewClient(httpClient, cfg.Catalog.APIToken, logger)
	normalizer := catalog.NewNormalizer(cfg.Catalog.Language, logger)
	indexBuilder := catalog.NewIndexBuilder(fetcher, normalizer, catalog.NewIndexStore(), catalog.BuilderOptions{
		SeedURL:       seedURL,
		MaxPages:      cfg.Catalog.MaxPages,
		DetachTimeout: constants.CatalogConfig.BuildDetachTimeout,
	}, logger)
	resolver := catalog.NewResolver(fetcher, normalizer, seedURL, cfg.Catalog.MaxPages, logger)

	// Models
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:   cfg.Gemini.APIKey,
		GeminiModel:    cfg.Gemini.Model,
		OpenAIAPIKey:   cfg.OpenAI.APIKey,
		OpenAIModel:    cfg.OpenAI.Model,
		OpenAIBaseURL:  cfg.OpenAI.BaseURL,
		EnableFallback: cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	// Plan cache
	var store cache.PlanStore
	switch cfg.PlanCache.Backend {
	case config.PlanCacheRedis:
		redisStore, redisErr := cache.NewRedisPlanStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if redisErr != nil {
			return nil, fmt.Errorf("failed to create redis plan cache: %w", redisErr)
		}
		closers = append(closers, func() {
			_ = redisStore.Close()
		})
		store = redisStore
	default:
		store = cache.NewMemoryPlanStore()
	}

	gateway := plan.NewGateway(modelManager, indexBuilder, store, prompt.DefaultPromptBuilder(), logger)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:  cfg.Observability.ServiceName,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Handler:      server.NewHandler(indexBuilder, resolver, gateway, modelManager),
		Logger:       logger,
	})

	logger.Info("Services assembled",
		zap.String("catalog_seed", seedURL),
		zap.Int("catalog_max_pages", cfg.Catalog.MaxPages),
		zap.String("model_primary", modelManager.PrimaryName()),
		zap.String("plan_cache", cfg.PlanCache.Backend),
	)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Catalog:  indexBuilder,
		Resolver: resolver,
		Models:   modelManager,
		Plans:    gateway,
		Router:   router,
		closers:  closers,
	}, nil
}

// Warmup builds the catalog index and pings the primary model provider in
// parallel. Failures are logged only; requests retry on demand.
func (c *Container) Warmup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, constants.CatalogConfig.WarmupTimeout)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() {
		idx, _, err := c.Catalog.Index(ctx, false)
		if err != nil {
			c.Logger.Warn("Catalog warmup failed", zap.Error(err))
			return
		}
		c.Logger.Info("Catalog warmup complete", zap.Int("names", idx.Len()))
	})
	wg.Go(func() {
		if !c.Models.Ping(ctx) {
			c.Logger.Warn("Model provider ping failed", zap.String("provider", c.Models.PrimaryName()))
		}
	})
	wg.Wait()
}
