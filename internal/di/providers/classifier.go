package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/tagengine/internal/classifier"
	"github.com/listenupapp/tagengine/internal/config"
	"github.com/listenupapp/tagengine/internal/logger"
	"github.com/listenupapp/tagengine/internal/ratelimit"
	"github.com/listenupapp/tagengine/internal/suggest"
)

// ClassifierCacheHandle wraps the response cache for lifecycle management.
// Cache is nil when caching is disabled.
type ClassifierCacheHandle struct {
	Cache *classifier.Cache
}

// Shutdown implements do.Shutdownable.
func (h *ClassifierCacheHandle) Shutdown() error {
	if h.Cache == nil {
		return nil
	}
	return h.Cache.Close()
}

// ProvideClassifierCache opens the Badger response cache when a TTL is set.
// An empty cache path keeps entries in memory for the life of the process.
func ProvideClassifierCache(i do.Injector) (*ClassifierCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Classifier.Provider == config.ProviderNone || cfg.Classifier.CacheTTL <= 0 {
		return &ClassifierCacheHandle{}, nil
	}

	cache, err := classifier.OpenCache(cfg.Classifier.CachePath, cfg.Classifier.CacheTTL)
	if err != nil {
		return nil, err
	}

	log.Debug("Classifier cache opened",
		"path", cfg.Classifier.CachePath,
		"ttl", cfg.Classifier.CacheTTL,
	)

	return &ClassifierCacheHandle{Cache: cache}, nil
}

// ProvideClassifier provides the configured classifier, wrapped in the
// response cache when one is open.
func ProvideClassifier(i do.Injector) (classifier.Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*ClassifierCacheHandle](i)

	if cfg.Classifier.Provider == config.ProviderNone {
		log.Debug("No classifier configured")
		return classifier.Unavailable{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), clientInitTimeout)
	defer cancel()

	gemini, err := classifier.NewGemini(ctx, cfg.Classifier.APIKey, cfg.Classifier.Model)
	if err != nil {
		return nil, err
	}

	log.Debug("Classifier initialized", "provider", cfg.Classifier.Provider, "model", gemini.Model())

	if cacheHandle.Cache == nil {
		return gemini, nil
	}
	return classifier.NewCached(gemini, cacheHandle.Cache, log.Logger), nil
}

// ProvideRateLimiter provides the per-scope classifier rate limiter.
func ProvideRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.NewWithTTL(cfg.Classifier.RPS, cfg.Classifier.Burst, limiterIdleTTL), nil
}

// ProvideResolver provides the suggestion resolver.
func ProvideResolver(i do.Injector) (*suggest.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	c := do.MustInvoke[classifier.Classifier](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)

	return suggest.NewResolver(c, limiter, log.Logger, suggest.Options{
		ChunkSize:   cfg.Classifier.ChunkSize,
		Concurrency: cfg.Classifier.Concurrency,
		Timeout:     cfg.Classifier.Timeout,
	}), nil
}
