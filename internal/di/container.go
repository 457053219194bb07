// Package di provides dependency injection configuration for the tag engine.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/listenupapp/tagengine/internal/config"
	"github.com/listenupapp/tagengine/internal/di/providers"
	"github.com/listenupapp/tagengine/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideEmitter)

	// Classifier layer
	do.Provide(injector, providers.ProvideClassifierCache)
	do.Provide(injector, providers.ProvideClassifier)
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideResolver)

	// Business services
	do.Provide(injector, providers.ProvideTagService)

	return injector
}

// TagService resolves the tag service and everything it depends on.
// Provider failures (bad database path, missing API key) surface here.
func TagService(injector do.Injector) (*service.TagService, error) {
	svc, err := do.Invoke[*service.TagService](injector)
	if err != nil {
		return nil, fmt.Errorf("initialize tag service: %w", err)
	}
	return svc, nil
}
