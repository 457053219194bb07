package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/tagengine/internal/classifier"
	"github.com/listenupapp/tagengine/internal/config"
	"github.com/listenupapp/tagengine/internal/di/providers"
	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Environment: "test"},
		Logger: config.LoggerConfig{Level: "error"},
		Store:  config.StoreConfig{Path: filepath.Join(t.TempDir(), "tags.db")},
		Classifier: config.ClassifierConfig{
			Provider:    config.ProviderNone,
			ChunkSize:   config.DefaultChunkSize,
			Concurrency: 2,
			RPS:         1,
			Burst:       1,
		},
	}
}

func TestContainer_WiresTagService(t *testing.T) {
	injector := NewContainer(testConfig(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	svc, err := TagService(injector)
	require.NoError(t, err)

	ctx := context.Background()
	tag, err := svc.CreateTag(ctx, service.CreateTagRequest{Scope: "org-1", Name: "Heart", Category: domain.CategoryTopic})
	require.NoError(t, err)
	assert.Equal(t, domain.ColorPurple, tag.Color)

	_, err = svc.AnalyzeConsolidation(ctx, "org-1")
	require.ErrorIs(t, err, domainerrors.ErrClassifierUnavailable)
}

func TestContainer_NoProviderSkipsCache(t *testing.T) {
	injector := NewContainer(testConfig(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	handle := do.MustInvoke[*providers.ClassifierCacheHandle](injector)
	assert.Nil(t, handle.Cache)

	c := do.MustInvoke[classifier.Classifier](injector)
	assert.IsType(t, classifier.Unavailable{}, c)
}

func TestContainer_BadStorePath(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	cfg.Store.Path = filepath.Join(blocker, "tags.db")

	injector := NewContainer(cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := TagService(injector)
	require.Error(t, err)
}
