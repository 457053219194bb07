package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/tagengine/internal/config"
	"github.com/listenupapp/tagengine/internal/events"
	"github.com/listenupapp/tagengine/internal/logger"
	"github.com/listenupapp/tagengine/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite tag store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Store.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Debug("Database initialized", "path", cfg.Store.Path)

	return &StoreHandle{Store: db}, nil
}

// ProvideEmitter provides the change notification sink. Events are logged.
func ProvideEmitter(i do.Injector) (events.Emitter, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return events.NewLogEmitter(log.Logger), nil
}
