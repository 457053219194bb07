package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/tagengine/internal/events"
	"github.com/listenupapp/tagengine/internal/logger"
	"github.com/listenupapp/tagengine/internal/service"
	"github.com/listenupapp/tagengine/internal/suggest"
)

// ProvideTagService provides the tag consolidation service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*suggest.Resolver](i)
	emitter := do.MustInvoke[events.Emitter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, resolver, emitter, log.Logger), nil
}
