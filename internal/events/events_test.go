package events

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/tagengine/internal/domain"
)

func TestRecorder_Concurrent(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Emit(NewTagsFormattedEvent("s", 1, 0))
		}()
	}
	wg.Wait()

	assert.Len(t, r.Events(), 20)
}

func TestLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewLogEmitter(slog.New(slog.NewJSONHandler(&buf, nil)))

	tag := domain.NewTag("tag-1", "scope-a", "Heart Failure", domain.CategoryTopic)
	e.Emit(NewTagRenamedEvent(tag, "heart failure"))

	out := buf.String()
	assert.Contains(t, out, `"type":"tag.renamed"`)
	assert.Contains(t, out, `"scope":"scope-a"`)
}

func TestConstructors(t *testing.T) {
	tag := domain.NewTag("tag-1", "scope-a", "Alpha", domain.CategoryTopic)

	ev := NewTagsMergedEvent("scope-a", "tag-1", []string{"tag-2"}, 4)
	assert.Equal(t, EventTagsMerged, ev.Type)
	assert.Equal(t, 4, ev.Data.(TagsMergedEventData).AffectedAssociations)

	assert.Equal(t, EventTagDeleted, NewTagDeletedEvent(tag).Type)
	assert.Equal(t, "scope-a", NewTagCreatedEvent(tag).Scope)

	NewNoopEmitter().Emit(ev)
}
