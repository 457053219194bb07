// Package events defines the change notifications the tag engine emits after
// successful writes.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/tagengine/internal/domain"
)

// EventType identifies a change notification.
type EventType string

// Tag event types.
const (
	EventTagCreated       EventType = "tag.created"
	EventTagRenamed       EventType = "tag.renamed"
	EventTagRecategorized EventType = "tag.recategorized"
	EventTagDeleted       EventType = "tag.deleted"
	EventTagsMerged       EventType = "tags.merged"
	EventTagsFormatted    EventType = "tags.formatted"
)

// Event is one notification. Data holds one of the *EventData types below.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	Scope     string    `json:"scope"`
}

// TagEventData is the payload for created, renamed, and recategorized events.
type TagEventData struct {
	Tag     *domain.Tag `json:"tag"`
	OldName string      `json:"old_name,omitempty"`
}

// TagDeletedEventData is the payload for tag.deleted.
type TagDeletedEventData struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
}

// TagsMergedEventData is the payload for tags.merged.
type TagsMergedEventData struct {
	TargetID             string   `json:"target_id"`
	SourceIDs            []string `json:"source_ids"`
	AffectedAssociations int      `json:"affected_associations"`
}

// TagsFormattedEventData is the payload for tags.formatted.
type TagsFormattedEventData struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// NewTagCreatedEvent creates a tag.created event.
func NewTagCreatedEvent(t *domain.Tag) Event {
	return Event{
		Type:      EventTagCreated,
		Scope:     t.Scope,
		Data:      TagEventData{Tag: t},
		Timestamp: time.Now(),
	}
}

// NewTagRenamedEvent creates a tag.renamed event.
func NewTagRenamedEvent(t *domain.Tag, oldName string) Event {
	return Event{
		Type:      EventTagRenamed,
		Scope:     t.Scope,
		Data:      TagEventData{Tag: t, OldName: oldName},
		Timestamp: time.Now(),
	}
}

// NewTagRecategorizedEvent creates a tag.recategorized event.
func NewTagRecategorizedEvent(t *domain.Tag) Event {
	return Event{
		Type:      EventTagRecategorized,
		Scope:     t.Scope,
		Data:      TagEventData{Tag: t},
		Timestamp: time.Now(),
	}
}

// NewTagDeletedEvent creates a tag.deleted event.
func NewTagDeletedEvent(t *domain.Tag) Event {
	return Event{
		Type:      EventTagDeleted,
		Scope:     t.Scope,
		Data:      TagDeletedEventData{TagID: t.ID, Name: t.Name},
		Timestamp: time.Now(),
	}
}

// NewTagsMergedEvent creates a tags.merged event.
func NewTagsMergedEvent(scope, targetID string, sourceIDs []string, affected int) Event {
	return Event{
		Type:  EventTagsMerged,
		Scope: scope,
		Data: TagsMergedEventData{
			TargetID:             targetID,
			SourceIDs:            sourceIDs,
			AffectedAssociations: affected,
		},
		Timestamp: time.Now(),
	}
}

// NewTagsFormattedEvent creates a tags.formatted event.
func NewTagsFormattedEvent(scope string, updated, skipped int) Event {
	return Event{
		Type:      EventTagsFormatted,
		Scope:     scope,
		Data:      TagsFormattedEventData{Updated: updated, Skipped: skipped},
		Timestamp: time.Now(),
	}
}

// Emitter receives events. Implementations must not block the caller for long.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// NewNoopEmitter returns an emitter that discards events.
func NewNoopEmitter() *NoopEmitter { return &NoopEmitter{} }

// Emit does nothing.
func (*NoopEmitter) Emit(Event) {}

// LogEmitter writes each event as a structured log line.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter returns an emitter that logs at info level.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Emit logs the event.
func (e *LogEmitter) Emit(ev Event) {
	e.logger.LogAttrs(context.Background(), slog.LevelInfo, "event",
		slog.String("type", string(ev.Type)),
		slog.String("scope", ev.Scope),
		slog.Any("data", ev.Data),
	)
}

// Recorder keeps every event in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends the event.
func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	evs := r.Events()
	types := make([]EventType, len(evs))
	for i, ev := range evs {
		types[i] = ev.Type
	}
	return types
}
