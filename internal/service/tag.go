// Package service holds the tag consolidation orchestrator. It is the only
// layer that combines pure planning with store I/O.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/events"
	"github.com/listenupapp/tagengine/internal/id"
	"github.com/listenupapp/tagengine/internal/lockmap"
	"github.com/listenupapp/tagengine/internal/store"
	"github.com/listenupapp/tagengine/internal/suggest"
	"github.com/listenupapp/tagengine/internal/validation"
)

// TagService orchestrates tag identity, merge, rename, and formatting
// operations for one store.
type TagService struct {
	store     store.TagStore
	resolver  *suggest.Resolver
	events    events.Emitter
	validator *validation.Validator
	locks     *lockmap.Keyed[string]
	logger    *slog.Logger
}

// NewTagService creates a new tag service. resolver may be nil when no
// classifier is configured; emitter may be nil.
func NewTagService(s store.TagStore, resolver *suggest.Resolver, emitter events.Emitter, logger *slog.Logger) *TagService {
	if emitter == nil {
		emitter = events.NewNoopEmitter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TagService{
		store:     s,
		resolver:  resolver,
		events:    emitter,
		validator: validation.New(),
		locks:     lockmap.New[string](),
		logger:    logger,
	}
}

// CreateTagRequest contains fields for creating a tag.
type CreateTagRequest struct {
	Scope    string          `json:"scope" validate:"required,max=200"`
	Name     string          `json:"name" validate:"tagname"`
	Category domain.Category `json:"category" validate:"category"`
}

// RenameConflict identifies the tag that already holds a requested name.
type RenameConflict struct {
	ExistingTagID   string `json:"existing_tag_id"`
	ExistingTagName string `json:"existing_tag_name"`
}

// RenameResult is the outcome of RenameTag. When Conflict is set the
// rename did not happen and Tag is the unchanged tag; the caller may
// resolve it with MergeTags.
type RenameResult struct {
	Tag       *domain.Tag     `json:"tag"`
	Conflict  *RenameConflict `json:"conflict,omitempty"`
	Unchanged bool            `json:"unchanged,omitempty"`
}

// ListTags returns every tag in a scope ordered by name.
func (s *TagService) ListTags(ctx context.Context, scope string) ([]*domain.Tag, error) {
	tags, err := s.store.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetTag returns a tag by id.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, mapStoreError(err, "tag %s", tagID)
	}
	return t, nil
}

// CreateTag creates a tag whose name is new to the scope. The color comes
// from the category.
func (s *TagService) CreateTag(ctx context.Context, req CreateTagRequest) (*domain.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domainerrors.ErrEmptyName
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByName(ctx, req.Scope, req.Name)
	switch {
	case err == nil:
		return nil, duplicateName(existing)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("find tag by name: %w", err)
	}

	tagID, err := id.NewTagID()
	if err != nil {
		return nil, fmt.Errorf("generate tag id: %w", err)
	}

	t := domain.NewTag(tagID, req.Scope, req.Name, req.Category)
	if err := s.store.InsertTag(ctx, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent create.
			return nil, domainerrors.DuplicateNamef("tag %q already exists in scope", req.Name)
		}
		return nil, fmt.Errorf("insert tag: %w", err)
	}

	s.logger.Info("tag created", "tag_id", t.ID, "scope", t.Scope, "name", t.Name, "category", t.Category)
	s.events.Emit(events.NewTagCreatedEvent(t))

	return t, nil
}

// RenameTag changes a tag's display name. Category and color are kept.
//
// A name equal to the current one is a no-op. A name that case-insensitively
// matches another tag in the scope is reported as a Conflict, not an error.
// Changing only the casing of the tag's own name is allowed.
func (s *TagService) RenameTag(ctx context.Context, tagID, newName string) (*RenameResult, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domainerrors.ErrEmptyName
	}
	if utf8.RuneCountInString(newName) > validation.MaxNameLength {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"name": fmt.Sprintf("must not exceed %d characters", validation.MaxNameLength)})
	}

	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, mapStoreError(err, "tag %s", tagID)
	}

	if newName == t.Name {
		return &RenameResult{Tag: t, Unchanged: true}, nil
	}

	conflict, err := s.findConflict(ctx, t, newName)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return &RenameResult{Tag: t, Conflict: conflict}, nil
	}

	oldName := t.Name
	renamed := *t
	renamed.Name = newName
	renamed.EnforceColor()
	renamed.Touch()

	if err := s.store.UpdateTag(ctx, &renamed); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Another writer took the name between the check and the write.
			conflict, cerr := s.findConflict(ctx, t, newName)
			if cerr != nil {
				return nil, cerr
			}
			if conflict == nil {
				conflict = &RenameConflict{ExistingTagName: newName}
			}
			return &RenameResult{Tag: t, Conflict: conflict}, nil
		}
		return nil, mapStoreError(err, "tag %s", tagID)
	}

	s.logger.Info("tag renamed", "tag_id", tagID, "old_name", oldName, "new_name", newName)
	s.events.Emit(events.NewTagRenamedEvent(&renamed, oldName))

	return &RenameResult{Tag: &renamed}, nil
}

// findConflict returns the other tag in t's scope that holds name, if any.
func (s *TagService) findConflict(ctx context.Context, t *domain.Tag, name string) (*RenameConflict, error) {
	existing, err := s.store.FindByName(ctx, t.Scope, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by name: %w", err)
	}
	if existing.ID == t.ID {
		return nil, nil
	}
	return &RenameConflict{ExistingTagID: existing.ID, ExistingTagName: existing.Name}, nil
}

// UpdateCategory sets a tag's category and recomputes its color.
func (s *TagService) UpdateCategory(ctx context.Context, tagID string, category domain.Category) (*domain.Tag, error) {
	if !category.Valid() {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"category": "must be one of: source, topic, concept"})
	}

	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, mapStoreError(err, "tag %s", tagID)
	}

	t.SetCategory(category)
	t.Touch()
	if err := s.store.UpdateTag(ctx, t); err != nil {
		return nil, mapStoreError(err, "tag %s", tagID)
	}

	s.logger.Info("tag recategorized", "tag_id", tagID, "category", category, "color", t.Color)
	s.events.Emit(events.NewTagRecategorizedEvent(t))

	return t, nil
}

// DeleteTag removes a tag and every association that points at it.
func (s *TagService) DeleteTag(ctx context.Context, tagID string) error {
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return mapStoreError(err, "tag %s", tagID)
	}

	unlock, err := s.locks.Lock(ctx, tagID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return mapStoreError(err, "tag %s", tagID)
	}

	s.logger.Info("tag deleted", "tag_id", tagID, "name", t.Name)
	s.events.Emit(events.NewTagDeletedEvent(t))
	return nil
}

// getInScope loads a tag and checks that it belongs to scope.
func (s *TagService) getInScope(ctx context.Context, scope, tagID string) (*domain.Tag, error) {
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, mapStoreError(err, "tag %s", tagID)
	}
	if t.Scope != scope {
		return nil, domainerrors.NotFoundf("tag %s not found in scope", tagID)
	}
	return t, nil
}

func duplicateName(existing *domain.Tag) error {
	return domainerrors.DuplicateNamef("tag %q already exists in scope", existing.Name).
		WithDetails(map[string]string{"existing_tag_id": existing.ID})
}

// mapStoreError converts store sentinels into coded errors. Anything else
// is wrapped as an infrastructure failure.
func mapStoreError(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.DuplicateNamef("%s: name already exists in scope", what).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validationf("%s: %v", what, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
