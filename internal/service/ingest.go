package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/normalize"
	"github.com/listenupapp/tagengine/internal/store"
)

// FindOrCreateTag returns the scope's tag named name, creating it with
// category the first time the name is seen. If a concurrent create wins,
// the winner is returned. An existing tag keeps its own category.
func (s *TagService) FindOrCreateTag(ctx context.Context, scope, name string, category domain.Category) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.ErrEmptyName
	}

	t, err := s.store.FindByName(ctx, scope, name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find tag by name: %w", err)
	}

	t, err = s.CreateTag(ctx, CreateTagRequest{Scope: scope, Name: name, Category: category})
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domainerrors.ErrDuplicateName) {
		return nil, err
	}

	t, err = s.store.FindByName(ctx, scope, name)
	if err != nil {
		return nil, mapStoreError(err, "tag %q", name)
	}
	return t, nil
}

// TagContent links contentID to the combined, de-duplicated tag names from
// primary and secondary. Names are created on first sight. Linking an
// already linked tag is a no-op.
func (s *TagService) TagContent(ctx context.Context, scope, contentID string, primary, secondary []string, category domain.Category) ([]*domain.Tag, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, domainerrors.Validation("content id is required")
	}

	names := normalize.MergeTagLists(primary, secondary)
	tags := make([]*domain.Tag, 0, len(names))

	for _, name := range names {
		t, err := s.FindOrCreateTag(ctx, scope, name, category)
		if err != nil {
			return tags, fmt.Errorf("tag %q: %w", name, err)
		}
		if err := s.store.AddAssociation(ctx, domain.AssociationCurrent, contentID, t.ID); err != nil {
			return tags, mapStoreError(err, "link content %s to tag %s", contentID, t.ID)
		}
		tags = append(tags, t)
	}

	s.logger.Debug("content tagged", "scope", scope, "content_id", contentID, "tags", len(tags))
	return tags, nil
}
