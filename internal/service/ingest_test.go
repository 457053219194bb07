package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
)

func TestFindOrCreateTag(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.svc.FindOrCreateTag(ctx, testScope, "Preeclampsia", domain.CategoryConcept)
	require.NoError(t, err)

	found, err := env.svc.FindOrCreateTag(ctx, testScope, " PREECLAMPSIA ", domain.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Preeclampsia", found.Name)
	assert.Equal(t, domain.CategoryConcept, found.Category)

	_, err = env.svc.FindOrCreateTag(ctx, testScope, "", domain.CategoryTopic)
	require.ErrorIs(t, err, domainerrors.ErrEmptyName)
}

func TestTagContent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	existing := env.create(t, "Heart", domain.CategorySource)

	tags, err := env.svc.TagContent(ctx, testScope, "doc-1",
		[]string{"heart", "Lung", " "},
		[]string{"LUNG", "Kidney", "HEART"},
		domain.CategoryTopic,
	)
	require.NoError(t, err)

	require.Len(t, tags, 3)
	assert.Equal(t, existing.ID, tags[0].ID)
	assert.Equal(t, "Lung", tags[1].Name)
	assert.Equal(t, "Kidney", tags[2].Name)
	assert.Equal(t, domain.CategoryTopic, tags[2].Category)

	for _, tag := range tags {
		assert.Equal(t, []string{"doc-1"}, env.links(t, domain.AssociationCurrent, tag.ID))
		assert.Empty(t, env.links(t, domain.AssociationLegacy, tag.ID))
	}

	// Tagging again changes nothing.
	again, err := env.svc.TagContent(ctx, testScope, "doc-1", []string{"Lung"}, nil, domain.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, tags[1].ID, again[0].ID)
	assert.Equal(t, []string{"doc-1"}, env.links(t, domain.AssociationCurrent, tags[1].ID))

	all, err := env.svc.ListTags(ctx, testScope)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTagContent_Empty(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tags, err := env.svc.TagContent(ctx, testScope, "doc-1", []string{"  "}, nil, domain.CategoryTopic)
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = env.svc.TagContent(ctx, testScope, "", []string{"Heart"}, nil, domain.CategoryTopic)
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}
