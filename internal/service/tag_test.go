package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/events"
	"github.com/listenupapp/tagengine/internal/logger"
	"github.com/listenupapp/tagengine/internal/store/sqlite"
	"github.com/listenupapp/tagengine/internal/suggest"
)

const testScope = "scope-a"

type testEnv struct {
	svc    *TagService
	store  *sqlite.Store
	events *events.Recorder
}

func newTestEnv(t *testing.T, resolver *suggest.Resolver) *testEnv {
	t.Helper()

	log := logger.Discard().Logger
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "tags.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	rec := &events.Recorder{}
	return &testEnv{
		svc:    NewTagService(s, resolver, rec, log),
		store:  s,
		events: rec,
	}
}

func (e *testEnv) create(t *testing.T, name string, category domain.Category) *domain.Tag {
	t.Helper()
	tag, err := e.svc.CreateTag(context.Background(), CreateTagRequest{Scope: testScope, Name: name, Category: category})
	require.NoError(t, err)
	return tag
}

func (e *testEnv) link(t *testing.T, table domain.AssociationTable, tagID string, contentIDs ...string) {
	t.Helper()
	for _, c := range contentIDs {
		require.NoError(t, e.store.AddAssociation(context.Background(), table, c, tagID))
	}
}

func (e *testEnv) links(t *testing.T, table domain.AssociationTable, tagID string) []string {
	t.Helper()
	ids, err := e.store.FindAssociationsByTag(context.Background(), table, tagID)
	require.NoError(t, err)
	return ids
}

func TestCreateTag(t *testing.T) {
	env := newTestEnv(t, nil)

	tag := env.create(t, "  Preeclampsia  ", domain.CategoryConcept)

	assert.NotEmpty(t, tag.ID)
	assert.Equal(t, "Preeclampsia", tag.Name)
	assert.Equal(t, testScope, tag.Scope)
	assert.Equal(t, domain.ColorGreen, tag.Color)
	assert.Equal(t, []events.EventType{events.EventTagCreated}, env.events.Types())

	stored, err := env.svc.GetTag(context.Background(), tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.Name, stored.Name)
	assert.Equal(t, tag.Color, stored.Color)
}

func TestCreateTag_ColorFollowsCategory(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := map[domain.Category]domain.Color{
		domain.CategorySource:  domain.ColorBlue,
		domain.CategoryTopic:   domain.ColorPurple,
		domain.CategoryConcept: domain.ColorGreen,
	}
	for category, color := range cases {
		tag := env.create(t, "tag "+string(category), category)
		assert.Equal(t, color, tag.Color, category)
	}
}

func TestCreateTag_DuplicateIgnoresCase(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	first := env.create(t, "Preeclampsia", domain.CategoryConcept)

	_, err := env.svc.CreateTag(ctx, CreateTagRequest{Scope: testScope, Name: "preeclampsia", Category: domain.CategoryConcept})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateName)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, map[string]string{"existing_tag_id": first.ID}, derr.Details)

	tags, err := env.svc.ListTags(ctx, testScope)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Preeclampsia", tags[0].Name)
}

func TestCreateTag_SameNameOtherScope(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "Heart", domain.CategoryTopic)

	other, err := env.svc.CreateTag(context.Background(), CreateTagRequest{Scope: "scope-b", Name: "heart", Category: domain.CategoryTopic})
	require.NoError(t, err)
	assert.Equal(t, "scope-b", other.Scope)
}

func TestCreateTag_Invalid(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.CreateTag(ctx, CreateTagRequest{Scope: testScope, Name: "   ", Category: domain.CategoryTopic})
	require.ErrorIs(t, err, domainerrors.ErrEmptyName)

	_, err = env.svc.CreateTag(ctx, CreateTagRequest{Scope: testScope, Name: "Heart", Category: "organ"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.svc.CreateTag(ctx, CreateTagRequest{Name: "Heart", Category: domain.CategoryTopic})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	assert.Empty(t, env.events.Events())
}

func TestRenameTag(t *testing.T) {
	env := newTestEnv(t, nil)
	tag := env.create(t, "adrenal gland", domain.CategoryTopic)

	res, err := env.svc.RenameTag(context.Background(), tag.ID, "Adrenal Glands")
	require.NoError(t, err)

	assert.Nil(t, res.Conflict)
	assert.False(t, res.Unchanged)
	assert.Equal(t, "Adrenal Glands", res.Tag.Name)
	assert.Equal(t, domain.CategoryTopic, res.Tag.Category)
	assert.Equal(t, domain.ColorPurple, res.Tag.Color)

	stored, err := env.svc.GetTag(context.Background(), tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Adrenal Glands", stored.Name)

	last := env.events.Events()[len(env.events.Events())-1]
	assert.Equal(t, events.EventTagRenamed, last.Type)
	assert.Equal(t, "adrenal gland", last.Data.(events.TagEventData).OldName)
}

func TestRenameTag_CaseOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	tag := env.create(t, "heart", domain.CategoryTopic)

	res, err := env.svc.RenameTag(context.Background(), tag.ID, "Heart")
	require.NoError(t, err)
	assert.Nil(t, res.Conflict)
	assert.Equal(t, "Heart", res.Tag.Name)
}

func TestRenameTag_Unchanged(t *testing.T) {
	env := newTestEnv(t, nil)
	tag := env.create(t, "Heart", domain.CategoryTopic)

	res, err := env.svc.RenameTag(context.Background(), tag.ID, " Heart ")
	require.NoError(t, err)
	assert.True(t, res.Unchanged)
	assert.Equal(t, []events.EventType{events.EventTagCreated}, env.events.Types())
}

func TestRenameTag_ConflictLeavesTagUntouched(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.create(t, "Heart", domain.CategoryTopic)
	b := env.create(t, "Cardiac", domain.CategoryConcept)

	res, err := env.svc.RenameTag(ctx, a.ID, "cardiac")
	require.NoError(t, err)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, b.ID, res.Conflict.ExistingTagID)
	assert.Equal(t, "Cardiac", res.Conflict.ExistingTagName)

	stored, err := env.svc.GetTag(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Heart", stored.Name)
}

func TestRenameTag_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	tag := env.create(t, "Heart", domain.CategoryTopic)

	_, err := env.svc.RenameTag(ctx, tag.ID, "  ")
	require.ErrorIs(t, err, domainerrors.ErrEmptyName)

	_, err = env.svc.RenameTag(ctx, "tag-missing", "Lung")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	tag := env.create(t, "Gray's Anatomy", domain.CategoryTopic)

	updated, err := env.svc.UpdateCategory(ctx, tag.ID, domain.CategorySource)
	require.NoError(t, err)
	assert.Equal(t, domain.CategorySource, updated.Category)
	assert.Equal(t, domain.ColorBlue, updated.Color)

	stored, err := env.svc.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorBlue, stored.Color)
	assert.Equal(t, domain.ColorFor(stored.Category), stored.Color)
}

func TestUpdateCategory_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	tag := env.create(t, "Heart", domain.CategoryTopic)

	_, err := env.svc.UpdateCategory(ctx, tag.ID, "organ")
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.svc.UpdateCategory(ctx, "tag-missing", domain.CategoryConcept)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteTag(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	tag := env.create(t, "Heart", domain.CategoryTopic)
	env.link(t, domain.AssociationCurrent, tag.ID, "c1", "c2")
	env.link(t, domain.AssociationLegacy, tag.ID, "c3")

	require.NoError(t, env.svc.DeleteTag(ctx, tag.ID))

	_, err := env.svc.GetTag(ctx, tag.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Empty(t, env.links(t, domain.AssociationCurrent, tag.ID))
	assert.Empty(t, env.links(t, domain.AssociationLegacy, tag.ID))

	require.ErrorIs(t, env.svc.DeleteTag(ctx, tag.ID), domainerrors.ErrNotFound)
}
