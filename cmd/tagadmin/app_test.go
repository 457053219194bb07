package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/tagengine/internal/domain"
	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/service"
)

type harness struct {
	t  *testing.T
	db string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("CLASSIFIER_PROVIDER", "none")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ENV", "development")
	return &harness{t: t, db: filepath.Join(t.TempDir(), "tags.db")}
}

func (h *harness) run(stdin string, args ...string) (code int, stdout, stderr string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"-db", h.db, "-env-file", filepath.Join(h.t.TempDir(), "none.env")}, args...)
	code = run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (h *harness) create(name string) *domain.Tag {
	h.t.Helper()
	code, out, stderr := h.run("", "create", "-scope", "org-1", name)
	require.Equal(h.t, 0, code, stderr)
	var tag domain.Tag
	require.NoError(h.t, json.Unmarshal([]byte(out), &tag))
	return &tag
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: tagadmin")

	code, _, stderr = h.run("", "explode")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "explode"`)

	code, _, _ = h.run("", "list")
	assert.Equal(t, 2, code)
}

func TestRun_DedupeLists(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("", "dedupe-lists", "-primary", "Heart, Lung", "-secondary", "heart,Kidney")
	require.Equal(t, 0, code)

	var got struct {
		Merged       []string `json:"merged"`
		HasDuplicate bool     `json:"has_duplicate"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Heart", "Lung", "Kidney"}, got.Merged)
	assert.True(t, got.HasDuplicate)
}

func TestRun_CreateDuplicateReportsCode(t *testing.T) {
	h := newHarness(t)
	h.create("Preeclampsia")

	code, _, stderr := h.run("", "create", "-scope", "org-1", "preeclampsia")
	assert.Equal(t, 1, code)

	var out struct {
		Code domainerrors.Code `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(stderr), &out))
	assert.Equal(t, domainerrors.CodeDuplicateName, out.Code)
}

func TestRun_MergeFlow(t *testing.T) {
	h := newHarness(t)
	target := h.create("Adrenal Glands")
	source := h.create("adrenalgland")

	code, _, stderr := h.run("", "tag-content", "-scope", "org-1", "-content", "doc-1", "-primary", "adrenalgland")
	require.Equal(t, 0, code, stderr)

	code, out, stderr := h.run("", "merge", "-scope", "org-1", "-into", target.ID, source.ID)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr)

	var res service.MergeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{source.ID}, res.DeletedTags)
	assert.Equal(t, 1, res.AffectedAssociations)

	code, out, _ = h.run("", "list", "-scope", "org-1")
	require.Equal(t, 0, code)
	var tags []domain.Tag
	require.NoError(t, json.Unmarshal([]byte(out), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, target.ID, tags[0].ID)
}

func TestRun_ApplyFromStdin(t *testing.T) {
	h := newHarness(t)
	heart := h.create("Heart")
	hearts := h.create("hearts")

	groups := `{"groups":[{"master_id":"` + heart.ID + `","master_name":"Heart","variations":[{"id":"` + hearts.ID + `","name":"hearts"}]}]}`
	code, out, stderr := h.run(groups, "apply", "-scope", "org-1")
	require.Equal(t, 0, code, stderr)

	var res service.ApplyResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Applied)
	assert.Zero(t, res.Failed)
}

func TestRun_AnalyzeWithoutClassifier(t *testing.T) {
	h := newHarness(t)
	h.create("Heart")

	code, _, stderr := h.run("", "analyze", "-scope", "org-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, string(domainerrors.CodeClassifierUnavailable))
}

func TestReadGroups(t *testing.T) {
	bare, err := readGroups(strings.NewReader(`[{"master_id":"tag-a","master_name":"A","variations":[{"id":"tag-b","name":"b"}]}]`))
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.Equal(t, []string{"tag-b"}, bare[0].VariationIDs())

	_, err = readGroups(strings.NewReader(`{"groups":`))
	require.Error(t, err)
}
