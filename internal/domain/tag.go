package domain

import (
	"time"

	"github.com/listenupapp/tagengine/internal/normalize"
)

// Tag is a named, categorized label attached to content items.
// Names are unique per scope under trimmed, case-insensitive comparison.
// Color is derived from Category and never set on its own.
type Tag struct {
	ID        string    `json:"id"`
	Scope     string    `json:"scope"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Color     Color     `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTag builds a tag with its color taken from the category policy.
func NewTag(id, scope, name string, category Category) *Tag {
	now := time.Now().UTC()
	return &Tag{
		ID:        id,
		Scope:     scope,
		Name:      name,
		Category:  category,
		Color:     ColorFor(category),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetCategory changes the category and recomputes the color in one step.
func (t *Tag) SetCategory(c Category) {
	t.Category = c
	t.Color = ColorFor(c)
}

// EnforceColor resets Color to the policy value. Reports whether it changed.
func (t *Tag) EnforceColor() bool {
	want := ColorFor(t.Category)
	if t.Color == want {
		return false
	}
	t.Color = want
	return true
}

// NameKey returns the comparison key used by the uniqueness invariant.
func (t *Tag) NameKey() string {
	return normalize.Name(t.Name)
}

// Ref returns the id/name pair for this tag.
func (t *Tag) Ref() TagRef {
	return TagRef{ID: t.ID, Name: t.Name}
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// TagRef identifies a tag by id together with its display name.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MergeGroup is a proposed consolidation: every variation merges into the master.
// It is never persisted.
type MergeGroup struct {
	MasterID   string   `json:"master_id"`
	MasterName string   `json:"master_name"`
	Variations []TagRef `json:"variations"`
}

// VariationIDs returns the ids of the group's variations in order.
func (g MergeGroup) VariationIDs() []string {
	ids := make([]string, len(g.Variations))
	for i, v := range g.Variations {
		ids[i] = v.ID
	}
	return ids
}
