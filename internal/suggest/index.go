package suggest

import (
	"cmp"
	"slices"

	"github.com/listenupapp/tagengine/internal/domain"
	"github.com/listenupapp/tagengine/internal/normalize"
)

// NameIndex resolves tag names to tags in constant time, using the same
// case-insensitive key as the uniqueness rule.
type NameIndex struct {
	byKey map[string]domain.TagRef
}

// NewNameIndex indexes every tag once.
func NewNameIndex(tags []*domain.Tag) *NameIndex {
	idx := &NameIndex{byKey: make(map[string]domain.TagRef, len(tags))}
	for _, t := range tags {
		key := t.NameKey()
		if key == "" {
			continue
		}
		if _, ok := idx.byKey[key]; !ok {
			idx.byKey[key] = t.Ref()
		}
	}
	return idx
}

// Lookup resolves name to a tag.
func (idx *NameIndex) Lookup(name string) (domain.TagRef, bool) {
	ref, ok := idx.byKey[normalize.Name(name)]
	return ref, ok
}

// Len returns the number of indexed names.
func (idx *NameIndex) Len() int {
	return len(idx.byKey)
}

// Names returns the display names ordered by key, so near-identical names
// end up next to each other (and usually in the same chunk).
func (idx *NameIndex) Names() []string {
	refs := make([]domain.TagRef, 0, len(idx.byKey))
	for _, ref := range idx.byKey {
		refs = append(refs, ref)
	}
	slices.SortFunc(refs, func(a, b domain.TagRef) int {
		return cmp.Or(
			cmp.Compare(normalize.Name(a.Name), normalize.Name(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})

	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}
