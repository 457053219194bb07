// Package plan computes the storage-agnostic operations behind merges and
// bulk renames. Inputs are plain ids and names; nothing here performs I/O.
package plan

// MergePlan lists what to do with one source tag's associations.
type MergePlan struct {
	// Transfer holds content ids to re-point from the source to the target.
	Transfer []string
	// Dedupe holds content ids whose source-side row must be deleted
	// because the target already links them.
	Dedupe []string
}

// Len returns the number of associations the plan touches.
func (p MergePlan) Len() int {
	return len(p.Transfer) + len(p.Dedupe)
}

// Empty reports whether the plan has nothing to do.
func (p MergePlan) Empty() bool {
	return p.Len() == 0
}

// PlanMerge splits a source tag's associations into transfers and dedupes
// against the target's current associations.
func PlanMerge(source, target []string) MergePlan {
	return NewCoverage(target).Plan(source)
}

// Coverage is the running set of content ids already linked to a merge
// target. For an N-source merge, sources are planned left to right against
// one Coverage so a later source never transfers an id an earlier source
// just moved.
type Coverage struct {
	covered map[string]struct{}
}

// NewCoverage starts a coverage set from the target's associations.
func NewCoverage(target []string) *Coverage {
	c := &Coverage{covered: make(map[string]struct{}, len(target))}
	c.Add(target...)
	return c
}

// Add marks content ids as covered by the target.
func (c *Coverage) Add(contentIDs ...string) {
	for _, id := range contentIDs {
		c.covered[id] = struct{}{}
	}
}

// Covers reports whether the target already links contentID.
func (c *Coverage) Covers(contentID string) bool {
	_, ok := c.covered[contentID]
	return ok
}

// Len returns the number of covered content ids.
func (c *Coverage) Len() int {
	return len(c.covered)
}

// Plan computes the merge plan for one source and records its transfers as
// covered. Order follows the source input; repeated ids are planned once.
func (c *Coverage) Plan(source []string) MergePlan {
	var p MergePlan
	planned := make(map[string]struct{}, len(source))

	for _, id := range source {
		if _, dup := planned[id]; dup {
			continue
		}
		planned[id] = struct{}{}

		if c.Covers(id) {
			p.Dedupe = append(p.Dedupe, id)
			continue
		}
		p.Transfer = append(p.Transfer, id)
	}

	c.Add(p.Transfer...)
	return p
}
