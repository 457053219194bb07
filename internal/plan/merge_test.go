package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanMerge(t *testing.T) {
	tests := []struct {
		name     string
		source   []string
		target   []string
		transfer []string
		dedupe   []string
	}{
		{
			name:     "disjoint",
			source:   []string{"c1", "c2"},
			target:   []string{"c3"},
			transfer: []string{"c1", "c2"},
		},
		{
			name:   "fully covered",
			source: []string{"c1", "c2"},
			target: []string{"c2", "c1"},
			dedupe: []string{"c1", "c2"},
		},
		{
			name:     "mixed keeps source order",
			source:   []string{"c3", "c1", "c2"},
			target:   []string{"c1"},
			transfer: []string{"c3", "c2"},
			dedupe:   []string{"c1"},
		},
		{
			name:     "repeated source ids planned once",
			source:   []string{"c1", "c1", "c2", "c2"},
			target:   []string{"c2"},
			transfer: []string{"c1"},
			dedupe:   []string{"c2"},
		},
		{
			name: "empty source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlanMerge(tt.source, tt.target)
			assert.Equal(t, tt.transfer, p.Transfer)
			assert.Equal(t, tt.dedupe, p.Dedupe)
		})
	}
}

func TestCoverage_AccumulatesAcrossSources(t *testing.T) {
	cov := NewCoverage([]string{"t1"})

	first := cov.Plan([]string{"a", "shared", "t1"})
	assert.Equal(t, []string{"a", "shared"}, first.Transfer)
	assert.Equal(t, []string{"t1"}, first.Dedupe)

	// "shared" was just moved by the first source, so the second dedupes it.
	second := cov.Plan([]string{"shared", "b"})
	assert.Equal(t, []string{"b"}, second.Transfer)
	assert.Equal(t, []string{"shared"}, second.Dedupe)

	assert.Equal(t, 4, cov.Len())
	assert.True(t, cov.Covers("b"))
	assert.False(t, cov.Covers("zzz"))
}

// The union of all plans plus the target's links covers every id exactly once.
func TestCoverage_Conservation(t *testing.T) {
	target := []string{"c4", "c5", "c6"}
	sources := [][]string{
		{"c1", "c2", "c3", "c6"},
		{"c2", "c7", "c5"},
		{"c7", "c8"},
	}

	cov := NewCoverage(target)
	linked := map[string]int{}
	for _, id := range target {
		linked[id]++
	}
	for _, src := range sources {
		p := cov.Plan(src)
		for _, id := range p.Transfer {
			linked[id]++
		}
	}

	for id, n := range linked {
		assert.Equal(t, 1, n, "content %s linked %d times", id, n)
	}
	assert.Len(t, linked, 8)
}

func TestMergePlan_Len(t *testing.T) {
	p := MergePlan{Transfer: []string{"a"}, Dedupe: []string{"b", "c"}}
	assert.Equal(t, 3, p.Len())
	assert.False(t, p.Empty())
	assert.True(t, MergePlan{}.Empty())
}
