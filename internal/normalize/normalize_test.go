package normalize

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Preeclampsia", "preeclampsia"},
		{"  PRE-ECLAMPSIA\t", "pre-eclampsia"},
		{"", ""},
		{"   ", ""},
		{"Émile", "émile"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Name(tt.input))
		})
	}
}

func TestMergeTagLists(t *testing.T) {
	tests := []struct {
		name      string
		primary   []string
		secondary []string
		expected  []string
	}{
		{"both empty", []string{}, []string{}, []string{}},
		{"nil inputs", nil, nil, []string{}},
		{"whitespace only", []string{"  ", "\t"}, []string{"   ", "\n"}, []string{}},
		{"primary casing wins", []string{"Preeclampsia"}, []string{"preeclampsia"}, []string{"Preeclampsia"}},
		{"secondary appended", []string{"Cardiology"}, []string{"Renal", "cardiology"}, []string{"Cardiology", "Renal"}},
		{"dedupe within primary", []string{"HELLP", "hellp", "Hellp"}, nil, []string{"HELLP"}},
		{"trims entries", []string{"  Adrenal Glands "}, []string{"adrenal glands"}, []string{"Adrenal Glands"}},
		{"secondary only", nil, []string{"b", "B", "a"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeTagLists(tt.primary, tt.secondary))
		})
	}
}

// randomNames builds lists that collide often under case folding.
func randomNames(r *rand.Rand, n int) []string {
	bases := []string{"preeclampsia", "hellp", "adrenal gland", "renal", "cardio", " ", ""}
	out := make([]string, n)
	for i := range out {
		b := []rune(bases[r.IntN(len(bases))])
		for j := range b {
			if r.IntN(2) == 0 {
				b[j] = []rune(strings.ToUpper(string(b[j])))[0]
			}
		}
		pad := strings.Repeat(" ", r.IntN(3))
		out[i] = pad + string(b) + pad
	}
	return out
}

func TestMergeTagLists_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for range 500 {
		a := randomNames(r, r.IntN(8))
		b := randomNames(r, r.IntN(8))
		result := MergeTagLists(a, b)

		// No two entries share a normalized form.
		seen := map[string]bool{}
		for _, name := range result {
			key := Name(name)
			assert.False(t, seen[key], "duplicate %q in %q", key, result)
			assert.NotEmpty(t, key)
			seen[key] = true
		}

		// Every non-blank entry of a is present with a's first casing.
		firstA := map[string]string{}
		for _, name := range a {
			key := Name(name)
			if key == "" {
				continue
			}
			if _, ok := firstA[key]; !ok {
				firstA[key] = strings.TrimSpace(name)
			}
		}
		for _, want := range firstA {
			assert.Contains(t, result, want)
		}

		// Every entry of b not colliding with a is present.
		for _, name := range b {
			key := Name(name)
			if key == "" {
				continue
			}
			if _, inA := firstA[key]; inA {
				continue
			}
			assert.True(t, seen[key], "missing %q from secondary", name)
		}
	}
}

func TestHasDuplicate(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected bool
	}{
		{"shared casing differs", []string{"Preeclampsia"}, []string{"PREECLAMPSIA "}, true},
		{"disjoint", []string{"Renal"}, []string{"Cardiology"}, false},
		{"empty", nil, nil, false},
		{"blanks never match", []string{" "}, []string{""}, false},
		{"one empty", []string{"Renal"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasDuplicate(tt.a, tt.b))
			assert.Equal(t, tt.expected, HasDuplicate(tt.b, tt.a), "must be symmetric")
		})
	}
}
