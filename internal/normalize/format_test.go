package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"adrenal glands", "Adrenal Glands"},
		{"  heart   failure ", "Heart Failure"},
		{"diseases of the heart", "Diseases of the Heart"},
		{"the heart", "The Heart"},
		{"mRNA vaccines", "mRNA Vaccines"},
		{"DNA repair", "DNA Repair"},
		{"Preeclampsia", "Preeclampsia"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleCase(tt.input))
		})
	}
}

func TestTitleCase_Idempotent(t *testing.T) {
	for _, in := range []string{"adrenal glands", "diseases of the heart", "mRNA vaccines"} {
		once := TitleCase(in)
		assert.Equal(t, once, TitleCase(once))
	}
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "Heart Failure", CollapseSpaces("  Heart \t  Failure\n"))
}

func TestLookupFormatter(t *testing.T) {
	f, ok := LookupFormatter("title")
	assert.True(t, ok)
	assert.Equal(t, "Renal Failure", f("renal failure"))

	f, ok = LookupFormatter("collapse")
	assert.True(t, ok)
	assert.Equal(t, "renal failure", f(" renal  failure "))

	_, ok = LookupFormatter("shout")
	assert.False(t, ok)
}
