package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/validation"
)

func TestParseResponse_Envelope(t *testing.T) {
	v := validation.New()

	p, err := ParseResponse(`{"groups":[{"master":"Adrenal Glands","variations":["adrenal gland","adrenalgland"]}]}`, v)
	require.NoError(t, err)
	require.Len(t, p.Suggestions, 1)
	assert.Equal(t, "Adrenal Glands", p.Suggestions[0].Master)
	assert.Equal(t, []string{"adrenal gland", "adrenalgland"}, p.Suggestions[0].Variations)
	assert.Zero(t, p.Dropped)
}

func TestParseResponse_BareArrayAndFences(t *testing.T) {
	v := validation.New()

	tests := map[string]string{
		"bare array":      `[{"master":"A","variations":["a"]}]`,
		"json fence":      "```json\n[{\"master\":\"A\",\"variations\":[\"a\"]}]\n```",
		"plain fence":     "```\n{\"groups\":[{\"master\":\"A\",\"variations\":[\"a\"]}]}\n```",
		"surrounding ws":  "\n\n  {\"groups\":[{\"master\":\"A\",\"variations\":[\"a\"]}]}  \n",
		"extra keys kept": `{"groups":[{"master":"A","variations":["a"],"reason":"case"}],"model":"x"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := ParseResponse(raw, v)
			require.NoError(t, err)
			require.Len(t, p.Suggestions, 1)
			assert.Equal(t, "A", p.Suggestions[0].Master)
		})
	}
}

func TestParseResponse_EmptyGroups(t *testing.T) {
	p, err := ParseResponse(`{"groups":[]}`, validation.New())
	require.NoError(t, err)
	assert.Empty(t, p.Suggestions)
	assert.NotNil(t, p.Suggestions)
}

func TestParseResponse_Failures(t *testing.T) {
	v := validation.New()

	tests := map[string]string{
		"empty":            "",
		"prose":            "Here are the groups you asked for.",
		"trailing content": `{"groups":[]} and more`,
		"missing groups":   `{"suggestions":[]}`,
		"groups not array": `{"groups":{"master":"A"}}`,
		"scalar":           `42`,
		"array of strings": `["A","a"]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse(raw, v)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrClassifierParseFailure)
		})
	}
}

func TestParseResponse_DropsMalformedEntries(t *testing.T) {
	raw := `{"groups":[
		{"master":"A","variations":["a"]},
		{"master":"","variations":["b"]},
		{"master":"C","variations":[]},
		{"master":"D"},
		{"master":7,"variations":["e"]},
		{"master":"F","variations":["f", "  "]},
		{"master":"G","variations":["g"]}
	]}`

	p, err := ParseResponse(raw, validation.New())
	require.NoError(t, err)
	assert.Equal(t, 5, p.Dropped)
	require.Len(t, p.Suggestions, 2)
	assert.Equal(t, "A", p.Suggestions[0].Master)
	assert.Equal(t, "G", p.Suggestions[1].Master)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
	assert.Equal(t, `[]`, stripFences("```[]```"))
}
