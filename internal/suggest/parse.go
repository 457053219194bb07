package suggest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	domainerrors "github.com/listenupapp/tagengine/internal/errors"
	"github.com/listenupapp/tagengine/internal/validation"
)

//go:embed response.schema.json
var responseSchemaJSON string

const responseSchemaURL = "consolidation_response.schema.json"

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// Suggestion is one classifier-proposed group, by name.
type Suggestion struct {
	Master     string   `json:"master" validate:"tagname"`
	Variations []string `json:"variations" validate:"required,min=1,dive,tagname"`
}

// Parsed is the outcome of parsing one classifier response.
type Parsed struct {
	Suggestions []Suggestion
	// Dropped counts entries that were present but malformed.
	Dropped int
}

// ParseResponse turns raw classifier text into suggestions. A response that
// is not JSON, or whose envelope does not match the schema, fails with
// CLASSIFIER_PARSE_FAILURE. Individual malformed entries are dropped and
// counted instead.
func ParseResponse(raw string, v *validation.Validator) (*Parsed, error) {
	value, err := decodeStrictJSON([]byte(stripFences(raw)))
	if err != nil {
		return nil, domainerrors.ClassifierParseFailure(fmt.Errorf("decode response: %w", err))
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, domainerrors.ClassifierParseFailure(fmt.Errorf("schema validation failed: %w", err))
	}

	var entries []any
	switch tv := value.(type) {
	case []any:
		entries = tv
	case map[string]any:
		entries, _ = tv["groups"].([]any)
	}

	out := &Parsed{Suggestions: make([]Suggestion, 0, len(entries))}
	for _, entry := range entries {
		s, ok := decodeEntry(entry, v)
		if !ok {
			out.Dropped++
			continue
		}
		out.Suggestions = append(out.Suggestions, s)
	}
	return out, nil
}

func decodeEntry(entry any, v *validation.Validator) (Suggestion, bool) {
	b, err := json.Marshal(entry)
	if err != nil {
		return Suggestion{}, false
	}
	var s Suggestion
	if err := json.Unmarshal(b, &s); err != nil {
		return Suggestion{}, false
	}
	if err := v.Validate(s); err != nil {
		return Suggestion{}, false
	}
	return s, true
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(responseSchemaURL, strings.NewReader(responseSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(responseSchemaURL)
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("response is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("response contains trailing content")
	}

	return value, nil
}
