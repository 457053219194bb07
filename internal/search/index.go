// Package search finds tags whose names look alike, without calling out to
// a classifier. Indexes are in memory and built per request from a scope's
// tag list.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/listenupapp/tagengine/internal/domain"
)

// DefaultLimit caps Similar results when no limit is given.
const DefaultLimit = 10

// Match is one similar tag with its relevance score.
type Match struct {
	Tag   domain.TagRef `json:"tag"`
	Score float64       `json:"score"`
}

type tagDocument struct {
	Name    string `json:"name"`
	Compact string `json:"compact"`
}

// TagIndex is an in-memory Bleve index over one scope's tags.
type TagIndex struct {
	index bleve.Index
	size  int
}

// BuildTagIndex indexes every tag in one batch.
func BuildTagIndex(tags []*domain.Tag) (*TagIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create tag index: %w", err)
	}

	batch := index.NewBatch()
	for _, t := range tags {
		doc := tagDocument{Name: t.Name, Compact: compact(t.Name)}
		if err := batch.Index(t.ID, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("index tag %s: %w", t.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("commit tag batch: %w", err)
	}

	return &TagIndex{index: index, size: len(tags)}, nil
}

// Close releases the index.
func (ti *TagIndex) Close() error {
	return ti.index.Close()
}

// Similar returns tags whose names resemble name, best first. The tag with
// id excludeID (usually the tag being looked up) is never returned.
func (ti *TagIndex) Similar(ctx context.Context, name, excludeID string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := buildSimilarQuery(name)
	if q == nil {
		return []Match{}, nil
	}

	req := bleve.NewSearchRequestOptions(q, limit+1, 0, false)
	req.Fields = []string{"name"}

	res, err := ti.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	matches := make([]Match, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if hit.ID == excludeID {
			continue
		}
		n, _ := hit.Fields["name"].(string)
		matches = append(matches, Match{
			Tag:   domain.TagRef{ID: hit.ID, Name: n},
			Score: hit.Score,
		})
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// buildSimilarQuery ORs a stemmed word match, a fuzzy match on the compact
// form, and a compact prefix match. Nil means the name has nothing to match.
func buildSimilarQuery(name string) query.Query {
	c := compact(name)
	if c == "" {
		return nil
	}

	var queries []query.Query

	nameMatch := bleve.NewMatchQuery(name)
	nameMatch.SetField("name")
	nameMatch.SetFuzziness(1)
	nameMatch.SetBoost(2.0)
	queries = append(queries, nameMatch)

	exact := bleve.NewTermQuery(c)
	exact.SetField("compact")
	exact.SetBoost(3.0)
	queries = append(queries, exact)

	if f := fuzziness(c); f > 0 {
		fuzzy := bleve.NewFuzzyQuery(c)
		fuzzy.SetField("compact")
		fuzzy.SetFuzziness(f)
		fuzzy.SetBoost(1.5)
		queries = append(queries, fuzzy)
	}

	if utf8.RuneCountInString(c) >= 3 {
		prefix := bleve.NewPrefixQuery(c)
		prefix.SetField("compact")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}

// compact lower-cases s and keeps only letters and digits, so
// "Adrenal-Gland" and "adrenalgland" index identically.
func compact(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fuzziness scales the allowed edit distance with length. Bleve caps it at 2.
func fuzziness(c string) int {
	switch n := utf8.RuneCountInString(c); {
	case n <= 4:
		return 0
	case n <= 8:
		return 1
	default:
		return 2
	}
}
