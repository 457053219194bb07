package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for tag documents.
//
//	name     English analyzer, so "Glands" and "gland" share a term
//	compact  the whole name lower-cased with separators removed, kept as a
//	         single keyword term for fuzzy and prefix matching
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	compactFieldMapping := bleve.NewTextFieldMapping()
	compactFieldMapping.Analyzer = keyword.Name
	compactFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("compact", compactFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}
