package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for contact documents.
//
// Every text field uses the keyword analyzer: documents are stored with
// pre-lowercased values, and substring matching is done with regexp
// queries over the whole field value. Tokenizing analyzers would split
// emails and company names at punctuation and break substring semantics.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Owner - exact match filter on every query
	ownerFieldMapping := bleve.NewTextFieldMapping()
	ownerFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("owner_id", ownerFieldMapping)

	// Name - substring search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = keyword.Name
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Email - substring search target
	emailFieldMapping := bleve.NewTextFieldMapping()
	emailFieldMapping.Analyzer = keyword.Name
	emailFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("email", emailFieldMapping)

	// Company - substring search target
	companyFieldMapping := bleve.NewTextFieldMapping()
	companyFieldMapping.Analyzer = keyword.Name
	companyFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("company", companyFieldMapping)

	// Creation time - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
