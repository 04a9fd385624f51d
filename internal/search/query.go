package search

import (
	"context"
	"fmt"
	"math"
	"regexp"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// FindContactIDs returns the IDs of the owner's contacts whose name, email,
// or company contains the given text, compared case-insensitively.
//
// All matching IDs are returned. Sorting and pagination happen in the
// service layer, where the authoritative store records are available.
func (s *SearchIndex) FindContactIDs(ctx context.Context, ownerID, text string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildContactQuery(ownerID, text)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, math.MaxInt32, 0, false)
	searchRequest.SortBy([]string{"-created_at", "_id"})

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	ids := make([]string, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// buildContactQuery constructs the Bleve query for an owner-scoped
// substring search.
//
// Fields are indexed with the keyword analyzer and pre-lowercased, so a
// regexp query of the form .*<literal>.* gives exact substring semantics.
// The owner term is ANDed with the text disjunction so results can never
// cross owners.
func buildContactQuery(ownerID, text string) query.Query {
	ownerQuery := bleve.NewTermQuery(ownerID)
	ownerQuery.SetField("owner_id")

	needle := normalizeText(text)
	if needle == "" {
		return ownerQuery
	}

	pattern := ".*" + regexp.QuoteMeta(needle) + ".*"

	var textQueries []query.Query
	for _, field := range []string{"name", "email", "company"} {
		rq := bleve.NewRegexpQuery(pattern)
		rq.SetField(field)
		textQueries = append(textQueries, rq)
	}

	return bleve.NewConjunctionQuery(
		ownerQuery,
		bleve.NewDisjunctionQuery(textQueries...),
	)
}
