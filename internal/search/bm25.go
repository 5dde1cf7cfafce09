package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

var resultFields = []string{"kind", "ref", "title", "type"}

// Search performs BM25 keyword search. An empty kind searches everything.
func (i *Indexer) Search(text string, kind Kind, limit int) ([]SearchResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	var q query.Query = bleve.NewMatchQuery(text)
	if kind != "" {
		// Create conjunction query: (match query) AND (kind filter)
		kindQuery := bleve.NewTermQuery(string(kind))
		kindQuery.SetField("kind")
		q = bleve.NewConjunctionQuery(q, kindQuery)
	}

	searchRequest := bleve.NewSearchRequestOptions(q, limit, 0, false)
	searchRequest.Fields = resultFields

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return convertBleveResults(results), nil
}

// convertBleveResults converts Bleve search results to our SearchResult format.
func convertBleveResults(results *bleve.SearchResult) []SearchResult {
	searchResults := make([]SearchResult, 0, len(results.Hits))

	for _, hit := range results.Hits {
		kind, _ := hit.Fields["kind"].(string)
		ref, _ := hit.Fields["ref"].(string)
		title, _ := hit.Fields["title"].(string)
		typ, _ := hit.Fields["type"].(string)

		searchResults = append(searchResults, SearchResult{
			Kind:  Kind(kind),
			ID:    ref,
			Title: title,
			Type:  typ,
			Score: hit.Score,
		})
	}

	return searchResults
}
