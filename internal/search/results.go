/*
Package search implements full-text lookup over the question catalog and
the archetype set.

This package keeps an in-memory Bleve index so operators can find questions
and archetypes by wording rather than by id.
*/
package search

// Kind is the type of catalog entry a document represents.
type Kind string

const (
	KindQuestion  Kind = "question"
	KindArchetype Kind = "archetype"
)

// SearchResult represents a single search hit with its relevance score.
type SearchResult struct {
	Kind  Kind    `json:"kind"`
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Type  string  `json:"type,omitempty"`
	Score float64 `json:"score"`
}

// CatalogDocument is an entry as stored in the search index.
type CatalogDocument struct {
	Kind  Kind
	ID    string
	Title string
	Body  string
	Type  string
}

// docID namespaces ids so a question and an archetype may share one.
func (d CatalogDocument) docID() string {
	return string(d.Kind) + "/" + d.ID
}
