package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"github.com/khanglvm/orbit/internal/domain"
	"github.com/khanglvm/orbit/internal/matching"
)

// highDimension is the archetype value above which a dimension label is
// indexed as a keyword for that archetype.
const highDimension = 0.7

// Indexer manages the search index for catalog entries.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewIndexer creates a new search indexer with in-memory Bleve index.
func NewIndexer(logger *zap.Logger) (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Indexer{
		bleveIndex: index,
		logger:     logger,
	}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Title and body: searchable text
	docMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("body", bleve.NewTextFieldMapping())

	// Kind: searchable for filtering
	docMapping.AddFieldMappingsAt("kind", bleve.NewTextFieldMapping())

	// Ref and type: stored but not indexed (for retrieval)
	for _, field := range []string{"ref", "type"} {
		fm := bleve.NewTextFieldMapping()
		fm.Index = false
		fm.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, fm)
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// IndexQuestions adds or replaces question documents.
func (i *Indexer) IndexQuestions(questions []domain.Question) error {
	docs := make([]CatalogDocument, 0, len(questions))
	for _, q := range questions {
		docs = append(docs, QuestionDocument(q))
	}
	return i.index(docs)
}

// IndexArchetypes adds or replaces archetype documents.
func (i *Indexer) IndexArchetypes(archetypes []domain.Archetype) error {
	docs := make([]CatalogDocument, 0, len(archetypes))
	for _, a := range archetypes {
		docs = append(docs, ArchetypeDocument(a))
	}
	return i.index(docs)
}

func (i *Indexer) index(docs []CatalogDocument) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for _, d := range docs {
		doc := map[string]interface{}{
			"kind":  string(d.Kind),
			"ref":   d.ID,
			"title": d.Title,
			"body":  d.Body,
			"type":  d.Type,
		}
		if err := batch.Index(d.docID(), doc); err != nil {
			i.logger.Warn("failed to index document", zap.String("doc_id", d.docID()), zap.Error(err))
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index documents: %w", err)
	}

	return nil
}

// QuestionDocument converts a question into its index form.
func QuestionDocument(q domain.Question) CatalogDocument {
	var opts []string
	for _, o := range q.Options {
		opts = append(opts, fmt.Sprint(o))
	}

	var dims []string
	for _, t := range q.Targets {
		if t >= 0 && t < len(matching.DimensionLabels) {
			dims = append(dims, matching.DimensionLabels[t])
		}
	}

	return CatalogDocument{
		Kind:  KindQuestion,
		ID:    q.ID,
		Title: q.Text,
		Body:  strings.Join(append(opts, dims...), " "),
		Type:  string(q.Type),
	}
}

// ArchetypeDocument converts an archetype into its index form. Strong
// dimensions are indexed by label.
func ArchetypeDocument(a domain.Archetype) CatalogDocument {
	var parts []string
	if desc, ok := a.Resources["description"].(string); ok {
		parts = append(parts, desc)
	}
	for idx, v := range a.Vector {
		if v >= highDimension && idx < len(matching.DimensionLabels) {
			parts = append(parts, matching.DimensionLabels[idx])
		}
	}

	return CatalogDocument{
		Kind:  KindArchetype,
		ID:    a.ID,
		Title: a.Name,
		Body:  strings.Join(parts, " "),
	}
}

// Count returns the total number of indexed documents.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}

	return nil
}
