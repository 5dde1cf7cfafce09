// Package seed loads the question catalog and archetype set into storage.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/khanglvm/orbit/internal/domain"
)

//go:embed data/questions.json data/archetypes.json
var defaults embed.FS

// Catalog is the write side of storage used for seeding.
type Catalog interface {
	InsertQuestion(ctx context.Context, q domain.Question) (bool, error)
	InsertArchetype(ctx context.Context, a domain.Archetype) (bool, error)
}

// Result counts what a seeding run wrote. Entries whose id already exists
// are left untouched and counted as skipped.
type Result struct {
	QuestionsInserted  int `json:"questions_inserted"`
	QuestionsSkipped   int `json:"questions_skipped"`
	ArchetypesInserted int `json:"archetypes_inserted"`
	ArchetypesSkipped  int `json:"archetypes_skipped"`
}

// LoadQuestions decodes and validates a JSON array of questions.
func LoadQuestions(r io.Reader) ([]domain.Question, error) {
	var qs []domain.Question
	if err := json.NewDecoder(r).Decode(&qs); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	seen := make(map[string]bool, len(qs))
	for i, q := range qs {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: missing id", i)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		}
		seen[q.ID] = true
		if q.Text == "" {
			return nil, fmt.Errorf("question %s: missing text", q.ID)
		}
		if !q.Type.Valid() {
			return nil, fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
		}
		for _, t := range q.Targets {
			if t < 0 || t >= domain.Dimensions {
				return nil, fmt.Errorf("question %s: target %d out of range", q.ID, t)
			}
		}
	}
	return qs, nil
}

// LoadArchetypes decodes and validates a JSON array of archetypes.
func LoadArchetypes(r io.Reader) ([]domain.Archetype, error) {
	var as []domain.Archetype
	if err := json.NewDecoder(r).Decode(&as); err != nil {
		return nil, fmt.Errorf("failed to decode archetypes: %w", err)
	}

	seen := make(map[string]bool, len(as))
	for i, a := range as {
		if a.ID == "" {
			return nil, fmt.Errorf("archetype %d: missing id", i)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("archetype %s: duplicate id", a.ID)
		}
		seen[a.ID] = true
		if a.Name == "" {
			return nil, fmt.Errorf("archetype %s: missing name", a.ID)
		}
		if len(a.Vector) != domain.Dimensions {
			return nil, fmt.Errorf("archetype %s: vector has %d dimensions, want %d", a.ID, len(a.Vector), domain.Dimensions)
		}
	}
	return as, nil
}

// Defaults returns the built-in question catalog and archetype set.
func Defaults() ([]domain.Question, []domain.Archetype, error) {
	qf, err := defaults.Open("data/questions.json")
	if err != nil {
		return nil, nil, err
	}
	defer qf.Close()

	qs, err := LoadQuestions(qf)
	if err != nil {
		return nil, nil, err
	}

	af, err := defaults.Open("data/archetypes.json")
	if err != nil {
		return nil, nil, err
	}
	defer af.Close()

	as, err := LoadArchetypes(af)
	if err != nil {
		return nil, nil, err
	}

	return qs, as, nil
}

// Run inserts questions and archetypes that are not yet present.
func Run(ctx context.Context, c Catalog, qs []domain.Question, as []domain.Archetype, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var res Result
	for _, q := range qs {
		inserted, err := c.InsertQuestion(ctx, q)
		if err != nil {
			return res, err
		}
		if inserted {
			res.QuestionsInserted++
		} else {
			res.QuestionsSkipped++
		}
	}

	for _, a := range as {
		inserted, err := c.InsertArchetype(ctx, a)
		if err != nil {
			return res, err
		}
		if inserted {
			res.ArchetypesInserted++
		} else {
			res.ArchetypesSkipped++
		}
	}

	logger.Info("seeded catalog",
		zap.Int("questions_inserted", res.QuestionsInserted),
		zap.Int("questions_skipped", res.QuestionsSkipped),
		zap.Int("archetypes_inserted", res.ArchetypesInserted),
		zap.Int("archetypes_skipped", res.ArchetypesSkipped),
	)
	return res, nil
}
