/*
Package matching ranks archetypes against a user preference vector.

The engine is stateless: the same inputs always produce the same ranked,
explained list. Persisting and caching the result belongs to the caller.
*/
package matching

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/khanglvm/orbit/internal/domain"
	"github.com/khanglvm/orbit/internal/vecmath"
)

const (
	// DefaultClosenessThreshold is the largest absolute difference a
	// dimension may have and still be cited in an explanation.
	DefaultClosenessThreshold = 0.2

	// explainCandidates is how many best-aligned dimensions are considered.
	explainCandidates = 3
)

// ErrNoArchetypes is returned when there is nothing to rank against.
var ErrNoArchetypes = errors.New("no archetypes available")

// DimensionLabels names each preference dimension, in index order.
var DimensionLabels = [domain.Dimensions]string{
	"social preference",
	"physical intensity",
	"creative drive",
	"structure preference",
	"cost sensitivity",
	"schedule regularity",
	"learning style",
	"novelty appetite",
	"motivation type",
	"access constraints",
}

// Match is the fit of a single archetype.
type Match struct {
	ArchetypeID string
	Name        string
	FitScore    float64
	Explanation string
}

// Engine computes fit scores and explanations.
type Engine struct {
	// Threshold overrides DefaultClosenessThreshold when positive.
	Threshold float64
}

// NewEngine creates an engine with the default closeness threshold.
func NewEngine() *Engine {
	return &Engine{Threshold: DefaultClosenessThreshold}
}

func (e *Engine) threshold() float64 {
	if e == nil || e.Threshold <= 0 {
		return DefaultClosenessThreshold
	}
	return e.Threshold
}

// RankMatches scores every archetype by cosine similarity with user and
// returns them best first. Equal scores keep the input order.
func (e *Engine) RankMatches(user []float64, archetypes []domain.Archetype) ([]Match, error) {
	if len(archetypes) == 0 {
		return nil, ErrNoArchetypes
	}

	matches := make([]Match, 0, len(archetypes))
	for _, a := range archetypes {
		score, err := vecmath.CosineSimilarity(user, a.Vector)
		if err != nil {
			return nil, fmt.Errorf("archetype %s: %w", a.ID, err)
		}

		explanation, err := e.Explain(a, user)
		if err != nil {
			return nil, fmt.Errorf("archetype %s: %w", a.ID, err)
		}

		matches = append(matches, Match{
			ArchetypeID: a.ID,
			Name:        a.Name,
			FitScore:    score,
			Explanation: explanation,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].FitScore > matches[j].FitScore
	})

	return matches, nil
}

// Explain cites the best-aligned dimensions between user and archetype.
//
// The three dimensions with the smallest absolute difference are taken and
// those under the closeness threshold are rendered with the archetype's
// value. When none qualify a generic sentence naming the archetype is used.
func (e *Engine) Explain(a domain.Archetype, user []float64) (string, error) {
	diffs, err := vecmath.AbsDiff(user, a.Vector)
	if err != nil {
		return "", err
	}

	threshold := e.threshold()
	order := vecmath.ArgsortAscending(diffs)
	if len(order) > explainCandidates {
		order = order[:explainCandidates]
	}

	var parts []string
	for _, idx := range order {
		if diffs[idx] >= threshold {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%.1f)", label(idx), a.Vector[idx]))
	}

	if len(parts) == 0 {
		return "Matches your preferences for " + strings.ToLower(a.Name), nil
	}
	return "Matches " + strings.Join(parts, ", "), nil
}

func label(idx int) string {
	if idx >= 0 && idx < len(DimensionLabels) {
		return DimensionLabels[idx]
	}
	return fmt.Sprintf("dimension %d", idx)
}

// Top converts the first n matches into ranked recommendations.
func Top(matches []Match, n int) []domain.Recommendation {
	if n > len(matches) || n <= 0 {
		n = len(matches)
	}

	recs := make([]domain.Recommendation, 0, n)
	for i, m := range matches[:n] {
		recs = append(recs, domain.Recommendation{
			Rank:        i + 1,
			ArchetypeID: m.ArchetypeID,
			Name:        m.Name,
			FitScore:    m.FitScore,
			Explanation: m.Explanation,
		})
	}
	return recs
}
