package interview

import (
	"context"

	"github.com/khanglvm/orbit/internal/domain"
)

// Store is the persistence collaborator. Missing records are reported with
// an error wrapping domain.ErrNotFound.
type Store interface {
	// CreateUser registers an anonymous session owner and returns its id.
	CreateUser(ctx context.Context) (string, error)

	// CreateSession persists a new session.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession loads a session by id.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// SaveProgress writes the session's mutable fields and, when resp is
	// non-nil, appends the response, atomically.
	SaveProgress(ctx context.Context, s domain.Session, resp *domain.Response) error

	// ListQuestions returns the full catalog.
	ListQuestions(ctx context.Context) ([]domain.Question, error)

	// ListResponses returns a session's responses in submission order.
	ListResponses(ctx context.Context, sessionID string) ([]domain.Response, error)

	// ListArchetypes returns every archetype.
	ListArchetypes(ctx context.Context) ([]domain.Archetype, error)

	// GetMatchReport loads the report for a session.
	GetMatchReport(ctx context.Context, sessionID string) (domain.MatchReport, error)

	// CreateMatchReport stores r unless the session already has a report,
	// and returns whichever report is stored.
	CreateMatchReport(ctx context.Context, r domain.MatchReport) (domain.MatchReport, error)
}
