package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/khanglvm/orbit/internal/domain"
)

const questionColumns = "id, text, type, options, targets, info_weight, difficulty, locale"

// ListQuestions returns the catalog in insertion order.
func (s *SQLiteStorage) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT "+questionColumns+" FROM questions ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// GetQuestion loads one question by id.
func (s *SQLiteStorage) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return domain.Question{}, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+questionColumns+" FROM questions WHERE id = ?", id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, fmt.Errorf("question %s: %w", id, domain.ErrNotFound)
	}
	return q, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (domain.Question, error) {
	var (
		q                            domain.Question
		options, targets, infoWeight sql.NullString
	)
	if err := row.Scan(&q.ID, &q.Text, &q.Type, &options, &targets, &infoWeight, &q.Difficulty, &q.Locale); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return q, err
		}
		return q, fmt.Errorf("failed to scan question row: %w", err)
	}

	if err := fromJSON(options, &q.Options); err != nil {
		return q, fmt.Errorf("question %s: invalid options: %w", q.ID, err)
	}
	if err := fromJSON(targets, &q.Targets); err != nil {
		return q, fmt.Errorf("question %s: invalid targets: %w", q.ID, err)
	}
	if err := fromJSON(infoWeight, &q.InfoWeight); err != nil {
		return q, fmt.Errorf("question %s: invalid info_weight: %w", q.ID, err)
	}
	return q, nil
}

// InsertQuestion adds q to the catalog unless its id already exists.
// It reports whether a row was written.
func (s *SQLiteStorage) InsertQuestion(ctx context.Context, q domain.Question) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return false, err
	}

	options, err := toJSON(q.Options)
	if err != nil {
		return false, fmt.Errorf("question %s: %w", q.ID, err)
	}
	targets, err := toJSON(q.Targets)
	if err != nil {
		return false, fmt.Errorf("question %s: %w", q.ID, err)
	}
	infoWeight, err := toJSON(q.InfoWeight)
	if err != nil {
		return false, fmt.Errorf("question %s: %w", q.ID, err)
	}

	difficulty := q.Difficulty
	if difficulty == 0 {
		difficulty = 1.0
	}
	locale := q.Locale
	if locale == "" {
		locale = "en"
	}

	now := formatTime(time.Now())
	query := `
		INSERT OR IGNORE INTO questions (id, text, type, options, targets, info_weight, difficulty, locale, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.ExecContext(ctx, query,
		q.ID, q.Text, string(q.Type), options, targets, infoWeight, difficulty, locale, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert question %s: %w", q.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListArchetypes returns every archetype in insertion order.
func (s *SQLiteStorage) ListArchetypes(ctx context.Context) ([]domain.Archetype, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, vector, min_requirements, contraindications, resources
		FROM archetypes
		ORDER BY rowid ASC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query archetypes: %w", err)
	}
	defer rows.Close()

	var archetypes []domain.Archetype
	for rows.Next() {
		var (
			a                         domain.Archetype
			vector                    sql.NullString
			minReq, contra, resources sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &vector, &minReq, &contra, &resources); err != nil {
			return nil, fmt.Errorf("failed to scan archetype row: %w", err)
		}

		if err := fromJSON(vector, &a.Vector); err != nil {
			return nil, fmt.Errorf("archetype %s: invalid vector: %w", a.ID, err)
		}
		if err := fromJSON(minReq, &a.MinRequirements); err != nil {
			return nil, fmt.Errorf("archetype %s: invalid min_requirements: %w", a.ID, err)
		}
		if err := fromJSON(contra, &a.Contraindications); err != nil {
			return nil, fmt.Errorf("archetype %s: invalid contraindications: %w", a.ID, err)
		}
		if err := fromJSON(resources, &a.Resources); err != nil {
			return nil, fmt.Errorf("archetype %s: invalid resources: %w", a.ID, err)
		}

		archetypes = append(archetypes, a)
	}

	return archetypes, rows.Err()
}

// InsertArchetype adds a unless its id already exists. It reports whether
// a row was written.
func (s *SQLiteStorage) InsertArchetype(ctx context.Context, a domain.Archetype) (bool, error) {
	if len(a.Vector) != domain.Dimensions {
		return false, fmt.Errorf("archetype %s: vector has %d dimensions, want %d", a.ID, len(a.Vector), domain.Dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return false, err
	}

	vector, err := toJSON(a.Vector)
	if err != nil {
		return false, fmt.Errorf("archetype %s: %w", a.ID, err)
	}
	minReq, err := toJSON(a.MinRequirements)
	if err != nil {
		return false, fmt.Errorf("archetype %s: %w", a.ID, err)
	}
	contra, err := toJSON(a.Contraindications)
	if err != nil {
		return false, fmt.Errorf("archetype %s: %w", a.ID, err)
	}
	resources, err := toJSON(a.Resources)
	if err != nil {
		return false, fmt.Errorf("archetype %s: %w", a.ID, err)
	}

	now := formatTime(time.Now())
	query := `
		INSERT OR IGNORE INTO archetypes (id, name, vector, min_requirements, contraindications, resources, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.ExecContext(ctx, query, a.ID, a.Name, vector, minReq, contra, resources, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert archetype %s: %w", a.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
