package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khanglvm/orbit/internal/domain"
)

// GetMatchReport loads the report stored for a session.
func (s *SQLiteStorage) GetMatchReport(ctx context.Context, sessionID string) (domain.MatchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return domain.MatchReport{}, err
	}
	return getMatchReport(ctx, db, sessionID)
}

// CreateMatchReport stores r if the session has no report yet and returns
// the report that ends up stored.
func (s *SQLiteStorage) CreateMatchReport(ctx context.Context, r domain.MatchReport) (domain.MatchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return domain.MatchReport{}, err
	}

	recs, err := json.Marshal(r.Recommendations)
	if err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to encode recommendations: %w", err)
	}

	query := `
		INSERT INTO match_reports (id, session_id, recommendations, confidence, average_uncertainty, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO NOTHING
	`
	if _, err := db.ExecContext(ctx, query,
		r.ID,
		r.SessionID,
		string(recs),
		nullFloat(r.Confidence),
		nullFloat(r.AverageUncertainty),
		formatTime(r.CreatedAt),
	); err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to insert match report: %w", err)
	}

	return getMatchReport(ctx, db, r.SessionID)
}

func getMatchReport(ctx context.Context, db *sql.DB, sessionID string) (domain.MatchReport, error) {
	query := `
		SELECT id, session_id, recommendations, confidence, average_uncertainty, created_at
		FROM match_reports
		WHERE session_id = ?
	`

	var (
		r                 domain.MatchReport
		recs, created     string
		conf, uncertainty sql.NullFloat64
	)
	err := db.QueryRowContext(ctx, query, sessionID).Scan(&r.ID, &r.SessionID, &recs, &conf, &uncertainty, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MatchReport{}, fmt.Errorf("match report for session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to query match report: %w", err)
	}

	if err := json.Unmarshal([]byte(recs), &r.Recommendations); err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	if conf.Valid {
		v := conf.Float64
		r.Confidence = &v
	}
	if uncertainty.Valid {
		v := uncertainty.Float64
		r.AverageUncertainty = &v
	}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return domain.MatchReport{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return r, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
