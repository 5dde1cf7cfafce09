package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khanglvm/orbit/internal/domain"
)

// CreateUser inserts an anonymous user and returns its id.
func (s *SQLiteStorage) CreateUser(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := "INSERT INTO users (id, created_at) VALUES (?, ?)"
	if _, err := db.ExecContext(ctx, query, id, formatTime(time.Now())); err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

// CreateSession inserts a new session.
func (s *SQLiteStorage) CreateSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	answered, err := json.Marshal(nonNil(session.AnsweredIDs))
	if err != nil {
		return fmt.Errorf("failed to encode answered ids: %w", err)
	}

	query := `
		INSERT INTO sessions (id, user_id, answered_qids, status, completion_reason, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		session.ID,
		nullString(session.UserID),
		string(answered),
		string(session.Status),
		nullString(string(session.Reason)),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
		formatNullTime(session.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession loads a session by id.
func (s *SQLiteStorage) GetSession(ctx context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return domain.Session{}, err
	}

	query := `
		SELECT id, user_id, answered_qids, status, completion_reason, created_at, updated_at, completed_at
		FROM sessions
		WHERE id = ?
	`

	var (
		session                  domain.Session
		userID, reason, complete sql.NullString
		answered                 string
		created, updated         string
	)
	err = db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&userID,
		&answered,
		&session.Status,
		&reason,
		&created,
		&updated,
		&complete,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	session.UserID = userID.String
	session.Reason = domain.CompletionReason(reason.String)
	if err := json.Unmarshal([]byte(answered), &session.AnsweredIDs); err != nil {
		return domain.Session{}, fmt.Errorf("failed to decode answered ids: %w", err)
	}
	if session.CreatedAt, err = parseTime(created); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if session.CompletedAt, err = parseNullTime(complete); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse completed_at: %w", err)
	}

	return session, nil
}

// SaveProgress updates a session and optionally appends a response in one
// transaction.
func (s *SQLiteStorage) SaveProgress(ctx context.Context, session domain.Session, resp *domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if resp != nil {
		payload, err := encodePayload(resp.Answer)
		if err != nil {
			return fmt.Errorf("failed to encode answer: %w", err)
		}

		var latency sql.NullInt64
		if resp.LatencyMS != nil {
			latency = sql.NullInt64{Int64: *resp.LatencyMS, Valid: true}
		}

		query := `
			INSERT INTO responses (id, session_id, question_id, payload, latency_ms, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query,
			resp.ID,
			resp.SessionID,
			resp.QuestionID,
			payload,
			latency,
			formatTime(resp.Timestamp),
		); err != nil {
			return fmt.Errorf("failed to insert response: %w", err)
		}
	}

	answered, err := json.Marshal(nonNil(session.AnsweredIDs))
	if err != nil {
		return fmt.Errorf("failed to encode answered ids: %w", err)
	}

	query := `
		UPDATE sessions
		SET answered_qids = ?, status = ?, completion_reason = ?, updated_at = ?, completed_at = ?
		WHERE id = ?
	`
	res, err := tx.ExecContext(ctx, query,
		string(answered),
		string(session.Status),
		nullString(string(session.Reason)),
		formatTime(session.UpdatedAt),
		formatNullTime(session.CompletedAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress: %w", err)
	}
	return nil
}

// ListResponses returns a session's responses oldest first.
func (s *SQLiteStorage) ListResponses(ctx context.Context, sessionID string) ([]domain.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, session_id, question_id, payload, latency_ms, timestamp
		FROM responses
		WHERE session_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`
	rows, err := db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var responses []domain.Response
	for rows.Next() {
		var (
			r         domain.Response
			payload   string
			latency   sql.NullInt64
			timestamp string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.QuestionID, &payload, &latency, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan response row: %w", err)
		}

		if r.Answer, err = decodePayload(payload); err != nil {
			return nil, fmt.Errorf("response %s: %w", r.ID, err)
		}
		if latency.Valid {
			v := latency.Int64
			r.LatencyMS = &v
		}
		if r.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, fmt.Errorf("response %s: failed to parse timestamp: %w", r.ID, err)
		}

		responses = append(responses, r)
	}

	return responses, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
