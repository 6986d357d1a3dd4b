package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const sessionColumns = `id, phone_number, customer_id, conversation_state, context,
	is_active, started_at, last_activity, ended_at`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.Phone, &sess.CustomerID, &sess.State, &sess.Context,
		&sess.Active, &sess.StartedAt, &sess.LastActivity, &sess.EndedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetActiveSession returns the most recent active session for a phone
// number, or ErrNotFound.
func (s *Store) GetActiveSession(ctx context.Context, phone string) (*Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM chatbot_sessions
		 WHERE phone_number = $1 AND is_active
		 ORDER BY started_at DESC LIMIT 1`, phone)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get active session for %s: %w", phone, wrapNotFound(err))
	}
	return sess, nil
}

// CreateSession inserts a new active session with the given initial state
// and empty context.
func (s *Store) CreateSession(ctx context.Context, phone string, customerID *uuid.UUID, state string) (*Session, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO chatbot_sessions (phone_number, customer_id, conversation_state, context, is_active)
		 VALUES ($1, $2, $3, '{}'::jsonb, TRUE)
		 RETURNING `+sessionColumns,
		phone, customerID, state)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", phone, err)
	}
	s.logger.Debug("created session", "id", sess.ID, "phone", phone)
	return sess, nil
}

// UpdateSessionContext overwrites the session's context blob and bumps
// last_activity. Last write wins; there is no version check.
func (s *Store) UpdateSessionContext(ctx context.Context, id uuid.UUID, context []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chatbot_sessions SET context = $2, last_activity = now() WHERE id = $1`,
		id, context)
	if err != nil {
		return fmt.Errorf("update session context %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CloseSession deactivates a session and stamps its end time.
func (s *Store) CloseSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chatbot_sessions SET is_active = FALSE, ended_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("close session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug("closed session", "id", id)
	return nil
}
