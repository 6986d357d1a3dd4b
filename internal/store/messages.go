package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertMessage appends one conversation log row.
func (s *Store) InsertMessage(ctx context.Context, m *Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversation_logs (session_id, phone_number, customer_id, message_type, message_text)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.SessionID, m.Phone, m.CustomerID, m.Role, m.Text)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns the newest messages for a session in
// chronological order (oldest first), capped at limit.
func (s *Store) RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, phone_number, customer_id, message_type, message_text, created_at
		 FROM conversation_logs
		 WHERE session_id = $1
		 ORDER BY created_at DESC LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Phone, &m.CustomerID,
			&m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return oldestFirst(out), nil
}

// oldestFirst reverses a newest-first result set in place into replay
// order. The DESC query keeps the limit on the newest rows; replay wants
// chronological order.
func oldestFirst(msgs []Message) []Message {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}
