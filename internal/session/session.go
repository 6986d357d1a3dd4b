// Package session owns per-conversation state: identity resolution,
// active-session lookup and creation, conversation history, and the
// persisted session context.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/satkam/partsbot/internal/cart"
	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/store"
)

// initialState is the conversation state stamped on new sessions.
const initialState = "greeting"

// Context is the typed session context carried across turns.
// Deliberately a closed struct, not an open map, so what is written is
// what is read back.
type Context struct {
	Cart cart.Cart `json:"cart"`
}

// Session is one resolved conversation session. Customer is nil for
// unregistered callers, a first-class state rather than an error.
type Session struct {
	ID       uuid.UUID
	Phone    string
	Customer *store.Customer
	Context  Context
}

// DiscountPct returns the resolved customer discount, 0 for unregistered
// callers.
func (s *Session) DiscountPct() float64 {
	if s.Customer == nil {
		return 0
	}
	return s.Customer.DiscountPct
}

// Querier is the data-store surface the session store consumes.
type Querier interface {
	GetCustomerByPhone(ctx context.Context, phone string) (*store.Customer, error)
	GetActiveSession(ctx context.Context, phone string) (*store.Session, error)
	CreateSession(ctx context.Context, phone string, customerID *uuid.UUID, state string) (*store.Session, error)
	UpdateSessionContext(ctx context.Context, id uuid.UUID, context []byte) error
	RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]store.Message, error)
	InsertMessage(ctx context.Context, m *store.Message) error
	CloseSession(ctx context.Context, id uuid.UUID) error
}

// Store resolves and persists conversation sessions.
// Safe for concurrent use across distinct phone numbers. Two concurrent
// turns for the same session race on the context blob with last-write-wins,
// an accepted limitation of the persistence model.
type Store struct {
	q      Querier
	logger log.Logger
}

// New creates a session store.
func New(q Querier, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{q: q, logger: logger}
}

// ResolveOrCreate looks up the customer linked to the phone number and the
// most recent active session, creating a fresh session (empty context,
// greeting state) when none is active. An unknown phone number yields an
// unregistered session, never an error.
func (s *Store) ResolveOrCreate(ctx context.Context, phone string) (*Session, error) {
	customer, err := s.q.GetCustomerByPhone(ctx, phone)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("resolving customer: %w", err)
	}

	row, err := s.q.GetActiveSession(ctx, phone)
	switch {
	case err == nil:
		sess := &Session{ID: row.ID, Phone: phone, Customer: customer}
		if err := sess.Context.decode(row.Context); err != nil {
			// A malformed blob degrades to an empty context rather than
			// killing the conversation.
			s.logger.Warn("malformed session context, resetting",
				"session_id", row.ID, "error", err)
		}
		return sess, nil

	case errors.Is(err, store.ErrNotFound):
		var customerID *uuid.UUID
		if customer != nil {
			customerID = &customer.ID
		}
		row, err := s.q.CreateSession(ctx, phone, customerID, initialState)
		if err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		s.logger.Debug("created session", "id", row.ID, "phone", phone, "registered", customer != nil)
		return &Session{ID: row.ID, Phone: phone, Customer: customer}, nil

	default:
		return nil, fmt.Errorf("looking up active session: %w", err)
	}
}

// History returns the session's most recent logged messages, oldest
// first, capped at limit. Used only for prompt construction.
func (s *Store) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]store.Message, error) {
	msgs, err := s.q.RecentMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	return msgs, nil
}

// Append logs one conversation message. Best-effort: failures are
// reported and swallowed; logging must never break the conversation.
func (s *Store) Append(ctx context.Context, sess *Session, role, text string) {
	var customerID *uuid.UUID
	if sess.Customer != nil {
		customerID = &sess.Customer.ID
	}
	err := s.q.InsertMessage(ctx, &store.Message{
		SessionID:  sess.ID,
		Phone:      sess.Phone,
		CustomerID: customerID,
		Role:       role,
		Text:       text,
	})
	if err != nil {
		s.logger.Warn("failed to log conversation message",
			"session_id", sess.ID, "role", role, "error", err)
	}
}

// PersistContext overwrites the session's context blob and bumps
// last-activity. Last write wins; no optimistic concurrency check.
func (s *Store) PersistContext(ctx context.Context, sess *Session) error {
	blob, err := json.Marshal(sess.Context)
	if err != nil {
		return fmt.Errorf("encoding session context: %w", err)
	}
	if err := s.q.UpdateSessionContext(ctx, sess.ID, blob); err != nil {
		return fmt.Errorf("persisting session context: %w", err)
	}
	return nil
}

// Close deactivates a session. Not invoked by the orchestration loop;
// exposed for administrative use.
func (s *Store) Close(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.q.CloseSession(ctx, sessionID); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}

// decode fills the context from a raw blob. Empty or null blobs yield an
// empty context.
func (c *Context) decode(blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	if err := json.Unmarshal(blob, c); err != nil {
		*c = Context{}
		return err
	}
	return nil
}
