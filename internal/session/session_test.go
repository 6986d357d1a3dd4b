package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/satkam/partsbot/internal/cart"
	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/store"
)

type fakeQuerier struct {
	customer *store.Customer
	active   *store.Session
	err      error

	created      *store.Session
	createdState string
	updatedBlob  []byte
	inserted     []*store.Message
	insertErr    error
	closed       []uuid.UUID
}

func (f *fakeQuerier) GetCustomerByPhone(_ context.Context, _ string) (*store.Customer, error) {
	if f.customer == nil {
		return nil, store.ErrNotFound
	}
	return f.customer, nil
}

func (f *fakeQuerier) GetActiveSession(_ context.Context, _ string) (*store.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.active == nil {
		return nil, store.ErrNotFound
	}
	return f.active, nil
}

func (f *fakeQuerier) CreateSession(_ context.Context, phone string, customerID *uuid.UUID, state string) (*store.Session, error) {
	f.created = &store.Session{ID: uuid.New(), Phone: phone, CustomerID: customerID, State: state, Active: true}
	f.createdState = state
	return f.created, nil
}

func (f *fakeQuerier) UpdateSessionContext(_ context.Context, _ uuid.UUID, blob []byte) error {
	f.updatedBlob = blob
	return nil
}

func (f *fakeQuerier) RecentMessages(_ context.Context, _ uuid.UUID, _ int) ([]store.Message, error) {
	return nil, nil
}

func (f *fakeQuerier) InsertMessage(_ context.Context, m *store.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, m)
	return nil
}

func (f *fakeQuerier) CloseSession(_ context.Context, id uuid.UUID) error {
	f.closed = append(f.closed, id)
	return nil
}

func TestResolveOrCreateNewSession(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	s := New(q, log.NewNop())

	sess, err := s.ResolveOrCreate(context.Background(), "9779851000000")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if sess.Customer != nil {
		t.Error("expected unregistered session")
	}
	if q.created == nil {
		t.Fatal("expected a session to be created")
	}
	if q.createdState != "greeting" {
		t.Errorf("created state = %q, want %q", q.createdState, "greeting")
	}
	if len(sess.Context.Cart) != 0 {
		t.Errorf("new session cart has %d items, want 0", len(sess.Context.Cart))
	}
}

func TestResolveOrCreateExistingSession(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	cust := &store.Customer{ID: uuid.New(), Code: "CUST-001", DiscountPct: 10}
	q := &fakeQuerier{
		customer: cust,
		active: &store.Session{
			ID:      id,
			Phone:   "9779851000000",
			Context: []byte(`{"cart":[{"product_code":"BP-TOY-001","name":"Brake Pad","unit_price":50,"quantity":2}]}`),
		},
	}
	s := New(q, log.NewNop())

	sess, err := s.ResolveOrCreate(context.Background(), "9779851000000")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if sess.ID != id {
		t.Errorf("session ID = %v, want %v", sess.ID, id)
	}
	if sess.Customer == nil || sess.Customer.Code != "CUST-001" {
		t.Error("expected resolved customer CUST-001")
	}
	if got := sess.DiscountPct(); got != 10 {
		t.Errorf("DiscountPct() = %v, want 10", got)
	}
	if len(sess.Context.Cart) != 1 || sess.Context.Cart[0].Quantity != 2 {
		t.Errorf("restored cart = %+v, want one line of quantity 2", sess.Context.Cart)
	}
	if q.created != nil {
		t.Error("active session exists, none should be created")
	}
}

func TestResolveOrCreateMalformedContext(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{
		active: &store.Session{ID: uuid.New(), Context: []byte(`{not json`)},
	}
	s := New(q, log.NewNop())

	sess, err := s.ResolveOrCreate(context.Background(), "977")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if len(sess.Context.Cart) != 0 {
		t.Error("malformed context should reset to empty")
	}
}

func TestDiscountPctUnregistered(t *testing.T) {
	t.Parallel()

	sess := &Session{}
	if got := sess.DiscountPct(); got != 0 {
		t.Errorf("DiscountPct() = %v, want 0", got)
	}
}

func TestPersistContextRoundTrip(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	s := New(q, log.NewNop())

	sess := &Session{ID: uuid.New()}
	sess.Context.Cart, _ = sess.Context.Cart.Add(cart.Snapshot{
		ProductCode: "OF-HON-001", Name: "Oil Filter", UnitPrice: 12.5,
	}, 3)

	if err := s.PersistContext(context.Background(), sess); err != nil {
		t.Fatalf("PersistContext() error = %v", err)
	}

	var restored Context
	if err := restored.decode(q.updatedBlob); err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if len(restored.Cart) != 1 || restored.Cart[0].Quantity != 3 {
		t.Errorf("restored cart = %+v, want one line of quantity 3", restored.Cart)
	}
}

func TestAppendSwallowsErrors(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{insertErr: errors.New("db down")}
	s := New(q, log.NewNop())

	// Must not panic or surface the error.
	s.Append(context.Background(), &Session{ID: uuid.New(), Phone: "977"}, store.RoleUser, "hello")
}

func TestAppendRecordsCustomer(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	s := New(q, log.NewNop())

	cust := &store.Customer{ID: uuid.New()}
	s.Append(context.Background(), &Session{ID: uuid.New(), Phone: "977", Customer: cust}, store.RoleAssistant, "hi")

	if len(q.inserted) != 1 {
		t.Fatalf("inserted %d messages, want 1", len(q.inserted))
	}
	m := q.inserted[0]
	if m.Role != store.RoleAssistant || m.CustomerID == nil || *m.CustomerID != cust.ID {
		t.Errorf("logged message = %+v, want assistant role with customer ID", m)
	}
}
