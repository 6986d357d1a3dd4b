package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/satkam/partsbot/internal/llm"
	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/prompt"
	"github.com/satkam/partsbot/internal/session"
	"github.com/satkam/partsbot/internal/settings"
	"github.com/satkam/partsbot/internal/store"
	"github.com/satkam/partsbot/internal/tools"
)

// scriptedCompleter replays canned responses and records every request.
type scriptedCompleter struct {
	responses []*llm.Response
	err       error

	requests []llm.Request
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.requests) - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

// fakeQuerier backs the session store in memory.
type fakeQuerier struct {
	customer *store.Customer
	messages []store.Message
	context  []byte
}

func (f *fakeQuerier) GetCustomerByPhone(_ context.Context, _ string) (*store.Customer, error) {
	if f.customer == nil {
		return nil, store.ErrNotFound
	}
	return f.customer, nil
}

func (f *fakeQuerier) GetActiveSession(_ context.Context, _ string) (*store.Session, error) {
	return nil, store.ErrNotFound
}

func (f *fakeQuerier) CreateSession(_ context.Context, phone string, customerID *uuid.UUID, state string) (*store.Session, error) {
	return &store.Session{ID: uuid.New(), Phone: phone, CustomerID: customerID, State: state, Active: true}, nil
}

func (f *fakeQuerier) UpdateSessionContext(_ context.Context, _ uuid.UUID, blob []byte) error {
	f.context = blob
	return nil
}

func (f *fakeQuerier) RecentMessages(_ context.Context, _ uuid.UUID, _ int) ([]store.Message, error) {
	return nil, nil
}

func (f *fakeQuerier) InsertMessage(_ context.Context, m *store.Message) error {
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeQuerier) CloseSession(_ context.Context, _ uuid.UUID) error { return nil }

type fakeProducts struct {
	byCode  map[string]*store.Product
	results []store.Product
}

func (f *fakeProducts) SearchProducts(_ context.Context, _ store.ProductFilter) ([]store.Product, error) {
	return f.results, nil
}

func (f *fakeProducts) GetProductByCode(_ context.Context, code string) (*store.Product, error) {
	if p, ok := f.byCode[code]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

type fakeWorkshops struct{}

func (fakeWorkshops) SearchWorkshops(_ context.Context, _ store.WorkshopFilter) ([]store.Workshop, error) {
	return nil, nil
}

type fakeOrders struct{ created []store.NewOrder }

func (f *fakeOrders) CreateOrder(_ context.Context, in store.NewOrder) (*store.Order, error) {
	f.created = append(f.created, in)
	return &store.Order{Number: in.Number, CustomerCode: in.CustomerCode, Total: in.Total,
		Status: in.Status, OrderDate: time.Now(), Lines: in.Lines}, nil
}

func (f *fakeOrders) GetOrderByNumber(_ context.Context, _ string) (*store.Order, error) {
	return nil, store.ErrNotFound
}

func (f *fakeOrders) RecentOrders(_ context.Context, _ string, _ int) ([]store.Order, error) {
	return nil, nil
}

type noSettings struct{}

func (noSettings) ListSettings(context.Context) ([]store.Setting, error) { return nil, nil }

func newEngine(t *testing.T, comp llm.Completer, q *fakeQuerier, p *fakeProducts, o *fakeOrders) *Engine {
	t.Helper()
	cache := settings.New(noSettings{}, time.Minute, log.NewNop())
	sessions := session.New(q, log.NewNop())
	registry := tools.NewRegistry(p, fakeWorkshops{}, o, cache, log.NewNop())
	prompts := prompt.NewBuilder(cache)

	e, err := New(comp, sessions, registry, prompts, cache,
		Config{Model: "claude-sonnet-4-20250514", MaxTokens: 1024, MaxRounds: 3}, log.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func textResponse(text string) *llm.Response {
	return &llm.Response{
		StopReason: llm.StopEndTurn,
		Content:    []llm.ContentBlock{{Type: llm.BlockText, Text: text}},
	}
}

func toolResponse(id, name, input string) *llm.Response {
	return &llm.Response{
		StopReason: llm.StopToolUse,
		Content: []llm.ContentBlock{
			{Type: llm.BlockText, Text: "Let me check."},
			{Type: llm.BlockToolUse, ID: id, Name: name, Input: json.RawMessage(input)},
		},
	}
}

func TestHandleMessagePlainReply(t *testing.T) {
	t.Parallel()

	comp := &scriptedCompleter{responses: []*llm.Response{textResponse("Namaste! How can I help?")}}
	q := &fakeQuerier{}
	e := newEngine(t, comp, q, &fakeProducts{}, &fakeOrders{})

	reply, err := e.HandleMessage(context.Background(), "9779851000000", "hello")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "Namaste! How can I help?" {
		t.Errorf("reply = %q", reply)
	}

	if len(comp.requests) != 1 {
		t.Fatalf("made %d completion calls, want 1", len(comp.requests))
	}
	req := comp.requests[0]
	if len(req.Tools) != 7 {
		t.Errorf("request carried %d tools, want 7", len(req.Tools))
	}
	if req.System == "" {
		t.Error("request must carry a system prompt")
	}

	// Both turns logged: user then assistant.
	if len(q.messages) != 2 || q.messages[0].Role != store.RoleUser || q.messages[1].Role != store.RoleAssistant {
		t.Errorf("logged messages = %+v, want user then assistant", q.messages)
	}
	if q.context == nil {
		t.Error("session context must be persisted after the turn")
	}
}

func TestHandleMessageToolRound(t *testing.T) {
	t.Parallel()

	comp := &scriptedCompleter{responses: []*llm.Response{
		toolResponse("tu_1", tools.NameSearchProducts, `{"keyword":"brake"}`),
		textResponse("I found one brake pad for Toyota."),
	}}
	p := &fakeProducts{results: []store.Product{{Code: "BP-TOY-001", Name: "Brake Pad", UnitPrice: 50}}}
	e := newEngine(t, comp, &fakeQuerier{}, p, &fakeOrders{})

	reply, err := e.HandleMessage(context.Background(), "977", "brake pads for Toyota?")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "I found one brake pad for Toyota." {
		t.Errorf("reply = %q", reply)
	}
	if len(comp.requests) != 2 {
		t.Fatalf("made %d completion calls, want 2", len(comp.requests))
	}

	// Second request: user text, assistant tool_use turn, tool_result turn.
	second := comp.requests[1]
	if len(second.Messages) != 3 {
		t.Fatalf("second request has %d messages, want 3", len(second.Messages))
	}
	last := second.Messages[2]
	if last.Role != llm.RoleUser || len(last.Content) != 1 {
		t.Fatalf("tool results turn = %+v", last)
	}
	block := last.Content[0]
	if block.Type != llm.BlockToolResult || block.ToolUseID != "tu_1" {
		t.Errorf("tool_result block = %+v, want tool_use_id tu_1", block)
	}
	if !strings.Contains(block.Content, "BP-TOY-001") {
		t.Errorf("tool result payload missing product: %s", block.Content)
	}
}

func TestHandleMessageRoundCapFallback(t *testing.T) {
	t.Parallel()

	// The model never stops asking for tools.
	comp := &scriptedCompleter{responses: []*llm.Response{
		toolResponse("tu_x", tools.NameViewCart, `{}`),
	}}
	q := &fakeQuerier{}
	e := newEngine(t, comp, q, &fakeProducts{}, &fakeOrders{})

	reply, err := e.HandleMessage(context.Background(), "977", "hi")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != settings.DefaultFallbackMessage {
		t.Errorf("reply = %q, want the fallback message", reply)
	}
	if len(comp.requests) != 3 {
		t.Errorf("made %d completion calls, want the 3-round cap", len(comp.requests))
	}
	if q.context == nil {
		t.Error("context must be persisted even when the turn degrades")
	}
}

func TestHandleMessageCompletionErrorFallback(t *testing.T) {
	t.Parallel()

	comp := &scriptedCompleter{err: errors.New("api down")}
	q := &fakeQuerier{}
	e := newEngine(t, comp, q, &fakeProducts{}, &fakeOrders{})

	reply, err := e.HandleMessage(context.Background(), "977", "hi")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != settings.DefaultFallbackMessage {
		t.Errorf("reply = %q, want the fallback message", reply)
	}
	// The failed reply is still logged so history stays coherent.
	if len(q.messages) != 2 {
		t.Errorf("logged %d messages, want 2", len(q.messages))
	}
}

func TestHandleMessageUnregisteredCheckout(t *testing.T) {
	t.Parallel()

	// Unregistered caller tries to order: search, add, place. The order
	// must be refused with the registration message while the cart keeps
	// its item.
	comp := &scriptedCompleter{responses: []*llm.Response{
		toolResponse("tu_1", tools.NameAddToCart, `{"product_code":"BP-TOY-001","quantity":2}`),
		toolResponse("tu_2", tools.NamePlaceOrder, `{}`),
		textResponse("You need to register before ordering. Your cart is saved."),
	}}
	p := &fakeProducts{byCode: map[string]*store.Product{
		"BP-TOY-001": {Code: "BP-TOY-001", Name: "Brake Pad", UnitPrice: 50},
	}}
	o := &fakeOrders{}
	q := &fakeQuerier{} // no customer for this phone
	e := newEngine(t, comp, q, p, o)

	reply, err := e.HandleMessage(context.Background(), "9779800000000", "2 brake pads for my Corolla, deliver today")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply, "register") {
		t.Errorf("reply = %q, want a registration pointer", reply)
	}
	if len(o.created) != 0 {
		t.Error("unregistered caller must not create orders")
	}

	// The place_order tool_result carried the registration message.
	third := comp.requests[2]
	last := third.Messages[len(third.Messages)-1]
	if !strings.Contains(last.Content[0].Content, settings.DefaultRegistrationMessage) {
		t.Errorf("place_order result = %s, want the registration message", last.Content[0].Content)
	}

	// Cart persisted with the pending item for after registration.
	var ctxBlob struct {
		Cart []struct {
			ProductCode string `json:"product_code"`
			Quantity    int    `json:"quantity"`
		} `json:"cart"`
	}
	if err := json.Unmarshal(q.context, &ctxBlob); err != nil {
		t.Fatalf("persisted context is not valid JSON: %v", err)
	}
	if len(ctxBlob.Cart) != 1 || ctxBlob.Cart[0].Quantity != 2 {
		t.Errorf("persisted cart = %+v, want the 2 brake pads", ctxBlob.Cart)
	}
}
