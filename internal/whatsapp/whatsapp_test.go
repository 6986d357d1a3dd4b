package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/satkam/partsbot/internal/log"
)

func TestParseInboundText(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "9779851000000",
						"type": "text",
						"text": {"body": "do you have brake pads?"}
					}]
				}
			}]
		}]
	}`)

	in, err := ParseInbound(body)
	if err != nil {
		t.Fatalf("ParseInbound() error = %v", err)
	}
	if in.From != "9779851000000" || in.Text != "do you have brake pads?" {
		t.Errorf("parsed = %+v", in)
	}
}

func TestParseInboundIgnoresNonText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"status callback", `{"entry":[{"changes":[{"value":{"statuses":[{"status":"delivered"}]}}]}]}`},
		{"image message", `{"entry":[{"changes":[{"value":{"messages":[{"from":"977","type":"image"}]}}]}]}`},
		{"empty payload", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseInbound([]byte(tt.body))
			if !errors.Is(err, ErrNoTextMessage) {
				t.Errorf("ParseInbound() error = %v, want ErrNoTextMessage", err)
			}
		})
	}
}

func TestParseInboundMalformed(t *testing.T) {
	t.Parallel()

	_, err := ParseInbound([]byte(`{not json`))
	if err == nil || errors.Is(err, ErrNoTextMessage) {
		t.Errorf("ParseInbound() error = %v, want a decode error", err)
	}
}

func TestSendText(t *testing.T) {
	t.Parallel()

	var got struct {
		MessagingProduct string `json:"messaging_product"`
		To               string `json:"to"`
		Type             string `json:"type"`
		Text             struct {
			Body string `json:"body"`
		} `json:"text"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "token-123", log.NewNop())
	if err := s.SendText(context.Background(), "9779851000000", "hello"); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}

	if auth != "Bearer token-123" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.MessagingProduct != "whatsapp" || got.To != "9779851000000" || got.Type != "text" || got.Text.Body != "hello" {
		t.Errorf("sent payload = %+v", got)
	}
}

func TestSendTextFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "bad", log.NewNop())
	err := s.SendText(context.Background(), "977", "hello")
	if err == nil {
		t.Fatal("expected an error for a 401 response")
	}
}
