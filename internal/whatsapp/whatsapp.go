// Package whatsapp handles the WhatsApp Cloud API surface: decoding
// inbound webhook payloads and sending outbound text messages.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/satkam/partsbot/internal/log"
)

// ErrNoTextMessage indicates the webhook payload carried no inbound text
// message (status callbacks, media, reactions). Such payloads are
// acknowledged and ignored.
var ErrNoTextMessage = errors.New("no text message in payload")

// Inbound is one decoded inbound text message.
type Inbound struct {
	From string
	Text string
}

// webhookPayload mirrors the Cloud API webhook envelope, decoded only as
// deep as we consume it.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseInbound extracts the first inbound text message from a webhook
// payload. Returns ErrNoTextMessage for payloads without one.
func ParseInbound(body []byte) (*Inbound, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				return &Inbound{From: msg.From, Text: msg.Text.Body}, nil
			}
		}
	}
	return nil, ErrNoTextMessage
}

// Sender posts outbound text messages to the Cloud API.
type Sender struct {
	apiURL string
	token  string
	client *http.Client
	logger log.Logger
}

// NewSender creates a sender. apiURL is the full messages endpoint for
// the business phone number.
func NewSender(apiURL, token string, logger log.Logger) *Sender {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Sender{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type outboundText struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText delivers one text message to the given phone number.
func (s *Sender) SendText(ctx context.Context, to, text string) error {
	msg := outboundText{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = text

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("send failed with status %d: %s", resp.StatusCode, detail)
	}

	s.logger.Debug("sent message", "to", to, "bytes", len(text))
	return nil
}
