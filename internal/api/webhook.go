package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/settings"
	"github.com/satkam/partsbot/internal/whatsapp"
)

// maxWebhookBody caps inbound webhook payloads.
const maxWebhookBody = 1 << 20 // 1 MB

// MessageHandler runs one conversation turn for an inbound message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, phone, text string) (string, error)
}

// ReplySender delivers the reply back to the caller.
type ReplySender interface {
	SendText(ctx context.Context, to, text string) error
}

type webhookHandler struct {
	verifyToken string
	engine      MessageHandler
	sender      ReplySender
	settings    *settings.Cache
	logger      log.Logger
}

// verify answers the Cloud API subscription handshake: echo the challenge
// when the mode and token match, 403 otherwise.
func (h *webhookHandler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		h.logger.Warn("webhook verification rejected", "mode", mode, "ip", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "verification_failed", "token mismatch", h.logger)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// receive handles inbound message callbacks. Non-text payloads (status
// callbacks, media) are acknowledged and dropped. The turn runs before
// the acknowledgement; the Cloud API tolerates handler latency and a
// non-200 here would only trigger a redelivery of the same message.
func (h *webhookHandler) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "unreadable body", h.logger)
		return
	}

	in, err := whatsapp.ParseInbound(body)
	switch {
	case errors.Is(err, whatsapp.ErrNoTextMessage):
		w.WriteHeader(http.StatusOK)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "bad_request", "malformed payload", h.logger)
		return
	}

	reply, err := h.engine.HandleMessage(r.Context(), in.From, in.Text)
	if err != nil {
		// The engine degrades internal failures to a fallback reply; an
		// error here means the session itself could not be resolved. The
		// caller still gets the fallback text: every inbound message
		// earns some reply.
		h.logger.Error("message handling failed", "phone", in.From, "error", err)
		reply = h.settings.Get(r.Context()).String(settings.KeyFallbackMessage, settings.DefaultFallbackMessage)
	}

	if err := h.sender.SendText(r.Context(), in.From, reply); err != nil {
		h.logger.Error("reply delivery failed", "phone", in.From, "error", err)
	}
	w.WriteHeader(http.StatusOK)
}
