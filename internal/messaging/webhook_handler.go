package messaging

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/frahmantamala/attendance-management/internal/transport"
)

// InboundEvent is one message event from the webhook payload.
type InboundEvent struct {
	UserID     string
	Text       string
	ReplyToken string
}

// Dispatcher decides how to answer one inbound message. ok=false means
// stay silent.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *InboundEvent) (reply string, ok bool)
}

// HolidayRefresher lets the webhook trigger an opportunistic holiday sync.
type HolidayRefresher interface {
	MaybeRefresh(ctx context.Context)
}

// WebhookHandler receives chat platform events. Nothing in here is fatal:
// a bad signature is rejected, everything else is processed best-effort and
// acked with 200 so the platform does not retry storms at us.
type WebhookHandler struct {
	*transport.BaseHandler
	channelSecret string
	dispatcher    Dispatcher
	messenger     Messenger
	refresher     HolidayRefresher
	logger        *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, channelSecret string, dispatcher Dispatcher, messenger Messenger, refresher HolidayRefresher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:   baseHandler,
		channelSecret: channelSecret,
		dispatcher:    dispatcher,
		messenger:     messenger,
		refresher:     refresher,
		logger:        logger,
	}
}

type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	if !h.verifySignature(body, r.Header.Get("X-Signature")) {
		h.logger.Warn("webhook signature mismatch")
		h.WriteError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Error("invalid webhook payload", "error", err)
		h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	h.refresher.MaybeRefresh(r.Context())

	var wg sync.WaitGroup
	for _, ev := range req.Events {
		if ev.Type != "message" || ev.Message.Type != "text" || ev.Source.UserID == "" {
			continue
		}
		event := &InboundEvent{
			UserID:     ev.Source.UserID,
			Text:       ev.Message.Text,
			ReplyToken: ev.ReplyToken,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.processEvent(r.Context(), event)
		}()
	}
	wg.Wait()

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WebhookHandler) processEvent(ctx context.Context, event *InboundEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic while processing webhook event", "panic", rec, "user_id", event.UserID)
		}
	}()

	reply, ok := h.dispatcher.Dispatch(ctx, event)
	if !ok || reply == "" || event.ReplyToken == "" {
		return
	}

	if err := h.messenger.Reply(ctx, event.ReplyToken, reply); err != nil {
		h.logger.Error("failed to send reply", "error", err, "user_id", event.UserID)
	}
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.channelSecret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(h.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
