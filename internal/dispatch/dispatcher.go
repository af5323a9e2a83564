package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	notificationsmodels "chatnotify/internal/models/notifications"
	sendmodels "chatnotify/internal/models/send_notification"
	"chatnotify/internal/push"
	"chatnotify/internal/store"
)

// TokenStore is the slice of token storage the dispatcher needs.
type TokenStore interface {
	Get(ctx context.Context, userID string) (*notificationsmodels.TokenRecord, error)
	Delete(ctx context.Context, userID string) error
}

// HistoryStore records dispatched notifications and serves history queries.
type HistoryStore interface {
	Append(ctx context.Context, rec notificationsmodels.HistoryRecord) error
	ListByReceiver(ctx context.Context, userID string, limit int) ([]notificationsmodels.HistoryRecord, error)
}

// Result is the outcome of one successful dispatch.
type Result struct {
	MessageID string
}

// Dispatcher relays one chat notification: token lookup, push send, history
// write, in that order. Each dispatch is independent and stateless; exactly
// one send attempt per request, no retries.
type Dispatcher struct {
	tokens  TokenStore
	history HistoryStore
	sender  push.Sender
	logger  *zap.SugaredLogger
}

func NewDispatcher(tokens TokenStore, history HistoryStore, sender push.Sender, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		tokens:  tokens,
		history: history,
		sender:  sender,
		logger:  logger,
	}
}

// Dispatch validates the request, looks up the recipient's token, sends the
// push, and appends a history record. A token the service reports as
// unregistered is deleted best-effort before failing with ErrTokenExpired.
// A history-write failure never turns an already-successful send into an
// error.
func (d *Dispatcher) Dispatch(ctx context.Context, req sendmodels.Request) (*Result, error) {
	if missing := missingFields(req); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	rec, err := d.tokens.Get(ctx, req.ReceiverID)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return nil, ErrRecipientUnknown
		}
		return nil, err
	}
	if rec.FCMToken == "" {
		return nil, ErrTokenUnavailable
	}

	notification := push.Notification{
		Title: req.SenderName,
		Body:  req.Message,
		Data: map[string]string{
			"type":           "chat_message",
			"receiverId":     req.ReceiverID,
			"senderId":       req.SenderID,
			"senderName":     req.SenderName,
			"message":        req.Message,
			"conversationId": req.ConversationID,
		},
	}

	messageID, err := d.sender.Send(ctx, rec.FCMToken, notification)
	if err != nil {
		if errors.Is(err, push.ErrUnregistered) {
			if delErr := d.tokens.Delete(ctx, req.ReceiverID); delErr != nil {
				d.logger.Warnw("failed to delete expired token record",
					"receiver_id", req.ReceiverID,
					"error", delErr,
				)
			}
			return nil, ErrTokenExpired
		}
		return nil, err
	}

	historyRec := notificationsmodels.HistoryRecord{
		ReceiverID:     req.ReceiverID,
		SenderID:       req.SenderID,
		SenderName:     req.SenderName,
		Message:        req.Message,
		ConversationID: req.ConversationID,
	}
	if err := d.history.Append(ctx, historyRec); err != nil {
		// The send already succeeded; history is a best-effort side effect
		d.logger.Warnw("failed to record notification history",
			"receiver_id", req.ReceiverID,
			"message_id", messageID,
			"error", err,
		)
	}

	return &Result{MessageID: messageID}, nil
}

func missingFields(req sendmodels.Request) []string {
	var missing []string
	if req.ReceiverID == "" {
		missing = append(missing, "receiverId")
	}
	if req.SenderID == "" {
		missing = append(missing, "senderId")
	}
	if req.SenderName == "" {
		missing = append(missing, "senderName")
	}
	if req.Message == "" {
		missing = append(missing, "message")
	}
	if req.ConversationID == "" {
		missing = append(missing, "conversationId")
	}
	return missing
}
