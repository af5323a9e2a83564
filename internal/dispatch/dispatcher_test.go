package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	notificationsmodels "chatnotify/internal/models/notifications"
	sendmodels "chatnotify/internal/models/send_notification"
	"chatnotify/internal/push"
	"chatnotify/internal/store"
)

type fakeTokenStore struct {
	records   map[string]*notificationsmodels.TokenRecord
	getCalls  int
	deleted   []string
	deleteErr error
}

func (f *fakeTokenStore) Get(ctx context.Context, userID string) (*notificationsmodels.TokenRecord, error) {
	f.getCalls++
	rec, ok := f.records[userID]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	return rec, nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, userID)
	return nil
}

type fakeHistoryStore struct {
	appended  []notificationsmodels.HistoryRecord
	appendErr error
	lastLimit int
	listErr   error
}

func (f *fakeHistoryStore) Append(ctx context.Context, rec notificationsmodels.HistoryRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rec)
	return nil
}

func (f *fakeHistoryStore) ListByReceiver(ctx context.Context, userID string, limit int) ([]notificationsmodels.HistoryRecord, error) {
	f.lastLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []notificationsmodels.HistoryRecord
	for _, rec := range f.appended {
		if rec.ReceiverID == userID {
			out = append(out, rec)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeSender struct {
	calls     int
	lastToken string
	lastNote  push.Notification
	sendErr   error
	messageID string
}

func (f *fakeSender) Send(ctx context.Context, token string, n push.Notification) (string, error) {
	f.calls++
	f.lastToken = token
	f.lastNote = n
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.messageID, nil
}

func validRequest() sendmodels.Request {
	return sendmodels.Request{
		ReceiverID:     "u1",
		SenderID:       "u2",
		SenderName:     "Bob",
		Message:        "hi",
		ConversationID: "c1",
	}
}

func newTestDispatcher(tokens *fakeTokenStore, history *fakeHistoryStore, sender *fakeSender) *Dispatcher {
	return NewDispatcher(tokens, history, sender, zap.NewNop().Sugar())
}

func TestDispatchSuccess(t *testing.T) {
	tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{
		"u1": {FCMToken: "tok_abc"},
	}}
	history := &fakeHistoryStore{}
	sender := &fakeSender{messageID: "msg_123"}
	d := newTestDispatcher(tokens, history, sender)

	result, err := d.Dispatch(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if result.MessageID != "msg_123" {
		t.Fatalf("expected message id msg_123, got %q", result.MessageID)
	}
	if sender.lastToken != "tok_abc" {
		t.Fatalf("expected send to tok_abc, got %q", sender.lastToken)
	}
	if len(history.appended) != 1 {
		t.Fatalf("expected exactly one history record, got %d", len(history.appended))
	}
	rec := history.appended[0]
	if rec.ReceiverID != "u1" || rec.SenderID != "u2" || rec.SenderName != "Bob" || rec.Message != "hi" || rec.ConversationID != "c1" {
		t.Fatalf("history record does not match request: %+v", rec)
	}
}

func TestDispatchPayload(t *testing.T) {
	tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{
		"u1": {FCMToken: "tok_abc"},
	}}
	sender := &fakeSender{messageID: "msg_1"}
	d := newTestDispatcher(tokens, &fakeHistoryStore{}, sender)

	if _, err := d.Dispatch(context.Background(), validRequest()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	n := sender.lastNote
	if n.Title != "Bob" || n.Body != "hi" {
		t.Fatalf("unexpected display notification: %+v", n)
	}
	want := map[string]string{
		"type":           "chat_message",
		"receiverId":     "u1",
		"senderId":       "u2",
		"senderName":     "Bob",
		"message":        "hi",
		"conversationId": "c1",
	}
	for k, v := range want {
		if n.Data[k] != v {
			t.Fatalf("data[%s] = %q, want %q", k, n.Data[k], v)
		}
	}
}

func TestDispatchMissingFields(t *testing.T) {
	base := validRequest()
	cases := map[string]func(*sendmodels.Request){
		"receiverId":     func(r *sendmodels.Request) { r.ReceiverID = "" },
		"senderId":       func(r *sendmodels.Request) { r.SenderID = "" },
		"senderName":     func(r *sendmodels.Request) { r.SenderName = "" },
		"message":        func(r *sendmodels.Request) { r.Message = "" },
		"conversationId": func(r *sendmodels.Request) { r.ConversationID = "" },
	}

	for field, clear := range cases {
		t.Run(field, func(t *testing.T) {
			tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{}}
			history := &fakeHistoryStore{}
			sender := &fakeSender{messageID: "msg_1"}
			d := newTestDispatcher(tokens, history, sender)

			req := base
			clear(&req)
			_, err := d.Dispatch(context.Background(), req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if tokens.getCalls != 0 || sender.calls != 0 || len(history.appended) != 0 {
				t.Fatal("invalid request must not touch stores or messaging")
			}
		})
	}
}

func TestDispatchRecipientUnknown(t *testing.T) {
	tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{}}
	sender := &fakeSender{messageID: "msg_1"}
	d := newTestDispatcher(tokens, &fakeHistoryStore{}, sender)

	_, err := d.Dispatch(context.Background(), validRequest())
	if !errors.Is(err, ErrRecipientUnknown) {
		t.Fatalf("expected ErrRecipientUnknown, got %v", err)
	}
	if sender.calls != 0 {
		t.Fatal("messaging service must not be called for unknown recipients")
	}
}

func TestDispatchEmptyToken(t *testing.T) {
	tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{
		"u1": {FCMToken: ""},
	}}
	sender := &fakeSender{messageID: "msg_1"}
	d := newTestDispatcher(tokens, &fakeHistoryStore{}, sender)

	_, err := d.Dispatch(context.Background(), validRequest())
	if !errors.Is(err, ErrTokenUnavailable) {
		t.Fatalf("expected ErrTokenUnavailable, got %v", err)
	}
	if sender.calls != 0 {
		t.Fatal("messaging service must not be called for empty tokens")
	}
}

func TestDispatchUnregisteredToken(t *testing.T) {
	tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{
		"u1": {FCMToken: "tok_stale"},
	}}
	history := &fakeHistoryStore{}
	sender := &fakeSender{sendErr: fmt.Errorf("%w: requested entity was not found", push.ErrUnregistered)}
	d := newTestDispatcher(tokens, history, sender)

	_, err := d.Dispatch(context.Background(), validRequest())
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if len(tokens.deleted) != 1 || tokens.deleted[0] != "u1" {
		t.Fatalf("expected stale token record for u1 to be deleted, got %v", tokens.deleted)
	}
	if _, err := tokens.Get(context.Background(), "u1"); !errors.Is(err, store.ErrTokenNotFound) {
		t.Fatalf("expected subsequent lookup to return not found, got %v", err)
	}
	if len(history.appended) != 0 {
		t.Fatal("failed dispatch must not write history")
	}
}

func TestDispatchUnregisteredTokenDeleteFailure(t *testing.T) {
	tokens := &fakeTokenStore{
		records:   map[string]*notificationsmodels.TokenRecord{"u1": {FCMToken: "tok_stale"}},
		deleteErr: errors.New("firestore unavailable"),
	}
	sender := &fakeSender{sendErr: push.ErrUnregistered}
	d := newTestDispatcher(tokens, &fakeHistoryStore{}, sender)

	// Cleanup failure is logged but never overrides the primary error
	_, err := d.Dispatch(context.Background(), validRequest())
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired despite delete failure, got %v", err)
	}
}

func TestDispatchSendFailure(t *testing.T) {
	tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{
		"u1": {FCMToken: "tok_abc"},
	}}
	history := &fakeHistoryStore{}
	sender := &fakeSender{sendErr: errors.New("fcm quota exceeded")}
	d := newTestDispatcher(tokens, history, sender)

	_, err := d.Dispatch(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error from failed send")
	}
	if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrRecipientUnknown) {
		t.Fatalf("generic send failure misclassified: %v", err)
	}
	if len(tokens.deleted) != 0 {
		t.Fatal("generic send failure must not delete the token record")
	}
	if len(history.appended) != 0 {
		t.Fatal("failed dispatch must not write history")
	}
}

func TestDispatchHistoryWriteFailure(t *testing.T) {
	tokens := &fakeTokenStore{records: map[string]*notificationsmodels.TokenRecord{
		"u1": {FCMToken: "tok_abc"},
	}}
	history := &fakeHistoryStore{appendErr: errors.New("firestore unavailable")}
	sender := &fakeSender{messageID: "msg_123"}
	d := newTestDispatcher(tokens, history, sender)

	// Delivery already succeeded; the best-effort history write must not
	// turn the result into an error
	result, err := d.Dispatch(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("history failure must not fail the dispatch: %v", err)
	}
	if result.MessageID != "msg_123" {
		t.Fatalf("expected message id msg_123, got %q", result.MessageID)
	}
}
