package push

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// ErrUnregistered means the delivery token is permanently invalid and should
// be discarded. Callers distinguish it from generic send failures with
// errors.Is.
var ErrUnregistered = errors.New("push token is unregistered")

// Notification is the payload for one chat push: a display notification plus
// a data map delivered to the client app.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Sender submits one push notification and returns the opaque message id
// assigned by the delivery service.
type Sender interface {
	Send(ctx context.Context, token string, n Notification) (string, error)
}

// FCMSender sends through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

// Send builds the FCM message and submits it. The Android channel and APNS
// sound/badge hints are fixed constants for chat messages, not derived from
// input. Unregistered-token failures are translated to ErrUnregistered.
func (s *FCMSender) Send(ctx context.Context, token string, n Notification) (string, error) {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				ChannelID: "chat_messages",
				Sound:     "default",
				Priority:  messaging.PriorityHigh,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: intPtr(1),
				},
			},
		},
	}

	id, err := s.client.Send(ctx, message)
	if err != nil {
		if messaging.IsUnregistered(err) {
			return "", fmt.Errorf("%w: %v", ErrUnregistered, err)
		}
		return "", fmt.Errorf("error sending message: %w", err)
	}
	return id, nil
}

func intPtr(i int) *int {
	return &i
}
