package models

import "time"

// HistoryRecord is one dispatched notification, appended to the notifications
// collection after a successful send. Timestamp is assigned by the store at
// write time; the zero value is replaced by the server timestamp.
type HistoryRecord struct {
	ReceiverID     string    `json:"receiverId" firestore:"receiverId"`
	SenderID       string    `json:"senderId" firestore:"senderId"`
	SenderName     string    `json:"senderName" firestore:"senderName"`
	Message        string    `json:"message" firestore:"message"`
	ConversationID string    `json:"conversationId" firestore:"conversationId"`
	Timestamp      time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
}
