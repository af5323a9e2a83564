package models

// Request is the body of POST /send-notification. All five fields are
// required; validation happens in the dispatcher so the error taxonomy
// stays in one place.
type Request struct {
	ReceiverID     string `json:"receiverId"`
	SenderID       string `json:"senderId"`
	SenderName     string `json:"senderName"`
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}
