package models

import "time"

// TokenRecord is the stored mapping from a user id to their FCM delivery token.
// Documents live in the fcm_tokens collection, keyed by user id. An absent
// document or an empty FCMToken both mean the user is unreachable for push.
type TokenRecord struct {
	FCMToken    string    `json:"fcmToken" firestore:"fcmToken"`
	LastUpdated time.Time `json:"lastUpdated,omitempty" firestore:"lastUpdated,omitempty"`
}
