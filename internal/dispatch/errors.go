package dispatch

import "errors"

// Dispatch failure taxonomy. The HTTP layer maps these to status codes with
// errors.Is; anything not listed here is an upstream dispatch or store
// failure and surfaces as a 500 with the underlying message.
var (
	// ErrInvalidRequest means one or more required fields were absent or empty.
	ErrInvalidRequest = errors.New("missing required fields")

	// ErrRecipientUnknown means no token record exists for the recipient.
	ErrRecipientUnknown = errors.New("recipient not found or not online")

	// ErrTokenUnavailable means a token record exists but holds no token.
	ErrTokenUnavailable = errors.New("recipient has no push token registered")

	// ErrTokenExpired means the messaging service reported the token as
	// permanently invalid; the recipient must re-register.
	ErrTokenExpired = errors.New("recipient push token has expired")
)
