package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	notificationsmodels "chatnotify/internal/models/notifications"
)

// ErrTokenNotFound means no token record exists for the user.
var ErrTokenNotFound = errors.New("token record not found")

const (
	tokensCollection = "fcm_tokens"
	tokenCacheTTL    = 24 * time.Hour
)

// TokenStore reads and deletes token records in the fcm_tokens collection.
// When a redis client is provided, found non-empty records are cached for
// quick access; the cache never holds absent or empty tokens, so a cache hit
// can never mask an unknown recipient.
type TokenStore struct {
	fs          *firestore.Client
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewTokenStore creates a token store. redisClient may be nil to run without
// the cache.
func NewTokenStore(fs *firestore.Client, redisClient *redis.Client, logger *zap.SugaredLogger) *TokenStore {
	return &TokenStore{
		fs:          fs,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Get returns the token record for userID, checking the cache first.
// Returns ErrTokenNotFound when no record exists.
func (s *TokenStore) Get(ctx context.Context, userID string) (*notificationsmodels.TokenRecord, error) {
	if s.redisClient != nil {
		cached := s.redisClient.Get(ctx, tokenCacheKey(userID))
		if cached.Err() == nil {
			var rec notificationsmodels.TokenRecord
			if err := json.Unmarshal([]byte(cached.Val()), &rec); err == nil {
				return &rec, nil
			}
		}
	}

	snap, err := s.fs.Collection(tokensCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token record: %w", err)
	}

	var rec notificationsmodels.TokenRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode token record: %w", err)
	}

	if s.redisClient != nil && rec.FCMToken != "" {
		tokenJSON, _ := json.Marshal(rec)
		if err := s.redisClient.Set(ctx, tokenCacheKey(userID), tokenJSON, tokenCacheTTL).Err(); err != nil {
			s.logger.Warnw("failed to cache token record", "user_id", userID, "error", err)
		}
	}

	return &rec, nil
}

// Delete removes the token record and invalidates the cache entry. Firestore
// deletes are idempotent; deleting an absent document is not an error.
func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.fs.Collection(tokensCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete token record: %w", err)
	}

	if s.redisClient != nil {
		if err := s.redisClient.Del(ctx, tokenCacheKey(userID)).Err(); err != nil {
			s.logger.Warnw("failed to invalidate cached token record", "user_id", userID, "error", err)
		}
	}

	return nil
}

func tokenCacheKey(userID string) string {
	return fmt.Sprintf("push_token:%s", userID)
}
