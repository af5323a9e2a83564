package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	notificationsmodels "chatnotify/internal/models/notifications"
)

const historyCollection = "notifications"

// HistoryStore appends to and queries the append-only notifications
// collection.
type HistoryStore struct {
	fs *firestore.Client
}

func NewHistoryStore(fs *firestore.Client) *HistoryStore {
	return &HistoryStore{fs: fs}
}

// Append writes one history record. The record's zero Timestamp is replaced
// by the server timestamp at write time.
func (s *HistoryStore) Append(ctx context.Context, rec notificationsmodels.HistoryRecord) error {
	if _, _, err := s.fs.Collection(historyCollection).Add(ctx, rec); err != nil {
		return fmt.Errorf("failed to write notification history: %w", err)
	}
	return nil
}

// ListByReceiver returns up to limit records addressed to userID, newest
// first.
func (s *HistoryStore) ListByReceiver(ctx context.Context, userID string, limit int) ([]notificationsmodels.HistoryRecord, error) {
	iter := s.fs.Collection(historyCollection).
		Where("receiverId", "==", userID).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var records []notificationsmodels.HistoryRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list notification history: %w", err)
		}

		var rec notificationsmodels.HistoryRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}
