package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

// KeyPrefix is the prefix for current-wallet keys
const KeyPrefix = "wallet:current:"

// SelectionStore is a Redis-backed store of each user's current wallet
type SelectionStore struct {
	client *redis.Client
	logger *logger.Logger
}

// NewSelectionStore creates a new selection store
func NewSelectionStore(client *redis.Client, log *logger.Logger) *SelectionStore {
	return &SelectionStore{
		client: client,
		logger: log.WithField("component", "selection"),
	}
}

func selectionKey(userID uuid.UUID) string {
	return KeyPrefix + userID.String()
}

// Get returns the user's current wallet ID
func (s *SelectionStore) Get(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := s.client.Get(ctx, selectionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		s.logger.Error("selection error", "operation", "get", "user_id", userID, "error", err)
		return uuid.Nil, false, fmt.Errorf("failed to get current wallet: %w", err)
	}

	walletID, err := uuid.Parse(val)
	if err != nil {
		// Unreadable entries are treated as no selection
		s.logger.Warn("discarding malformed selection", "user_id", userID, "value", val)
		return uuid.Nil, false, nil
	}

	return walletID, true, nil
}

// Set stores the user's current wallet ID without expiry
func (s *SelectionStore) Set(ctx context.Context, userID, walletID uuid.UUID) error {
	if err := s.client.Set(ctx, selectionKey(userID), walletID.String(), 0).Err(); err != nil {
		s.logger.Error("selection error", "operation", "set", "user_id", userID, "error", err)
		return fmt.Errorf("failed to set current wallet: %w", err)
	}
	return nil
}

// Clear removes the user's current wallet
func (s *SelectionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, selectionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear current wallet: %w", err)
	}
	return nil
}
