package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/walletkeeper/internal/platform/wallet"
	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

const (
	// DefaultTTL is the default TTL for cached wallet records
	DefaultTTL = 5 * time.Minute

	// RecordKeyPrefix is the prefix for wallet record keys
	RecordKeyPrefix = "wallet:record:"
)

// Cache is a Redis-backed cache of wallet records
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewCache creates a new wallet cache
func NewCache(client *redis.Client, log *logger.Logger) *Cache {
	return NewCacheWithTTL(client, DefaultTTL, log)
}

// NewCacheWithTTL creates a new wallet cache with custom TTL
func NewCacheWithTTL(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "cache"),
	}
}

// cachedWallet is the stored form; it keeps the hash that Wallet hides from JSON
type cachedWallet struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func recordKey(id uuid.UUID) string {
	return RecordKeyPrefix + id.String()
}

// Get retrieves a cached wallet
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*wallet.Wallet, bool, error) {
	val, err := c.client.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "wallet_id", id)
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "wallet_id", id, "error", err)
		return nil, false, fmt.Errorf("failed to get cached wallet: %w", err)
	}

	var cached cachedWallet
	if err := json.Unmarshal(val, &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached wallet: %w", err)
	}

	c.logger.Debug("cache hit", "wallet_id", id)
	return &wallet.Wallet{
		ID:           cached.ID,
		UserID:       cached.UserID,
		Name:         cached.Name,
		PasswordHash: cached.PasswordHash,
		CreatedAt:    cached.CreatedAt,
		UpdatedAt:    cached.UpdatedAt,
	}, true, nil
}

// Set stores a wallet with the cache TTL
func (c *Cache) Set(ctx context.Context, w *wallet.Wallet) error {
	data, err := json.Marshal(cachedWallet{
		ID:           w.ID,
		UserID:       w.UserID,
		Name:         w.Name,
		PasswordHash: w.PasswordHash,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}

	if err := c.client.Set(ctx, recordKey(w.ID), data, c.ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "wallet_id", w.ID, "error", err)
		return fmt.Errorf("failed to set cached wallet: %w", err)
	}

	return nil
}

// Delete removes a cached wallet
func (c *Cache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, recordKey(id)).Err()
}

// CachedRepository serves GetByID from the cache and falls back to the
// wrapped repository. Cache failures never fail a lookup.
type CachedRepository struct {
	wallet.Repository
	cache  *Cache
	logger *logger.Logger
}

// NewCachedRepository wraps repo with a read-through wallet cache
func NewCachedRepository(repo wallet.Repository, cache *Cache) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		cache:      cache,
		logger:     cache.logger,
	}
}

// GetByID returns the wallet from cache, loading and caching it on a miss
func (r *CachedRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	if w, ok, err := r.cache.Get(ctx, id); err == nil && ok {
		return w, nil
	}

	w, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, w); err != nil {
		r.logger.Warn("failed to cache wallet", "wallet_id", id, "error", err)
	}
	return w, nil
}

// Delete removes the wallet and evicts it from the cache
func (r *CachedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, id); err != nil {
		r.logger.Warn("failed to evict cached wallet", "wallet_id", id, "error", err)
	}
	return nil
}
