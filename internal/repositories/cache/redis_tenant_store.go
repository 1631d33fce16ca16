package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

const currentTenantKeyPrefix = "current_tenant:"

// RedisTenantStore keeps each user's selected tenant in Redis with a sliding TTL.
type RedisTenantStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ portsrepo.CurrentTenantStore = (*RedisTenantStore)(nil)

// NewRedisTenantStore connects to url and checks the connection.
func NewRedisTenantStore(ctx context.Context, url string, ttl time.Duration) (*RedisTenantStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisTenantStore{rdb: rdb, ttl: ttl}, nil
}

func currentTenantKey(userID string) string {
	return currentTenantKeyPrefix + userID
}

func (s *RedisTenantStore) GetCurrentTenant(ctx context.Context, userID string) (string, error) {
	key := currentTenantKey(userID)
	tenantID, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to read current tenant: %w", err)
	}
	if s.ttl > 0 {
		// reads keep an active selection alive
		_ = s.rdb.Expire(ctx, key, s.ttl).Err()
	}
	return tenantID, nil
}

func (s *RedisTenantStore) SetCurrentTenant(ctx context.Context, userID, entrepriseID string) error {
	if err := s.rdb.Set(ctx, currentTenantKey(userID), entrepriseID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store current tenant: %w", err)
	}
	return nil
}

func (s *RedisTenantStore) ClearCurrentTenant(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, currentTenantKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear current tenant: %w", err)
	}
	return nil
}

// Ping checks connectivity for the health endpoint.
func (s *RedisTenantStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisTenantStore) Close() error {
	return s.rdb.Close()
}
