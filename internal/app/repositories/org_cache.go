package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models"
)

const orgCacheKeyPrefix = "rollcall:org:"

// CacheClient is the subset of the redis client the org cache needs
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedOrganizationStore reads organizations through redis. Organizations
// never change after registration, so entries are only ever added.
type CachedOrganizationStore struct {
	OrganizationStore
	client CacheClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedOrganizationStore wraps next with a redis read-through cache
func NewCachedOrganizationStore(next OrganizationStore, client CacheClient, ttl time.Duration, logger zerolog.Logger) *CachedOrganizationStore {
	return &CachedOrganizationStore{OrganizationStore: next, client: client, ttl: ttl, logger: logger}
}

// FindByCode serves from the cache when possible. Cache failures fall back to the store.
func (c *CachedOrganizationStore) FindByCode(ctx context.Context, orgCode string) (*models.Organization, error) {
	key := orgCacheKeyPrefix + orgCode

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var org models.Organization
		if jsonErr := json.Unmarshal(raw, &org); jsonErr == nil {
			return &org, nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable cached organization")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Msg("Organization cache read failed")
	}

	org, err := c.OrganizationStore.FindByCode(ctx, orgCode)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(org); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("Organization cache write failed")
		}
	}
	return org, nil
}
