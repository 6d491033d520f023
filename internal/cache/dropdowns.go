package cache

import (
	"context"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/config"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dropdownKeyPrefix = "report:dropdowns:"

// DropdownCache keeps filter options keyed by the procedure that produced
// them.
type DropdownCache interface {
	GetDropdowns(ctx context.Context, procedure string) (*domain.Dropdowns, bool, error)
	SetDropdowns(ctx context.Context, procedure string, dropdowns *domain.Dropdowns) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisDropdownCache struct {
	store *redisStore
}

type noopDropdownCache struct{}

// NewDropdownCache returns a redis backed cache, or a no-op cache when
// caching is disabled.
func NewDropdownCache(cfg config.CacheConfig) (DropdownCache, error) {
	if !cfg.Enabled {
		return &noopDropdownCache{}, nil
	}

	client, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}
	return newRedisDropdownCache(client, time.Duration(cfg.DropdownTTLSeconds)*time.Second), nil
}

func newRedisDropdownCache(client *redis.Client, ttl time.Duration) *redisDropdownCache {
	return &redisDropdownCache{store: newRedisStore(client, ttl)}
}

func NewNoopDropdownCache() DropdownCache {
	return &noopDropdownCache{}
}

func (c *redisDropdownCache) GetDropdowns(ctx context.Context, procedure string) (*domain.Dropdowns, bool, error) {
	var dropdowns domain.Dropdowns
	ok, err := c.store.load(ctx, dropdownKey(procedure), &dropdowns)
	if err != nil || !ok {
		return nil, false, err
	}
	return &dropdowns, true, nil
}

func (c *redisDropdownCache) SetDropdowns(ctx context.Context, procedure string, dropdowns *domain.Dropdowns) error {
	return c.store.save(ctx, dropdownKey(procedure), dropdowns)
}

// InvalidateAll drops the options of every procedure.
func (c *redisDropdownCache) InvalidateAll(ctx context.Context) error {
	removed, err := c.store.purge(ctx, dropdownKeyPrefix)
	if err != nil {
		return err
	}
	log.Debug().Int("keys", removed).Msg("dropdown cache cleared")
	return nil
}

func (c *redisDropdownCache) Close() error {
	return c.store.close()
}

func (n *noopDropdownCache) GetDropdowns(context.Context, string) (*domain.Dropdowns, bool, error) {
	return nil, false, nil
}

func (n *noopDropdownCache) SetDropdowns(context.Context, string, *domain.Dropdowns) error {
	return nil
}

func (n *noopDropdownCache) InvalidateAll(context.Context) error { return nil }

func (n *noopDropdownCache) Close() error { return nil }

func dropdownKey(procedure string) string {
	procedure = strings.ToLower(strings.TrimSpace(procedure))
	if procedure == "" {
		procedure = "default"
	}
	return dropdownKeyPrefix + procedure
}
