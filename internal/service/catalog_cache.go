package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/healthhive/healthhive/internal/domain"
)

// CachedCatalogConfig configures the two-tier reference-catalog cache.
type CachedCatalogConfig struct {
	// Redis client for the distributed tier; nil disables it.
	RedisClient *redis.Client
	// TTL for Redis entries.
	RedisTTL time.Duration
	// Maximum panels held in the in-memory LRU tier.
	MemorySize int
}

// CachedCatalog layers an in-memory LRU (tier 1) and optional Redis (tier 2)
// over a backing ReferenceCatalog, with a circuit breaker guarding the
// backing store. The catalog is read-only configuration that changes rarely,
// so caching whole panels at a time keeps analysis runs off the database.
//
// A breaker-open or backing failure on a cache miss propagates as a hard
// error: the engine must never run against a partially loaded catalog.
type CachedCatalog struct {
	backing domain.ReferenceCatalog
	memory  *lru.Cache[domain.Panel, []domain.ReferenceDefinition]
	redis   *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	log     *logrus.Logger
}

// NewCachedCatalog wraps the backing catalog with caching.
func NewCachedCatalog(backing domain.ReferenceCatalog, config CachedCatalogConfig, logger *logrus.Logger) (*CachedCatalog, error) {
	if config.MemorySize <= 0 {
		config.MemorySize = 16
	}
	if config.RedisTTL <= 0 {
		config.RedisTTL = 24 * time.Hour
	}

	memory, err := lru.New[domain.Panel, []domain.ReferenceDefinition](config.MemorySize)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "reference-catalog",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Catalog circuit breaker state changed")
		},
	})

	return &CachedCatalog{
		backing: backing,
		memory:  memory,
		redis:   config.RedisClient,
		breaker: breaker,
		ttl:     config.RedisTTL,
		log:     logger,
	}, nil
}

// GetReferencesByPanel returns the panel's definitions, consulting memory,
// then Redis, then the backing store.
func (c *CachedCatalog) GetReferencesByPanel(ctx context.Context, panel domain.Panel) ([]domain.ReferenceDefinition, error) {
	if refs, ok := c.memory.Get(panel); ok {
		return refs, nil
	}

	if refs, ok := c.getFromRedis(ctx, panel); ok {
		c.memory.Add(panel, refs)
		return refs, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.backing.GetReferencesByPanel(ctx, panel)
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s references from backing catalog: %w", panel, err)
	}

	refs := result.([]domain.ReferenceDefinition)
	c.memory.Add(panel, refs)
	c.putToRedis(ctx, panel, refs)
	return refs, nil
}

// GetReferenceByCode searches the cached panels for a single test code.
func (c *CachedCatalog) GetReferenceByCode(ctx context.Context, testCode string) (*domain.ReferenceDefinition, error) {
	for _, panel := range domain.Panels {
		refs, err := c.GetReferencesByPanel(ctx, panel)
		if err != nil {
			return nil, err
		}
		for i := range refs {
			if refs[i].TestCode == testCode {
				return &refs[i], nil
			}
		}
	}
	return nil, fmt.Errorf("reference %s: %w", testCode, domain.ErrNotFound)
}

// Invalidate drops cached entries for the panel in both tiers. Call after a
// clinical configuration change.
func (c *CachedCatalog) Invalidate(ctx context.Context, panel domain.Panel) {
	c.memory.Remove(panel)
	if c.redis != nil {
		if err := c.redis.Del(ctx, redisKey(panel)).Err(); err != nil {
			c.log.WithError(err).WithField("panel", panel).Warn("Failed to invalidate Redis catalog entry")
		}
	}
}

func (c *CachedCatalog) getFromRedis(ctx context.Context, panel domain.Panel) ([]domain.ReferenceDefinition, bool) {
	if c.redis == nil {
		return nil, false
	}

	payload, err := c.redis.Get(ctx, redisKey(panel)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).WithField("panel", panel).Warn("Redis catalog read failed, falling through")
		}
		return nil, false
	}

	var refs []domain.ReferenceDefinition
	if err := json.Unmarshal(payload, &refs); err != nil {
		c.log.WithError(err).WithField("panel", panel).Warn("Corrupt Redis catalog entry, falling through")
		return nil, false
	}
	return refs, true
}

func (c *CachedCatalog) putToRedis(ctx context.Context, panel domain.Panel, refs []domain.ReferenceDefinition) {
	if c.redis == nil {
		return
	}

	payload, err := json.Marshal(refs)
	if err != nil {
		c.log.WithError(err).WithField("panel", panel).Warn("Failed to marshal catalog entry for Redis")
		return
	}
	if err := c.redis.Set(ctx, redisKey(panel), payload, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("panel", panel).Warn("Redis catalog write failed")
	}
}

func redisKey(panel domain.Panel) string {
	return "catalog:refs:" + panel.String()
}
