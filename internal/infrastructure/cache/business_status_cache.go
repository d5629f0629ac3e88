package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/salon-crm/backend/internal/domain/platform"
	"golang.org/x/sync/singleflight"
)

// StatusLoader reads the current status of a business from the main store.
type StatusLoader func(ctx context.Context, businessID string) (platform.BusinessStatus, error)

// BusinessStatusCache is an in-process TTL cache of business statuses,
// consulted on every tenant request.
type BusinessStatusCache struct {
	c     *ristretto.Cache[string, platform.BusinessStatus]
	ttl   time.Duration
	group singleflight.Group
}

// NewBusinessStatusCache creates a cache holding up to maxEntries statuses
// for ttl each.
func NewBusinessStatusCache(maxEntries int64, ttl time.Duration) (*BusinessStatusCache, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, platform.BusinessStatus]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create status cache: %w", err)
	}
	return &BusinessStatusCache{c: c, ttl: ttl}, nil
}

// Get returns the cached status of businessID, loading it on a miss.
// Concurrent misses for one business share a single load.
func (s *BusinessStatusCache) Get(ctx context.Context, businessID string, load StatusLoader) (platform.BusinessStatus, error) {
	if status, ok := s.c.Get(businessID); ok {
		return status, nil
	}
	v, err, _ := s.group.Do(businessID, func() (any, error) {
		status, err := load(ctx, businessID)
		if err != nil {
			return platform.BusinessStatus(""), err
		}
		s.c.SetWithTTL(businessID, status, 1, s.ttl)
		s.c.Wait()
		return status, nil
	})
	if err != nil {
		return "", err
	}
	return v.(platform.BusinessStatus), nil
}

// Invalidate drops the cached status of businessID.
func (s *BusinessStatusCache) Invalidate(businessID string) {
	s.c.Del(businessID)
}

// Close shuts down the cache and releases resources.
func (s *BusinessStatusCache) Close() {
	s.c.Close()
}
