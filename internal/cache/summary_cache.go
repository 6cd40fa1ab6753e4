// Package cache keeps computed driver summaries for a short time so repeated
// dashboard requests do not refetch and rescore the same records.
package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/logger"
)

// Remote is a shared byte store behind the in-process cache. GetBytes returns nil, nil on a miss.
type Remote interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SummaryCache is a two-level summary cache: in-process first, then the optional remote.
// Failures are logged and treated as misses.
type SummaryCache struct {
	local  *gocache.Cache
	remote Remote
	ttl    time.Duration
}

// NewSummaryCache creates a cache whose entries expire after ttl. remote may be nil.
func NewSummaryCache(ttl time.Duration, remote Remote) *SummaryCache {
	return &SummaryCache{
		local:  gocache.New(ttl, 2*ttl),
		remote: remote,
		ttl:    ttl,
	}
}

func summaryKey(driverID string) string {
	return "summary:" + driverID
}

// Get returns a cached summary
func (c *SummaryCache) Get(ctx context.Context, driverID string) (domain.DriverBehaviorSummary, bool) {
	key := summaryKey(driverID)
	if v, ok := c.local.Get(key); ok {
		return v.(domain.DriverBehaviorSummary), true
	}
	if c.remote == nil {
		return domain.DriverBehaviorSummary{}, false
	}

	data, err := c.remote.GetBytes(ctx, key)
	if err != nil {
		logger.Warn("summary cache read failed", "driver_id", driverID, "error", err)
		return domain.DriverBehaviorSummary{}, false
	}
	if data == nil {
		return domain.DriverBehaviorSummary{}, false
	}

	var s domain.DriverBehaviorSummary
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("summary cache entry is corrupt", "driver_id", driverID, "error", err)
		return domain.DriverBehaviorSummary{}, false
	}
	c.local.SetDefault(key, s)
	return s, true
}

// Set stores a summary at both levels
func (c *SummaryCache) Set(ctx context.Context, s domain.DriverBehaviorSummary) {
	key := summaryKey(s.DriverID)
	c.local.SetDefault(key, s)
	if c.remote == nil {
		return
	}

	data, err := json.Marshal(s)
	if err != nil {
		logger.Warn("summary cache encode failed", "driver_id", s.DriverID, "error", err)
		return
	}
	if err := c.remote.SetBytes(ctx, key, data, c.ttl); err != nil {
		logger.Warn("summary cache write failed", "driver_id", s.DriverID, "error", err)
	}
}

// Flush drops every in-process entry
func (c *SummaryCache) Flush() {
	c.local.Flush()
}
