// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package geo

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// cacheTTL matches the slow drift of map data; geocodes and POI sets
	// around a fixed address rarely change month to month.
	cacheTTL = 30 * 24 * time.Hour

	cachePrefix = "listingprep:geo:"
)

// Cache stores Maps API responses in Redis so repeated enrichment runs for
// the same address cost one round of API calls. A nil *Cache disables
// caching.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a geo response cache backed by Redis.
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{
		rdb: rdb,
		ttl: cacheTTL,
	}
}

func cacheKey(kind, key string) string {
	return fmt.Sprintf("%s%s:%x", cachePrefix, kind, md5.Sum([]byte(key)))
}

// Get loads a cached response into out. Returns false on a miss. Cache
// errors degrade to a miss so a Redis outage never blocks enrichment.
func (c *Cache) Get(ctx context.Context, kind, key string, out any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(kind, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("geo cache read failed", "kind", kind, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("geo cache entry corrupt, ignoring", "kind", kind, "error", err)
		return false
	}
	return true
}

// Put stores a response. Failures are logged and swallowed.
func (c *Cache) Put(ctx context.Context, kind, key string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Warn("geo cache marshal failed", "kind", kind, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(kind, key), raw, c.ttl).Err(); err != nil {
		slog.Warn("geo cache write failed", "kind", kind, "error", err)
	}
}
