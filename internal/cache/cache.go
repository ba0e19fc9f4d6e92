package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/storage"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

// CatalogCache wraps the media catalog with Redis caching of the gallery
// listing. It implements storage.Catalog so callers cannot tell the
// difference; inserts invalidate the cached listing.
type CatalogCache struct {
	catalog storage.Catalog
	redis   *redis.Client
}

// Cache keys and durations
const (
	mediaListKey = "media:list"

	// Hot listing cache; galleries poll this endpoint
	mediaListDuration = 45 * time.Second
)

type cachedListing struct {
	Images []media.Record `json:"images"`
	Videos []media.Record `json:"videos"`
}

// NewCatalogCache creates a caching layer over the given catalog
func NewCatalogCache(catalog storage.Catalog, redisClient *redis.Client) *CatalogCache {
	return &CatalogCache{
		catalog: catalog,
		redis:   redisClient,
	}
}

// Insert writes through to the catalog and invalidates the listing cache
func (c *CatalogCache) Insert(ctx context.Context, record media.Record, kind media.Kind) error {
	if err := c.catalog.Insert(ctx, record, kind); err != nil {
		return err
	}

	if err := c.redis.Del(ctx, mediaListKey).Err(); err != nil {
		// Stale listing for at most the cache TTL; not worth failing the commit
		slog.Warn("Failed to invalidate media list cache", slog.String("error", err.Error()))
	}

	return nil
}

// List returns the cached gallery listing or fetches it from the catalog
func (c *CatalogCache) List(ctx context.Context) ([]media.Record, []media.Record, error) {
	cached, err := c.redis.Get(ctx, mediaListKey).Result()
	if err == nil {
		var listing cachedListing
		if err := json.Unmarshal([]byte(cached), &listing); err == nil {
			return listing.Images, listing.Videos, nil
		}
	}

	// Cache miss - fetch from the catalog
	images, videos, err := c.catalog.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	data, _ := json.Marshal(cachedListing{Images: images, Videos: videos})
	c.redis.Set(ctx, mediaListKey, data, mediaListDuration)

	return images, videos, nil
}

// Keys passes through; reconciliation must never see stale data
func (c *CatalogCache) Keys(ctx context.Context) (map[string]struct{}, error) {
	return c.catalog.Keys(ctx)
}
