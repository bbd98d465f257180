package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

const (
	productKeyPrefix = "product:"
	notFoundTTL      = time.Minute
)

// cachedProduct is the cache entry; Missing marks a remembered miss.
type cachedProduct struct {
	Missing bool                  `json:"missing,omitempty"`
	Product *models.ProductDetail `json:"product,omitempty"`
}

// CachedProductRepository is a read-through cache over product detail reads.
// Lists and bulk reads go straight to the wrapped store. Cache failures are
// logged and fall through.
type CachedProductRepository struct {
	ProductStore
	cache cache.Store
	ttl   time.Duration
}

func NewCachedProductRepository(inner ProductStore, store cache.Store, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{ProductStore: inner, cache: store, ttl: ttl}
}

func (c *CachedProductRepository) FindByID(ctx context.Context, id string) (*models.ProductDetail, error) {
	key := productKeyPrefix + id

	var entry cachedProduct
	hit, err := c.cache.Get(ctx, key, &entry)
	switch {
	case err != nil:
		logger.WithCtx(ctx).Warn("product cache read failed", "key", key, "error", err)
	case hit && entry.Missing:
		return nil, ErrNotFound
	case hit && entry.Product != nil:
		return entry.Product, nil
	}

	p, err := c.ProductStore.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		c.set(ctx, key, cachedProduct{Missing: true}, notFoundTTL)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, cachedProduct{Product: p}, c.ttl)
	return p, nil
}

func (c *CachedProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := c.ProductStore.Create(ctx, p); err != nil {
		return err
	}
	// Clears a remembered miss for a client-supplied id.
	c.evict(ctx, p.ID.Hex())
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, id string, upd ProductUpdate) (*models.ProductDetail, error) {
	defer c.evict(ctx, id)
	return c.ProductStore.Update(ctx, id, upd)
}

func (c *CachedProductRepository) Delete(ctx context.Context, id string) error {
	defer c.evict(ctx, id)
	return c.ProductStore.Delete(ctx, id)
}

// Purge drops every cached product. Category writes call it because product
// details embed category names.
func (c *CachedProductRepository) Purge(ctx context.Context) {
	if err := c.cache.DelPattern(ctx, productKeyPrefix+"*"); err != nil {
		logger.WithCtx(ctx).Warn("product cache purge failed", "error", err)
	}
}

func (c *CachedProductRepository) evict(ctx context.Context, id string) {
	if err := c.cache.Del(ctx, productKeyPrefix+id); err != nil {
		logger.WithCtx(ctx).Warn("product cache evict failed", "id", id, "error", err)
	}
}

func (c *CachedProductRepository) set(ctx context.Context, key string, entry cachedProduct, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, entry, ttl); err != nil {
		logger.WithCtx(ctx).Warn("product cache write failed", "key", key, "error", err)
	}
}
