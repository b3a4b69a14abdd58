// Package cache stores raw HTTP responses keyed by normalized URL so repeated
// mining passes skip the network for pages fetched recently.
package cache

import (
	"context"
	"time"

	"news_miner/internal/models"
	"news_miner/internal/urlutil"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCache is a response cache with time-based expiry. Entries older than
// the TTL are treated as absent, not deleted; a Put over the same URL
// refreshes them.
type MongoCache struct {
	pages *mongo.Collection
	ttl   time.Duration
	now   func() time.Time
}

func NewMongoCache(pages *mongo.Collection, ttl time.Duration) *MongoCache {
	return &MongoCache{
		pages: pages,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached body and status for url if a fresh entry exists.
func (c *MongoCache) Get(ctx context.Context, url string) (string, int, bool) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var page models.CachedPage
	err := c.pages.FindOne(opCtx, bson.M{"_id": urlutil.Normalize(url)}).Decode(&page)
	if err != nil {
		return "", 0, false
	}

	if !c.isFresh(page) {
		return "", 0, false
	}

	return page.Body, page.StatusCode, true
}

func (c *MongoCache) isFresh(page models.CachedPage) bool {
	return c.now().Unix()-page.FetchedAt <= int64(c.ttl.Seconds())
}

// Put upserts the response body for url with the current timestamp.
func (c *MongoCache) Put(ctx context.Context, url string, statusCode int, body string) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page := models.CachedPage{
		NormalizedURL: urlutil.Normalize(url),
		URL:           url,
		StatusCode:    statusCode,
		Body:          body,
		FetchedAt:     c.now().Unix(),
	}

	opts := options.Replace().SetUpsert(true)
	_, err := c.pages.ReplaceOne(opCtx, bson.M{"_id": page.NormalizedURL}, page, opts)
	return err
}
