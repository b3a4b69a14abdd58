package cache

import (
	"context"
	"testing"
	"time"

	"news_miner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestIsFresh(t *testing.T) {
	now := time.Unix(100_000, 0)
	c := &MongoCache{
		ttl: time.Hour,
		now: func() time.Time { return now },
	}

	tests := []struct {
		name      string
		fetchedAt int64
		want      bool
	}{
		{"just fetched", 100_000, true},
		{"well within TTL", 100_000 - 1800, true},
		{"exactly at TTL", 100_000 - 3600, true},
		{"one second past TTL", 100_000 - 3601, false},
		{"long expired", 100_000 - 86400, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := models.CachedPage{FetchedAt: tt.fetchedAt}
			assert.Equal(t, tt.want, c.isFresh(page))
		})
	}
}

func cachedPageDoc(url string, fetchedAt int64) bson.D {
	return bson.D{
		{Key: "_id", Value: url},
		{Key: "url", Value: url},
		{Key: "status_code", Value: 200},
		{Key: "body", Value: "<html><body>cached page</body></html>"},
		{Key: "fetched_at", Value: fetchedAt},
	}
}

func TestGetExpiry(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	const url = "https://example.com/news/a"

	mt.Run("fresh entry is returned", func(mt *mtest.T) {
		c := NewMongoCache(mt.Coll, time.Hour)
		c.now = func() time.Time { return time.Unix(100_000, 0) }

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			cachedPageDoc(url, 100_000-600)))

		body, status, ok := c.Get(context.Background(), url)
		require.True(mt, ok)
		assert.Equal(mt, 200, status)
		assert.Contains(mt, body, "cached page")
	})

	mt.Run("entry older than the TTL is treated as absent", func(mt *mtest.T) {
		c := NewMongoCache(mt.Coll, time.Hour)
		c.now = func() time.Time { return time.Unix(100_000, 0) }

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			cachedPageDoc(url, 100_000-7200)))

		_, _, ok := c.Get(context.Background(), url)
		assert.False(mt, ok)
	})

	mt.Run("missing entry is a miss", func(mt *mtest.T) {
		c := NewMongoCache(mt.Coll, time.Hour)

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, _, ok := c.Get(context.Background(), url)
		assert.False(mt, ok)
	})
}
