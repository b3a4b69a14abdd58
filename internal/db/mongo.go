package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"news_miner/internal/config"
	"news_miner/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	client    *mongo.Client
	database  *mongo.Database
	documents *mongo.Collection
	pageCache *mongo.Collection
	reports   *mongo.Collection
}

func NewMongoDB(cfg config.DBConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)

	d := &MongoDB{
		client:    client,
		database:  db,
		documents: db.Collection(collectionName(cfg.Collections.Documents, "documents")),
		pageCache: db.Collection(collectionName(cfg.Collections.PageCache, "page_cache")),
		reports:   db.Collection(collectionName(cfg.Collections.Reports, "reports")),
	}

	if err := d.createIndexes(); err != nil {
		return nil, fmt.Errorf("can't create indices: %w", err)
	}

	return d, nil
}

func collectionName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func (d *MongoDB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_url", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := d.documents.Indexes().CreateOne(ctx, indexModel); err != nil && err.Error() != "index already exists" {
		log.Printf("Error creating URL index: %v", err)
	}

	indexModel = mongo.IndexModel{
		Keys: bson.D{{Key: "last_scraped", Value: 1}},
	}
	if _, err := d.documents.Indexes().CreateOne(ctx, indexModel); err != nil && err.Error() != "index already exists" {
		log.Printf("Error creating last_scraped index: %v", err)
	}

	indexModel = mongo.IndexModel{
		Keys: bson.D{{Key: "fetched_at", Value: 1}},
	}
	if _, err := d.pageCache.Indexes().CreateOne(ctx, indexModel); err != nil && err.Error() != "index already exists" {
		log.Printf("Error creating fetched_at index: %v", err)
	}

	return nil
}

// PageCache exposes the raw-response collection for the cache layer.
func (d *MongoDB) PageCache() *mongo.Collection {
	return d.pageCache
}

func (d *MongoDB) SaveDocument(doc *models.Document) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update, err := buildDocumentUpdate(doc)
	if err != nil {
		return err
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"normalized_url": doc.NormalizedURL}

	_, err = d.documents.UpdateOne(ctx, filter, update, opts)
	return err
}

// buildDocumentUpdate turns a document into an upsert update. The _id never
// goes into $set: the filter matches on normalized_url, so re-saves hit an
// existing document whose _id is immutable. ID and first_scraped apply only
// on insert; scraped_count is incremented server-side.
func buildDocumentUpdate(doc *models.Document) (bson.M, error) {
	var updateDoc bson.M
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := bson.Unmarshal(data, &updateDoc); err != nil {
		return nil, err
	}

	delete(updateDoc, "_id")
	delete(updateDoc, "scraped_count")
	delete(updateDoc, "first_scraped")

	return bson.M{
		"$set": updateDoc,
		"$inc": bson.M{"scraped_count": 1},
		"$setOnInsert": bson.M{
			"_id":           doc.ID,
			"first_scraped": doc.FirstScraped,
		},
	}, nil
}

func (d *MongoDB) GetDocument(normalizedURL string) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var doc models.Document
	err := d.documents.FindOne(ctx, bson.M{"normalized_url": normalizedURL}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &doc, err
}

func (d *MongoDB) DocumentExists(normalizedURL string) (bool, error) {
	doc, err := d.GetDocument(normalizedURL)
	return doc != nil, err
}

// GetStaleDocuments returns URLs of the source's documents last scraped
// before the threshold, oldest first, capped at limit.
func (d *MongoDB) GetStaleDocuments(source string, thresholdHours int, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-time.Duration(thresholdHours) * time.Hour).Unix()

	filter := bson.M{
		"source":       source,
		"last_scraped": bson.M{"$lt": cutoff},
	}

	// Project the original url, not normalized_url: re-mine handles fetch
	// with the URL the article was first listed under.
	opts := options.Find().
		SetProjection(bson.M{"url": 1}).
		SetSort(bson.M{"last_scraped": 1}).
		SetLimit(int64(limit))

	cursor, err := d.documents.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("stale document lookup failed: %w", err)
	}
	defer cursor.Close(ctx)

	var urls []string
	type urlOnly struct {
		URL string `bson:"url"`
	}

	for cursor.Next(ctx) {
		var res urlOnly
		if err := cursor.Decode(&res); err == nil {
			urls = append(urls, res.URL)
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return urls, nil
}

func (d *MongoDB) SaveReport(report *models.WordReport) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := d.reports.InsertOne(ctx, report)
	return err
}

func (d *MongoDB) GetSourceStats(source string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "source", Value: source}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_documents", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_content_length", Value: bson.D{{Key: "$avg", Value: "$content_length"}}},
			{Key: "max_scraped_count", Value: bson.D{{Key: "$max", Value: "$scraped_count"}}},
			{Key: "valid_documents", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$is_valid", 1, 0}}}}}},
		}}},
	}

	cursor, err := d.documents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []map[string]interface{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return make(map[string]interface{}), nil
	}

	return results[0], nil
}

func (d *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}
