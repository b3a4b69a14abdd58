package models

import "news_miner/internal/textstats"

// Document is the persisted form of a parsed article.
type Document struct {
	ID            string `bson:"_id"`
	URL           string `bson:"url"`
	NormalizedURL string `bson:"normalized_url"`
	Source        string `bson:"source"`
	Title         string `bson:"title"`
	Content       string `bson:"content"`
	HTMLContent   string `bson:"html_content"`
	ContentHash   string `bson:"content_hash"`
	ContentLength int    `bson:"content_length"`
	FirstScraped  int64  `bson:"first_scraped"`
	LastScraped   int64  `bson:"last_scraped"`
	ScrapedCount  int    `bson:"scraped_count"`
	StatusCode    int    `bson:"status_code"`
	IsValid       bool   `bson:"is_valid"`
	ErrorMessage  string `bson:"error_message,omitempty"`
}

// CachedPage is one raw HTTP response stored in the page cache.
type CachedPage struct {
	NormalizedURL string `bson:"_id"`
	URL           string `bson:"url"`
	StatusCode    int    `bson:"status_code"`
	Body          string `bson:"body"`
	FetchedAt     int64  `bson:"fetched_at"`
}

// WordReport is a persisted word-frequency report for one mining pass.
type WordReport struct {
	ID           string            `bson:"_id"`
	Source       string            `bson:"source"`
	GeneratedAt  int64             `bson:"generated_at"`
	ArticleCount int               `bson:"article_count"`
	TokenCount   int               `bson:"token_count"`
	TopWords     []textstats.Entry `bson:"top_words"`
}
