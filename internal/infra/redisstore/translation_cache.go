package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "trcache:"

// CachedTranslation is the cache value plus usage telemetry.
type CachedTranslation struct {
	Text       string
	Confidence float64
	Provider   string
	Hits       int64
	LastUsedAt time.Time
}

// TranslationCache is a best-effort Redis cache keyed by
// (text, fromLang, toLang). Entries carry a usage count and last-used time;
// eviction is the key TTL refreshed on each hit (LRU by recency).
type TranslationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTranslationCache(rdb *redis.Client, ttl time.Duration) *TranslationCache {
	return &TranslationCache{rdb: rdb, ttl: ttl}
}

func cacheKey(text, fromLang, toLang string) string {
	sum := sha256.Sum256([]byte(fromLang + "|" + toLang + "|" + text))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Get returns (nil, nil) on miss. A hit bumps the usage counters and the TTL.
func (c *TranslationCache) Get(ctx context.Context, text, fromLang, toLang string) (*CachedTranslation, error) {
	key := cacheKey(text, fromLang, toLang)

	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	confidence, _ := strconv.ParseFloat(fields["confidence"], 64)
	hits, _ := strconv.ParseInt(fields["hits"], 10, 64)

	now := time.Now()
	pipe := c.rdb.Pipeline()
	pipe.HIncrBy(ctx, key, "hits", 1)
	pipe.HSet(ctx, key, "last_used", now.Format(time.RFC3339))
	pipe.Expire(ctx, key, c.ttl)
	// usage telemetry is best effort; a failed bump never fails the lookup
	_, _ = pipe.Exec(ctx)

	return &CachedTranslation{
		Text:       fields["text"],
		Confidence: confidence,
		Provider:   fields["provider"],
		Hits:       hits + 1,
		LastUsedAt: now,
	}, nil
}

func (c *TranslationCache) Put(ctx context.Context, text, fromLang, toLang, translated, provider string, confidence float64) error {
	key := cacheKey(text, fromLang, toLang)
	now := time.Now().Format(time.RFC3339)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"text":       translated,
		"confidence": strconv.FormatFloat(confidence, 'f', -1, 64),
		"provider":   provider,
		"hits":       0,
		"last_used":  now,
	})
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}
