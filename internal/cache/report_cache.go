// Package cache stores generated reports in Redis so identical requests skip the model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "shortlist:report:"
	DefaultTTL = 24 * time.Hour
)

// ReportCache keeps raw reports keyed by a digest of the request inputs
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis server at redisURL and checks it is reachable
func New(ctx context.Context, redisURL string, ttl time.Duration) (*ReportCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Key derives the cache key from the model, the job description and the resume texts, in order
func Key(model, jobDescription string, resumes []string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(jobDescription))
	for _, r := range resumes {
		h.Write([]byte{0})
		h.Write([]byte(r))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached report. The boolean is false on a miss.
func (c *ReportCache) Get(ctx context.Context, key string) (string, bool, error) {
	report, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return report, true, nil
}

// Set stores the report with the configured TTL
func (c *ReportCache) Set(ctx context.Context, key, report string) error {
	if err := c.client.Set(ctx, key, report, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *ReportCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
