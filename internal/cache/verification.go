// Package cache holds the optional Redis read-through cache for public certificate verification.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmadqo/club-certificate-engine/internal/config"
	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/redis/go-redis/v9"
)

const verifyKeyPrefix = "cert:verify:"

// NewRedisClient returns nil when no URL is configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// VerificationCache stores certificates by validation code. Certificates are immutable apart
// from the download counter, so a short TTL is the only invalidation besides deletes.
type VerificationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewVerificationCache(client *redis.Client, ttl time.Duration) *VerificationCache {
	return &VerificationCache{client: client, ttl: ttl}
}

func key(code string) string {
	return verifyKeyPrefix + code
}

// Get returns (nil, nil) on a miss.
func (c *VerificationCache) Get(ctx context.Context, code string) (*model.Certificate, error) {
	raw, err := c.client.Get(ctx, key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cert model.Certificate
	if err := json.Unmarshal(raw, &cert); err != nil {
		return nil, fmt.Errorf("decode cached certificate %s: %w", code, err)
	}
	return &cert, nil
}

func (c *VerificationCache) Set(ctx context.Context, cert *model.Certificate) error {
	raw, err := json.Marshal(cert)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(cert.ValidationCode), raw, c.ttl).Err()
}

func (c *VerificationCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, key(code)).Err()
}
