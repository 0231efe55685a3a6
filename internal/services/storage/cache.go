package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "mockup_cache:"

// GetFromCache returns the cached mockup for key, or nil on a miss.
func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey derives a cache key from the screenshot content and the
// resolved model and color; identical inputs composite to identical output.
func (s *StorageService) GenerateCacheKey(screenshot []byte, model, color string) string {
	return GenerateCacheKey(screenshot, model, color)
}

func GenerateCacheKey(screenshot []byte, model, color string) string {
	hash := sha256.New()
	hash.Write(screenshot)
	fmt.Fprintf(hash, "\x00model=%s\x00color=%s", model, color)
	return fmt.Sprintf("%s%x", cachePrefix, hash.Sum(nil))
}

func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	dbSize, err := s.redisClient.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	var cached int64
	iter := s.redisClient.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		cached++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"db_keys":        dbSize,
		"cached_mockups": cached,
	}, nil
}
