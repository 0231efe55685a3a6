package storage

import (
	"context"
	"time"
)

// IncrementWindow increments a fixed-window counter and returns the new
// count. The key expires with the window.
func (s *StorageService) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
