package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	jobPrefix = "mockup_job:"
	jobTTL    = 24 * time.Hour
)

// ErrJobNotFound is returned when no status is stored for a job id.
var ErrJobNotFound = errors.New("job not found")

func (s *StorageService) SaveJob(ctx context.Context, job *models.MockupJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return s.redisClient.Set(ctx, jobPrefix+job.ID, data, jobTTL).Err()
}

func (s *StorageService) GetJob(ctx context.Context, id string) (*models.MockupJob, error) {
	data, err := s.redisClient.Get(ctx, jobPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	var job models.MockupJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
