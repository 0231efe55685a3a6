package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/phambaophuc/device-mockup/internal/models"
	"go.uber.org/zap"
)

func (q *QueueService) processJob(ctx context.Context, job *models.MockupJob) (*models.MockupResult, error) {
	screenshot, err := q.storage.Download(ctx, job.ScreenshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download screenshot: %w", err)
	}

	mockup, err := q.compositor.Composite(ctx, screenshot, job.Model, job.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to composite mockup: %w", err)
	}

	mockupURL, err := q.storage.Upload(ctx, mockup.PNG, job.ID+".png", "image/png")
	if err != nil {
		return nil, fmt.Errorf("failed to save mockup: %w", err)
	}

	result := &models.MockupResult{
		ID:          job.ID,
		Model:       mockup.Model,
		Color:       mockup.Color,
		Width:       mockup.Width,
		Height:      mockup.Height,
		FileSize:    int64(len(mockup.PNG)),
		UploadURL:   job.UploadURL,
		MockupURL:   mockupURL,
		ProcessedAt: time.Now(),
	}

	if q.audit != nil {
		err := q.audit.Record(ctx, models.AuditRecord{
			ID:        job.ID,
			Model:     result.Model,
			Color:     result.Color,
			UploadURL: result.UploadURL,
			MockupURL: result.MockupURL,
			FileSize:  result.FileSize,
			Source:    "job",
			CreatedAt: result.ProcessedAt,
		})
		if err != nil {
			q.logger.Warn("Failed to record audit entry", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	return result, nil
}
