package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/phambaophuc/device-mockup/internal/services/storage"
	"github.com/phambaophuc/device-mockup/pkg/utils"
	"go.uber.org/zap"
)

// CreateJob stores the screenshot and queues it for a worker. The response
// is 202 with the pending job.
func (h *MockupHandler) CreateJob(c *gin.Context) {
	if h.queue == nil || h.storage == nil || !h.storage.BlobEnabled() {
		h.respondError(c, http.StatusServiceUnavailable, "queue_unavailable", "Async processing is not configured", nil)
		return
	}

	input, ok := h.readMockupInput(c)
	if !ok {
		return
	}

	device, colorName, err := h.compositor.Resolve(input.model, input.color)
	if err != nil {
		h.respondCompositeError(c, err)
		return
	}

	if err := h.compositor.ValidateImage(input.data); err != nil {
		h.respondCompositeError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := utils.GenerateStorageKey(uploadPrefix, input.filename)
	uploadURL, err := h.storage.UploadObject(ctx, key, input.data, input.contentType)
	if err != nil {
		h.logger.Error("Failed to store job screenshot", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "internal_error", "Failed to store screenshot", nil)
		return
	}

	now := time.Now()
	job := &models.MockupJob{
		ID:            uuid.New().String(),
		ScreenshotKey: key,
		UploadURL:     uploadURL,
		Model:         device.Key,
		Color:         colorName,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.storage.SaveJob(ctx, job); err != nil {
		h.logger.Error("Failed to save job", zap.String("job_id", job.ID), zap.Error(err))
		h.discardUpload(ctx, key)
		h.respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create job", nil)
		return
	}

	if err := h.queue.PublishJob(ctx, job); err != nil {
		h.logger.Error("Failed to publish job", zap.String("job_id", job.ID), zap.Error(err))

		job.Status = models.StatusFailed
		job.Error = "failed to enqueue job"
		job.UpdatedAt = time.Now()
		if err := h.storage.SaveJob(ctx, job); err != nil {
			h.logger.Warn("Failed to mark job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		h.discardUpload(ctx, key)

		h.respondError(c, http.StatusServiceUnavailable, "queue_unavailable", "Failed to enqueue job", nil)
		return
	}

	c.Header("Location", "/api/v1/mockups/jobs/"+job.ID)
	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

// GetJob reports the status of an async job.
func (h *MockupHandler) GetJob(c *gin.Context) {
	if h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "queue_unavailable", "Async processing is not configured", nil)
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_job_id", "Job id must be a UUID", nil)
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			h.respondError(c, http.StatusNotFound, "job_not_found", "Job not found", nil)
			return
		}
		h.logger.Error("Failed to load job", zap.String("job_id", id), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "internal_error", "Failed to load job", nil)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

// discardUpload removes a screenshot that no job will ever read.
func (h *MockupHandler) discardUpload(ctx context.Context, key string) {
	if err := h.storage.Delete(ctx, key); err != nil {
		h.logger.Warn("Failed to remove orphaned screenshot", zap.String("key", key), zap.Error(err))
	}
}
