package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/device-mockup/internal/config"
	"github.com/phambaophuc/device-mockup/internal/devices"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/phambaophuc/device-mockup/internal/services/audit"
	"github.com/phambaophuc/device-mockup/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	imageParamKey   = "image"
	imagesParamKey  = "images"
	defaultRecent   = 20
	mockupPrefix    = "mockups"
	uploadPrefix    = "uploads"
	pngContentType  = "image/png"
	defaultFilename = "screenshot"
)

// Compositor renders mockups and resolves model/color defaults.
type Compositor interface {
	Resolve(modelKey, color string) (models.DeviceModel, string, error)
	Composite(ctx context.Context, screenshot []byte, modelKey, color string) (*models.Mockup, error)
	ValidateImage(data []byte) error
}

// Storage is the blob store, result cache and job status backend.
type Storage interface {
	BlobEnabled() bool
	UploadObject(ctx context.Context, key string, data []byte, contentType string) (string, error)
	UploadMultiple(ctx context.Context, files []models.UploadFile) ([]string, error)
	Delete(ctx context.Context, path string) error
	GenerateCacheKey(screenshot []byte, model, color string) string
	GetFromCache(ctx context.Context, cacheKey string) ([]byte, error)
	SetCache(ctx context.Context, cacheKey string, data []byte) error
	GetCacheStats(ctx context.Context) (map[string]interface{}, error)
	SaveJob(ctx context.Context, job *models.MockupJob) error
	GetJob(ctx context.Context, id string) (*models.MockupJob, error)
	HealthCheck(ctx context.Context) map[string]string
}

// JobQueue publishes asynchronous mockup jobs.
type JobQueue interface {
	PublishJob(ctx context.Context, job *models.MockupJob) error
	Stats() (*models.QueueStats, error)
	HealthCheck() string
}

// AuditLog records and lists finished mockups.
type AuditLog interface {
	Record(ctx context.Context, rec models.AuditRecord) error
	Recent(ctx context.Context, limit int) ([]models.AuditRecord, error)
	Ping(ctx context.Context) error
}

type MockupHandler struct {
	compositor Compositor
	catalog    *devices.Catalog
	storage    Storage
	queue      JobQueue
	audit      AuditLog
	logger     *zap.Logger
	config     *config.Config
}

// NewMockupHandler wires the handler. storage, queue and audit may be nil;
// the features that need them are then reported as unavailable.
func NewMockupHandler(
	compositor Compositor,
	catalog *devices.Catalog,
	storage Storage,
	queue JobQueue,
	audit AuditLog,
	logger *zap.Logger,
	config *config.Config,
) *MockupHandler {
	return &MockupHandler{
		compositor: compositor,
		catalog:    catalog,
		storage:    storage,
		queue:      queue,
		audit:      audit,
		logger:     logger,
		config:     config,
	}
}

// === MAIN API ENDPOINTS ===

// CreateMockup composites one screenshot and answers with the PNG.
func (h *MockupHandler) CreateMockup(c *gin.Context) {
	input, ok := h.readMockupInput(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	device, colorName, err := h.compositor.Resolve(input.model, input.color)
	if err != nil {
		h.respondCompositeError(c, err)
		return
	}

	cacheKey := ""
	if h.cacheEnabled() {
		cacheKey = h.storage.GenerateCacheKey(input.data, device.Key, colorName)
		if cached, found := h.tryGetFromCache(ctx, cacheKey); found {
			c.Header("X-Cache", "HIT")
			h.respondWithPNG(c, cached, device.Key, colorName, "", "")
			return
		}
	}

	uploadURL := h.uploadToStorage(ctx, uploadPrefix, input.filename, input.data, input.contentType)

	mockup, err := h.compositor.Composite(ctx, input.data, device.Key, colorName)
	if err != nil {
		h.respondCompositeError(c, err)
		return
	}

	mockupURL := h.uploadToStorage(ctx, mockupPrefix, mockupFilename(input.filename), mockup.PNG, pngContentType)

	if cacheKey != "" {
		h.setCacheData(ctx, cacheKey, mockup.PNG)
		c.Header("X-Cache", "MISS")
	}

	h.recordAudit(ctx, models.AuditRecord{
		ID:        uuid.New().String(),
		Model:     mockup.Model,
		Color:     mockup.Color,
		UploadURL: uploadURL,
		MockupURL: mockupURL,
		FileSize:  int64(len(mockup.PNG)),
		Source:    "api",
		CreatedAt: time.Now(),
	})

	h.respondWithPNG(c, mockup.PNG, mockup.Model, mockup.Color, uploadURL, mockupURL)
}

// BatchMockups composites every file of the images field with one model and
// color. Per-image failures are reported inline.
func (h *MockupHandler) BatchMockups(c *gin.Context) {
	files, err := h.readMultipartFiles(c)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}

	device, colorName, err := h.compositor.Resolve(c.PostForm("model"), c.PostForm("color"))
	if err != nil {
		h.respondCompositeError(c, err)
		return
	}

	ctx := c.Request.Context()
	items := make([]models.BatchItem, len(files))
	results := make([]*models.Mockup, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.config.Mockup.BatchWorkers, 1))

	for i := range files {
		items[i] = models.BatchItem{Index: i, Filename: files[i].Filename}
		if !utils.IsValidImageType(files[i].ContentType) {
			items[i].Error = "unsupported image type " + files[i].ContentType
			continue
		}
		g.Go(func() error {
			mockup, err := h.compositor.Composite(gctx, files[i].Data, device.Key, colorName)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			results[i] = mockup
			items[i].Width = mockup.Width
			items[i].Height = mockup.Height
			items[i].FileSize = int64(len(mockup.PNG))
			return nil
		})
	}
	g.Wait()

	h.attachBatchURLs(ctx, items, results)

	for i, mockup := range results {
		if mockup == nil {
			continue
		}
		h.recordAudit(ctx, models.AuditRecord{
			ID:        uuid.New().String(),
			Model:     mockup.Model,
			Color:     mockup.Color,
			MockupURL: items[i].URL,
			FileSize:  items[i].FileSize,
			Source:    "batch",
			CreatedAt: time.Now(),
		})
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.BatchResponse{
			Model:       device.Key,
			Color:       colorName,
			Images:      items,
			ProcessedAt: time.Now(),
		},
	})
}

// ListModels describes the device catalog.
func (h *MockupHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: gin.H{
			"default_model": h.catalog.DefaultKey(),
			"models":        h.catalog.All(),
		},
	})
}

// RecentMockups lists the newest audit records.
func (h *MockupHandler) RecentMockups(c *gin.Context) {
	if h.audit == nil {
		h.respondError(c, http.StatusServiceUnavailable, "audit_unavailable", "Audit log is not configured", nil)
		return
	}

	limit := defaultRecent
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondError(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer", nil)
			return
		}
		limit = min(n, audit.MaxRecent)
	}

	records, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list audit records", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list recent mockups", nil)
		return
	}
	if records == nil {
		records = []models.AuditRecord{}
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    records,
	})
}

// HealthCheck reports every backend; unconfigured ones do not make the
// service unhealthy.
func (h *MockupHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	services := map[string]string{}
	if h.storage != nil {
		for name, status := range h.storage.HealthCheck(ctx) {
			services[name] = status
		}
	} else {
		services["storage"] = "not configured"
	}

	var queueStats *models.QueueStats
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
		if stats, err := h.queue.Stats(); err != nil {
			h.logger.Debug("Queue stats unavailable", zap.Error(err))
		} else {
			queueStats = stats
		}
	} else {
		services["rabbitmq"] = "not configured"
	}

	if h.audit != nil {
		if err := h.audit.Ping(ctx); err != nil {
			services["audit"] = "unhealthy: " + err.Error()
		} else {
			services["audit"] = "healthy"
		}
	} else {
		services["audit"] = "not configured"
	}

	var cacheStats map[string]interface{}
	if h.cacheEnabled() {
		stats, err := h.storage.GetCacheStats(ctx)
		if err != nil {
			h.logger.Debug("Cache stats unavailable", zap.Error(err))
		} else {
			cacheStats = stats
		}
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
			Queue:     queueStats,
			Cache:     cacheStats,
		},
	})
}

func (h *MockupHandler) attachBatchURLs(ctx context.Context, items []models.BatchItem, results []*models.Mockup) {
	var (
		uploads []models.UploadFile
		indexes []int
	)
	for i, mockup := range results {
		if mockup == nil {
			continue
		}
		uploads = append(uploads, models.UploadFile{
			Filename:    mockupFilename(items[i].Filename),
			Data:        mockup.PNG,
			ContentType: pngContentType,
		})
		indexes = append(indexes, i)
	}

	var urls []string
	if h.storage != nil && h.storage.BlobEnabled() && len(uploads) > 0 {
		var err error
		urls, err = h.storage.UploadMultiple(ctx, uploads)
		if err != nil {
			h.logger.Warn("Failed to upload batch mockups", zap.Error(err))
		}
	}

	for n, i := range indexes {
		if n < len(urls) && urls[n] != "" {
			items[i].URL = urls[n]
			continue
		}
		items[i].Data = base64.StdEncoding.EncodeToString(results[i].PNG)
	}
}
