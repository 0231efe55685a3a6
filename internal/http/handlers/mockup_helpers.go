package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/phambaophuc/device-mockup/internal/services/processor"
	"github.com/phambaophuc/device-mockup/pkg/utils"
	"go.uber.org/zap"
)

var (
	errMissingImage = errors.New("no image provided")
	errTooLarge     = errors.New("request body too large")
)

// mockupInput is a decoded mockup request.
type mockupInput struct {
	data        []byte
	filename    string
	contentType string
	model       string
	color       string
}

// === REQUEST PARSING ===

// readMockupInput decodes the request according to its Content-Type and
// writes the error response itself when it fails.
func (h *MockupHandler) readMockupInput(c *gin.Context) (*mockupInput, bool) {
	input, err := h.parseMockupInput(c)
	if err != nil {
		h.respondRequestError(c, err)
		return nil, false
	}

	if limit := h.config.Mockup.MaxScreenshot; limit > 0 && int64(len(input.data)) > limit {
		h.respondRequestError(c, fmt.Errorf("%w: screenshot is %d bytes, limit %d", errTooLarge, len(input.data), limit))
		return nil, false
	}

	input.contentType = utils.DetectImageType(input.data)
	if input.filename == "" {
		input.filename = defaultFilename + utils.ExtensionFor(input.contentType)
	}
	return input, true
}

func (h *MockupHandler) parseMockupInput(c *gin.Context) (*mockupInput, error) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		return h.parseMultipartInput(c)
	case "text/plain":
		return h.parseRawInput(c)
	default:
		return h.parseJSONInput(c)
	}
}

func (h *MockupHandler) parseJSONInput(c *gin.Context) (*mockupInput, error) {
	var req models.MockupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if strings.TrimSpace(req.Image) == "" {
		return nil, errMissingImage
	}

	data, err := utils.DecodeBase64Image(req.Image)
	if err != nil {
		return nil, err
	}

	return &mockupInput{data: data, model: req.Model, color: req.Color}, nil
}

// parseRawInput reads a bare base64 body; model and color come from the query.
func (h *MockupHandler) parseRawInput(c *gin.Context) (*mockupInput, error) {
	body, err := c.GetRawData()
	if err != nil {
		if isTooLarge(err) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errMissingImage
	}

	data, err := utils.DecodeBase64Image(string(body))
	if err != nil {
		return nil, err
	}

	return &mockupInput{data: data, model: c.Query("model"), color: c.Query("color")}, nil
}

func (h *MockupHandler) parseMultipartInput(c *gin.Context) (*mockupInput, error) {
	header, err := c.FormFile(imageParamKey)
	if err != nil {
		if isTooLarge(err) {
			return nil, errTooLarge
		}
		return nil, errMissingImage
	}

	data, err := h.readFileHeader(header)
	if err != nil {
		return nil, err
	}

	return &mockupInput{
		data:     data,
		filename: header.Filename,
		model:    c.PostForm("model"),
		color:    c.PostForm("color"),
	}, nil
}

func (h *MockupHandler) readMultipartFiles(c *gin.Context) ([]models.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if isTooLarge(err) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("failed to parse form data: %w", err)
	}

	headers := form.File[imagesParamKey]
	if len(headers) == 0 {
		return nil, errMissingImage
	}
	if limit := h.config.Mockup.MaxBatchImages; limit > 0 && len(headers) > limit {
		return nil, fmt.Errorf("too many images: %d, limit %d", len(headers), limit)
	}

	files := make([]models.UploadFile, 0, len(headers))
	for _, header := range headers {
		data, err := h.readFileHeader(header)
		if err != nil {
			return nil, err
		}
		files = append(files, models.UploadFile{
			Filename:    header.Filename,
			Data:        data,
			ContentType: utils.DetectImageType(data),
		})
	}

	return files, nil
}

// === FILE OPERATIONS ===

func (h *MockupHandler) readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	limit := h.config.Mockup.MaxScreenshot
	if limit > 0 && header.Size > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", errTooLarge, header.Filename, header.Size, limit)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", errMissingImage, header.Filename)
	}
	return data, nil
}

func isTooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes) || errors.Is(err, multipart.ErrMessageTooLarge)
}

// === RESPONSE HANDLING ===

func (h *MockupHandler) respondError(c *gin.Context, statusCode int, code, message string, valid []string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
		Code:    code,
		Valid:   valid,
	})
}

func (h *MockupHandler) respondRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errTooLarge):
		h.respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), nil)
	case errors.Is(err, errMissingImage):
		h.respondError(c, http.StatusBadRequest, "missing_image", err.Error(), nil)
	default:
		h.respondError(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	}
}

// respondCompositeError maps compositor failures: caller-correctable ones are
// 400 with the valid alternatives, everything else is 500.
func (h *MockupHandler) respondCompositeError(c *gin.Context, err error) {
	var (
		unknownModel *processor.UnknownModelError
		unknownColor *processor.UnknownColorError
		noBezel      *processor.BezelUnavailableError
		decodeErr    *processor.ImageDecodeError
	)

	switch {
	case errors.As(err, &unknownModel):
		h.respondError(c, http.StatusBadRequest, "unknown_model", err.Error(), unknownModel.Valid)
	case errors.As(err, &unknownColor):
		h.respondError(c, http.StatusBadRequest, "unknown_color", err.Error(), unknownColor.Valid)
	case errors.As(err, &noBezel):
		h.respondError(c, http.StatusBadRequest, "bezel_unavailable", err.Error(), noBezel.Suggested)
	case errors.Is(err, processor.ErrTooManyPixels):
		h.respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), nil)
	case errors.As(err, &decodeErr):
		h.logger.Warn("Image decode failed", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "image_decode_failed", err.Error(), nil)
	default:
		h.logger.Error("Mockup generation failed", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "internal_error", "Failed to generate mockup", nil)
	}
}

func (h *MockupHandler) respondWithPNG(c *gin.Context, data []byte, model, color, uploadURL, mockupURL string) {
	c.Header("X-Mockup-Model", model)
	c.Header("X-Mockup-Color", color)
	if uploadURL != "" {
		c.Header("X-Upload-Url", uploadURL)
	}
	if mockupURL != "" {
		c.Header("X-Mockup-Url", mockupURL)
	}
	c.Data(http.StatusOK, pngContentType, data)
}

// === STORAGE OPERATIONS ===

// uploadToStorage persists data under a timestamp-derived key and returns its
// URL, or "" when storage is disabled or the upload fails.
func (h *MockupHandler) uploadToStorage(ctx context.Context, prefix, filename string, data []byte, contentType string) string {
	if h.storage == nil || !h.storage.BlobEnabled() {
		return ""
	}

	url, err := h.storage.UploadObject(ctx, utils.GenerateStorageKey(prefix, filename), data, contentType)
	if err != nil {
		h.logger.Warn("Failed to upload to Storage", zap.String("prefix", prefix), zap.Error(err))
		return ""
	}

	return url
}

func (h *MockupHandler) cacheEnabled() bool {
	return h.storage != nil && h.config.Redis.CacheEnabled
}

func (h *MockupHandler) tryGetFromCache(ctx context.Context, cacheKey string) ([]byte, bool) {
	cachedData, err := h.storage.GetFromCache(ctx, cacheKey)
	if err != nil {
		h.logger.Warn("Cache lookup failed", zap.String("cache_key", cacheKey), zap.Error(err))
		return nil, false
	}
	if cachedData == nil {
		return nil, false
	}

	h.logger.Debug("Cache hit", zap.String("cache_key", cacheKey))
	return cachedData, true
}

func (h *MockupHandler) setCacheData(ctx context.Context, cacheKey string, data []byte) {
	if err := h.storage.SetCache(ctx, cacheKey, data); err != nil {
		h.logger.Warn("Failed to cache data", zap.String("cache_key", cacheKey), zap.Error(err))
	}
}

func (h *MockupHandler) recordAudit(ctx context.Context, rec models.AuditRecord) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Record(ctx, rec); err != nil {
		h.logger.Warn("Failed to record audit entry", zap.String("id", rec.ID), zap.Error(err))
	}
}

// === UTILITY METHODS ===

func (h *MockupHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}

func mockupFilename(original string) string {
	if original == "" {
		original = defaultFilename
	}
	return strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)) + "-mockup.png"
}
