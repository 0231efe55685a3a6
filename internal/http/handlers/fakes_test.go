package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/device-mockup/internal/config"
	"github.com/phambaophuc/device-mockup/internal/devices"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/phambaophuc/device-mockup/internal/services/assets"
	"github.com/phambaophuc/device-mockup/internal/services/processor"
	"github.com/phambaophuc/device-mockup/internal/services/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCatalog = `
default_model: phone
models:
  - key: phone
    name: Test Phone
    colors: [Black, White]
    default_color: Black
    bezel: {width: 100, height: 200}
    silhouette: {top: 5, left: 5, width: 90, height: 190, corner_radius: 12}
    screen: {top: 10, left: 10, width: 80, height: 180, corner_radius: 8}
  - key: mini
    name: Mini Phone
    colors: [Sage]
    default_color: Sage
    bezel: {width: 50, height: 100}
    silhouette: {top: 0, left: 0, width: 50, height: 100, corner_radius: 6}
    screen: {top: 5, left: 5, width: 40, height: 90, corner_radius: 4}
`

var red = color.NRGBA{R: 255, A: 255}

func init() {
	gin.SetMode(gin.TestMode)
}

type memAssets struct {
	files map[string][]byte
}

func (m *memAssets) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, assets.ErrNotFound
	}
	return data, nil
}

func (m *memAssets) Exists(ctx context.Context, name string) bool {
	_, ok := m.files[name]
	return ok
}

type fakeStorage struct {
	mu        sync.Mutex
	blob      bool
	uploadErr error
	saveErr   error
	uploads   []string
	deleted   []string
	cache     map[string][]byte
	jobs      map[string]*models.MockupJob
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		blob:  true,
		cache: map[string][]byte{},
		jobs:  map[string]*models.MockupJob{},
	}
}

func (f *fakeStorage) BlobEnabled() bool { return f.blob }

func (f *fakeStorage) UploadObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) UploadMultiple(ctx context.Context, files []models.UploadFile) ([]string, error) {
	urls := make([]string, len(files))
	for i, file := range files {
		url, err := f.UploadObject(ctx, "mockups/"+file.Filename, file.Data, file.ContentType)
		if err != nil {
			return urls, err
		}
		urls[i] = url
	}
	return urls, nil
}

func (f *fakeStorage) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeStorage) GenerateCacheKey(screenshot []byte, model, color string) string {
	return storage.GenerateCacheKey(screenshot, model, color)
}

func (f *fakeStorage) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache[cacheKey], nil
}

func (f *fakeStorage) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[cacheKey] = data
	return nil
}

func (f *fakeStorage) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return map[string]interface{}{"cached_mockups": len(f.cache)}, nil
}

func (f *fakeStorage) SaveJob(ctx context.Context, job *models.MockupJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeStorage) GetJob(ctx context.Context, id string) (*models.MockupJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, storage.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStorage) HealthCheck(ctx context.Context) map[string]string {
	return map[string]string{"redis": "healthy", "supabase": "healthy"}
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type fakeQueue struct {
	mu        sync.Mutex
	published []*models.MockupJob
	err       error
}

func (q *fakeQueue) PublishJob(ctx context.Context, job *models.MockupJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, job)
	return nil
}

func (q *fakeQueue) Stats() (*models.QueueStats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return &models.QueueStats{Name: "mockup_jobs", Pending: len(q.published), Consumers: 1}, nil
}

func (q *fakeQueue) HealthCheck() string { return "healthy" }

type fakeAudit struct {
	mu      sync.Mutex
	records []models.AuditRecord
	pingErr error
}

func (a *fakeAudit) Record(ctx context.Context, rec models.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *fakeAudit) Recent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := slices.Clone(a.records)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *fakeAudit) Ping(ctx context.Context) error { return a.pingErr }

func (a *fakeAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

type fixture struct {
	catalog   *devices.Catalog
	storage   *fakeStorage
	queue     *fakeQueue
	audit     *fakeAudit
	config    *config.Config
	maxPixels int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := devices.Load(strings.NewReader(testCatalog))
	require.NoError(t, err)

	return &fixture{
		catalog: catalog,
		storage: newFakeStorage(),
		queue:   &fakeQueue{},
		audit:   &fakeAudit{},
		config: &config.Config{
			Redis: config.RedisConfig{CacheEnabled: true},
			Mockup: config.MockupConfig{
				MaxScreenshot:  1 << 20,
				BatchWorkers:   2,
				MaxBatchImages: 3,
			},
		},
	}
}

// handler builds a MockupHandler. Only the Black bezel of the test phone
// exists and no silhouette masks are present.
func (f *fixture) handler(t *testing.T) *MockupHandler {
	t.Helper()

	phone, ok := f.catalog.Lookup("phone")
	require.True(t, ok)

	store := &memAssets{files: map[string][]byte{
		assets.BezelName(phone.Name, "Black"): encodePNG(t, bezelImage(phone)),
	}}
	var opts []processor.Option
	if f.maxPixels > 0 {
		opts = append(opts, processor.WithMaxPixels(f.maxPixels))
	}
	compositor := processor.NewCompositor(f.catalog, store, zap.NewNop(), opts...)

	var (
		st Storage
		q  JobQueue
		a  AuditLog
	)
	if f.storage != nil {
		st = f.storage
	}
	if f.queue != nil {
		q = f.queue
	}
	if f.audit != nil {
		a = f.audit
	}

	return NewMockupHandler(compositor, f.catalog, st, q, a, zap.NewNop(), f.config)
}

func (f *fixture) router(t *testing.T) *gin.Engine {
	t.Helper()
	h := f.handler(t)

	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/models", h.ListModels)
	r.POST("/mockups", h.CreateMockup)
	r.POST("/mockups/batch", h.BatchMockups)
	r.POST("/mockups/jobs", h.CreateJob)
	r.GET("/mockups/jobs/:id", h.GetJob)
	r.GET("/mockups/recent", h.RecentMockups)
	return r
}

func bezelImage(device models.DeviceModel) *image.NRGBA {
	w, h := device.BezelSize.Width, device.BezelSize.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	screen := device.Screen.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !image.Pt(x, y).In(screen) {
				img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 30, B: 30, A: 255})
			}
		}
	}
	return img
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

var errUploadDown = errors.New("storage unavailable")
