package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJob(t *testing.T) {
	f := newFixture(t)
	r := f.router(t)

	w := postJSON(r, "/mockups/jobs", map[string]string{"image": b64(solidPNG(t, 10, 20, red)), "model": "mini"})

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var job models.MockupJob
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &job))

	assert.Equal(t, models.StatusPending, job.Status)
	assert.Equal(t, "mini", job.Model)
	assert.Equal(t, "Sage", job.Color)
	assert.True(t, strings.HasPrefix(job.ScreenshotKey, "uploads/screenshot_"))
	assert.Equal(t, "https://cdn.test/"+job.ScreenshotKey, job.UploadURL)
	assert.Equal(t, "/api/v1/mockups/jobs/"+job.ID, w.Header().Get("Location"))

	require.Len(t, f.queue.published, 1)
	assert.Equal(t, job.ID, f.queue.published[0].ID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mockups/jobs/"+job.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.MockupJob
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &stored))
	assert.Equal(t, job.ID, stored.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestCreateJob_ValidatesBeforeQueueing(t *testing.T) {
	f := newFixture(t)
	r := f.router(t)

	w := postJSON(r, "/mockups/jobs", map[string]string{"image": b64(solidPNG(t, 10, 20, red)), "model": "iphone-99"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_model", decodeResponse(t, w).Code)
	assert.Empty(t, f.queue.published)
	assert.Zero(t, f.storage.uploadCount())
}

func TestCreateJob_PublishFailureMarksJobFailed(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("channel closed")
	r := f.router(t)

	w := postJSON(r, "/mockups/jobs", map[string]string{"image": b64(solidPNG(t, 10, 20, red))})

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Len(t, f.storage.jobs, 1)
	for _, job := range f.storage.jobs {
		assert.Equal(t, models.StatusFailed, job.Status)
		assert.Equal(t, []string{job.ScreenshotKey}, f.storage.deleted)
	}
}

func TestCreateJob_SaveFailureRemovesScreenshot(t *testing.T) {
	f := newFixture(t)
	f.storage.saveErr = errors.New("redis down")
	r := f.router(t)

	w := postJSON(r, "/mockups/jobs", map[string]string{"image": b64(solidPNG(t, 10, 20, red))})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, f.storage.uploads, 1)
	assert.Equal(t, f.storage.uploads, f.storage.deleted)
	assert.Empty(t, f.queue.published)
}

func TestCreateJob_RejectsUnusableScreenshot(t *testing.T) {
	for name, tc := range map[string]struct {
		image  []byte
		status int
	}{
		"undecodable":     {image: []byte("not an image"), status: http.StatusInternalServerError},
		"too many pixels": {image: nil, status: http.StatusRequestEntityTooLarge},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.maxPixels = 100
			r := f.router(t)

			img := tc.image
			if img == nil {
				img = solidPNG(t, 20, 20, red)
			}
			w := postJSON(r, "/mockups/jobs", map[string]string{"image": b64(img)})

			require.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Zero(t, f.storage.uploadCount())
			assert.Empty(t, f.queue.published)
		})
	}
}

func TestCreateJob_Unavailable(t *testing.T) {
	for name, mutate := range map[string]func(*fixture){
		"no queue":     func(f *fixture) { f.queue = nil },
		"no blobstore": func(f *fixture) { f.storage.blob = false },
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			mutate(f)
			r := f.router(t)

			w := postJSON(r, "/mockups/jobs", map[string]string{"image": b64(solidPNG(t, 10, 20, red))})

			require.Equal(t, http.StatusServiceUnavailable, w.Code)
			assert.Equal(t, "queue_unavailable", decodeResponse(t, w).Code)
		})
	}
}

func TestGetJob_Errors(t *testing.T) {
	f := newFixture(t)
	r := f.router(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mockups/jobs/"+uuid.New().String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "job_not_found", decodeResponse(t, w).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mockups/jobs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
