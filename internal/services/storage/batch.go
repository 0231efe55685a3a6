package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/phambaophuc/device-mockup/internal/models"
	"golang.org/x/sync/errgroup"
)

const uploadWorkers = 5

// UploadMultiple uploads files concurrently. The returned slice is index
// aligned with files; failed uploads leave an empty URL and are summarized
// in the error.
func (s *StorageService) UploadMultiple(ctx context.Context, files []models.UploadFile) ([]string, error) {
	urls := make([]string, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadWorkers)

	for i := range files {
		g.Go(func() error {
			urls[i], errs[i] = s.Upload(gctx, files[i].Data, files[i].Filename, files[i].ContentType)
			return nil
		})
	}
	g.Wait()

	var failedUploads []string
	for i, err := range errs {
		if err != nil {
			failedUploads = append(failedUploads, fmt.Sprintf("file %d: %v", i, err))
		}
	}

	if len(failedUploads) > 0 {
		return urls, fmt.Errorf("failed to upload %d files: %s",
			len(failedUploads), strings.Join(failedUploads, "; "))
	}

	return urls, nil
}
