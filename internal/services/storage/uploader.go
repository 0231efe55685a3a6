package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phambaophuc/device-mockup/pkg/utils"
	storage_go "github.com/supabase-community/storage-go"
)

// Upload stores data under a timestamp-derived key built from filename and
// returns its public URL.
func (s *StorageService) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	return s.UploadObject(ctx, utils.GenerateStorageKey("mockups", filename), data, contentType)
}

// UploadObject stores data under key and returns its public URL.
func (s *StorageService) UploadObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.sbClient == nil {
		return "", ErrNotConfigured
	}

	upsert := false
	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}

// Delete removes file from Supabase Storage
func (s *StorageService) Delete(ctx context.Context, path string) error {
	if s.sbClient == nil {
		return ErrNotConfigured
	}
	_, err := s.sbClient.RemoveFile(s.bucket, []string{path})
	return err
}
