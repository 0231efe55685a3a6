package assets

import (
	"context"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore reads assets from a Supabase storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
	prefix string
}

func NewSupabaseStore(client *storage_go.Client, bucket, prefix string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *SupabaseStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Fetch treats every download failure as a missing asset; the storage API
// does not distinguish a missing object from other errors.
func (s *SupabaseStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, s.key(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	return data, nil
}

func (s *SupabaseStore) Exists(ctx context.Context, name string) bool {
	_, err := s.Fetch(ctx, name)
	return err == nil
}
