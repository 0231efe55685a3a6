package storage

import (
	"errors"
	"time"

	"github.com/phambaophuc/device-mockup/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
)

// ErrNotConfigured is returned by blob operations when no bucket is configured.
var ErrNotConfigured = errors.New("blob storage not configured")

type StorageService struct {
	sbClient      *storage_go.Client
	redisClient   *redis.Client
	bucket        string
	cacheDuration time.Duration
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	var sbClient *storage_go.Client
	if cfg.Supabase.URL != "" && cfg.Supabase.BUCKET != "" {
		sbClient = NewSupabaseClient(cfg)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return NewStorageServiceFromClients(sbClient, redisClient, cfg.Supabase.BUCKET, cfg.Redis.CacheDuration), nil
}

// NewStorageServiceFromClients wires already constructed clients. A nil
// Supabase client disables blob persistence.
func NewStorageServiceFromClients(sbClient *storage_go.Client, redisClient *redis.Client, bucket string, cacheDuration time.Duration) *StorageService {
	return &StorageService{
		sbClient:      sbClient,
		redisClient:   redisClient,
		bucket:        bucket,
		cacheDuration: cacheDuration,
	}
}

// NewSupabaseClient creates a storage API client for the configured project.
func NewSupabaseClient(cfg *config.Config) *storage_go.Client {
	return storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
}

// BlobEnabled reports whether uploads can be persisted.
func (s *StorageService) BlobEnabled() bool {
	return s.sbClient != nil
}

func (s *StorageService) Close() error {
	return s.redisClient.Close()
}
