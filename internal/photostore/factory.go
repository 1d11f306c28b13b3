package photostore

import (
	"context"
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/config"
)

// Open selects a Store implementation from configuration.
func Open(ctx context.Context, cfg config.PhotoConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		store := NewFSStore(cfg.Root)
		if err := store.EnsureDirectory(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown photo driver %q", cfg.Driver)
	}
}
