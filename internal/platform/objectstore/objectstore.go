package objectstore

import (
	"context"

	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

func New(ctx context.Context, log *logger.Logger, cfg Config) (BlobStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	storeLog := log.With("service", "BlobStore", "mode", cfg.Mode, "bucket", cfg.Bucket)

	var (
		store BlobStore
		err   error
	)
	switch cfg.Mode {
	case ModeGCS, ModeGCSEmulator:
		store, err = newGCSStore(ctx, storeLog, cfg)
	default:
		store, err = newS3Store(storeLog, cfg)
	}
	if err != nil {
		return nil, err
	}
	storeLog.Info("Object storage initialized", "public_base_url", cfg.PublicBaseURL)
	return store, nil
}
