package app

import (
	"context"
	"fmt"

	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
	"github.com/yungbote/drawhub-backend/internal/realtime/bus"
)

type Clients struct {
	Blobs objectstore.BlobStore
	// Bus is nil when REDIS_ADDR is unset.
	Bus bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	blobs, err := objectstore.New(ctx, log, cfg.Storage)
	if err != nil {
		return Clients{}, fmt.Errorf("init object storage: %w", err)
	}
	// The bucket may be provisioned out of band; uploads will surface real failures.
	if err := blobs.EnsureBucket(ctx); err != nil {
		log.Warn("Ensure bucket failed (continuing)", "bucket", cfg.Storage.Bucket, "error", err)
	}

	var b bus.Bus
	if cfg.Redis.Addr != "" {
		b, err = bus.NewRedisBus(ctx, log, cfg.Redis)
		if err != nil {
			closeBlobs(blobs)
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
	}

	return Clients{Blobs: blobs, Bus: b}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	closeBlobs(c.Blobs)
}

func closeBlobs(s objectstore.BlobStore) {
	if closer, ok := s.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
