package services

import (
	"context"
	"time"

	"github.com/yungbote/drawhub-backend/internal/catalog/filetype"
	"github.com/yungbote/drawhub-backend/internal/catalog/thumbnail"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
)

// Upload is one received file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// blobs couples the store with the cleanup and preview conventions every
// writer of drawing content follows.
type blobs struct {
	log   *logger.Logger
	store objectstore.BlobStore
	thumb thumbnail.Generator
}

// deleteAll removes urls and only logs failures.
func (b *blobs) deleteAll(ctx context.Context, urls ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := b.store.Delete(ctx, u); err != nil {
			b.log.Warn("Blob cleanup failed", "url", u, "error", err)
		}
	}
}

// thumbnail renders and stores a preview next to key. Failures yield nil.
func (b *blobs) thumbnail(ctx context.Context, key string, data []byte, contentType, filename, caption string) *string {
	if b.thumb == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	png, err := b.thumb.Generate(ctx, thumbnail.Request{
		Data:        data,
		ContentType: contentType,
		Filename:    filename,
		Caption:     caption,
	})
	if err != nil {
		b.log.Warn("Thumbnail generation failed", "key", key, "kind", filetype.Classify(contentType, filename), "error", err)
		return nil
	}
	url, err := b.store.Put(ctx, png, objectstore.ThumbnailKey(key), "image/png")
	if err != nil {
		b.log.Warn("Thumbnail upload failed", "key", key, "error", err)
		return nil
	}
	return &url
}

func unsupportedFile(up Upload) bool {
	return !filetype.Accepted(up.ContentType, up.Filename)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
