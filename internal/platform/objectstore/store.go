// Package objectstore stores drawing payloads in a public-read bucket and
// hands back the URL clients fetch them from.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type BlobStore interface {
	// Put stores data under key and returns its public URL.
	Put(ctx context.Context, data []byte, key, contentType string) (string, error)
	// Delete removes the object a URL returned by Put points at.
	Delete(ctx context.Context, fileURL string) error
	// EnsureBucket creates the bucket when missing and makes it publicly readable.
	EnsureBucket(ctx context.Context) error
}

type Mode string

const (
	ModeS3          Mode = "s3"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

func IsSupportedMode(mode Mode) bool {
	switch mode {
	case ModeS3, ModeGCS, ModeGCSEmulator:
		return true
	default:
		return false
	}
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

type GCSConfig struct {
	ProjectID    string
	EmulatorHost string
}

type Config struct {
	Mode   Mode
	Bucket string
	// PublicBaseURL prefixes returned URLs as <base>/<bucket>/<key>.
	PublicBaseURL string

	S3  S3Config
	GCS GCSConfig
}

type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("object storage: missing %s", e.Field)
	}
	return fmt.Sprintf("object storage: invalid %s=%q", e.Field, e.Value)
}

func (c Config) Validate() error {
	if !IsSupportedMode(c.Mode) {
		return &ConfigError{Field: "OBJECT_STORAGE_MODE", Value: string(c.Mode)}
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return &ConfigError{Field: "bucket"}
	}
	if c.PublicBaseURL != "" {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Field: "OBJECT_STORAGE_PUBLIC_BASE_URL", Value: c.PublicBaseURL}
		}
	}
	switch c.Mode {
	case ModeS3:
		if strings.TrimSpace(c.S3.Endpoint) == "" {
			return &ConfigError{Field: "S3_ENDPOINT"}
		}
	case ModeGCSEmulator:
		u, err := url.Parse(c.GCS.EmulatorHost)
		if c.GCS.EmulatorHost == "" || err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Field: "STORAGE_EMULATOR_HOST", Value: c.GCS.EmulatorHost}
		}
	}
	return nil
}

// publicURL joins base, bucket and key the way KeyFromURL expects to undo.
func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

// KeyFromURL extracts the object key that follows "/<bucket>/" in fileURL.
func KeyFromURL(fileURL, bucket string) (string, bool) {
	marker := "/" + bucket + "/"
	idx := strings.LastIndex(fileURL, marker)
	if idx < 0 {
		return "", false
	}
	key := fileURL[idx+len(marker):]
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	if key == "" {
		return "", false
	}
	return key, true
}
