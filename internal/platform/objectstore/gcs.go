package objectstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/iam"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

const gcsPublicHost = "https://storage.googleapis.com"

type gcsStore struct {
	log       *logger.Logger
	client    *storage.Client
	bucket    string
	projectID string
	publicURL string
}

func newGCSStore(ctx context.Context, log *logger.Logger, cfg Config) (*gcsStore, error) {
	var opts []option.ClientOption
	base := cfg.PublicBaseURL
	switch cfg.Mode {
	case ModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.GCS.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		opts = append(opts, option.WithoutAuthentication())
		if base == "" {
			base = endpoint
		}
	default:
		opts = append(clientOptionsFromEnv(), option.WithScopes(storage.ScopeFullControl))
		if base == "" {
			base = gcsPublicHost
		}
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &gcsStore{
		log:       log,
		client:    client,
		bucket:    cfg.Bucket,
		projectID: cfg.GCS.ProjectID,
		publicURL: strings.TrimRight(base, "/"),
	}, nil
}

func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (s *gcsStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer %q: %w", key, err)
	}
	return publicURL(s.publicURL, s.bucket, key), nil
}

func (s *gcsStore) Delete(ctx context.Context, fileURL string) error {
	key, ok := KeyFromURL(fileURL, s.bucket)
	if !ok {
		return fmt.Errorf("cannot derive object key from %q", fileURL)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete gcs object %q in bucket %q: %w", key, s.bucket, err)
	}
	return nil
}

func (s *gcsStore) EnsureBucket(ctx context.Context) error {
	bkt := s.client.Bucket(s.bucket)
	_, err := bkt.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	s.log.Info("Bucket not found, creating", "bucket", s.bucket)
	if err := bkt.Create(ctx, s.projectID, nil); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	policy, err := bkt.IAM().Policy(ctx)
	if err != nil {
		return fmt.Errorf("read bucket policy %q: %w", s.bucket, err)
	}
	policy.Add(iam.AllUsers, "roles/storage.objectViewer")
	if err := bkt.IAM().SetPolicy(ctx, policy); err != nil {
		return fmt.Errorf("set public policy on %q: %w", s.bucket, err)
	}
	s.log.Info("Bucket policy set to public read", "bucket", s.bucket)
	return nil
}

func (s *gcsStore) Close() error { return s.client.Close() }
