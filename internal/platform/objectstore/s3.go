package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/drawhub-backend/internal/platform/logger"
)

type s3Store struct {
	log       *logger.Logger
	client    *minio.Client
	bucket    string
	region    string
	publicURL string
}

func newS3Store(log *logger.Logger, cfg Config) (*s3Store, error) {
	endpoint := strings.TrimSpace(cfg.S3.Endpoint)
	secure := cfg.S3.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = strings.TrimPrefix(endpoint, "http://")
	}
	endpoint = strings.TrimRight(endpoint, "/")

	region := cfg.S3.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure:       secure,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		base = scheme + "://" + endpoint
	}

	return &s3Store{
		log:       log,
		client:    client,
		bucket:    cfg.Bucket,
		region:    region,
		publicURL: strings.TrimRight(base, "/"),
	}, nil
}

func (s *s3Store) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return publicURL(s.publicURL, s.bucket, key), nil
}

func (s *s3Store) Delete(ctx context.Context, fileURL string) error {
	key, ok := KeyFromURL(fileURL, s.bucket)
	if !ok {
		return fmt.Errorf("cannot derive object key from %q", fileURL)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

func (s *s3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	s.log.Info("Bucket not found, creating", "bucket", s.bucket)
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return fmt.Errorf("set public policy on %q: %w", s.bucket, err)
	}
	s.log.Info("Bucket policy set to public read", "bucket", s.bucket)
	return nil
}

func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Effect":    "Allow",
			"Principal": "*",
			"Action":    []string{"s3:GetObject"},
			"Resource":  []string{"arn:aws:s3:::" + bucket + "/*"},
		}},
	}
	raw, _ := json.Marshal(policy)
	return string(raw)
}
