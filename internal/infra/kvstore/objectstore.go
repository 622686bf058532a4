package kvstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/kai-insight/internal/domain/storage"
)

// ObjectStoreConfig addresses an S3-compatible bucket (R2, MinIO, S3).
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// ObjectStore keeps each entry as one JSON object in a bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewObjectStore constructs the adapter; the bucket is created on first write when missing.
func NewObjectStore(cfg ObjectStoreConfig, logger *slog.Logger) (*ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	useSSL := strings.HasPrefix(strings.ToLower(cfg.Endpoint), "https")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	return &ObjectStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With("component", "kvstore.objectstore"),
	}, nil
}

// Ping checks the bucket is reachable.
func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *ObjectStore) Get(ctx context.Context, key string) (string, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return "", false, err
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		if isMissing(err) {
			return "", false, nil
		}
		return "", false, err
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *ObjectStore) Set(ctx context.Context, key, value string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.objectName(key), bytes.NewReader([]byte(value)), int64(len(value)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	return err
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.objectName(key), minio.RemoveObjectOptions{})
	if err != nil && isMissing(err) {
		return nil
	}
	return err
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	s.logger.Info("object store bucket created", "bucket", s.bucket)
	return nil
}

func (s *ObjectStore) objectName(key string) string {
	name := strings.ReplaceAll(key, ":", "/") + ".json"
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func isMissing(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

// sanitizeEndpoint strips scheme and path; minio.New wants host[:port].
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		return host
	}
	return raw
}

var _ storage.KeyValue = (*ObjectStore)(nil)
