package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/config"
	mediaTypes "github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

// Service wraps the object store. One instance is constructed at process
// start and shared by all request handlers; the underlying client is safe
// for concurrent use.
type Service struct {
	client        *minio.Core
	bucketName    string
	region        string
	publicBaseURL string
	useSSL        bool
}

// NewService creates a new object store service instance
func NewService(cfg *config.Config) (*Service, error) {
	// Initialize MinIO client
	client, err := minio.NewCore(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKeyID, cfg.MinIO.SecretAccessKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	service := &Service{
		client:        client,
		bucketName:    cfg.MinIO.BucketName,
		region:        cfg.MinIO.Region,
		publicBaseURL: strings.TrimRight(cfg.MinIO.PublicBaseURL, "/"),
		useSSL:        cfg.MinIO.UseSSL,
	}

	// Ensure bucket exists
	if err := service.ensureBucket(); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return service, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (s *Service) ensureBucket() error {
	ctx := context.Background()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// CreateMultipartSession opens a multipart upload session for the given key
// and returns the store's opaque session ID.
func (s *Service) CreateMultipartSession(ctx context.Context, key, contentType string) (string, error) {
	uploadID, err := s.client.NewMultipartUpload(ctx, s.bucketName, key, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create multipart session: %w", err)
	}

	return uploadID, nil
}

// PresignPartURL produces a time-limited URL authorizing a single PUT of one
// part into the given session. The session is not checked for liveness; a
// stale uploadID surfaces only when the store rejects the eventual PUT.
func (s *Service) PresignPartURL(ctx context.Context, key, uploadID string, partNumber int, ttl time.Duration) (string, error) {
	params := make(url.Values)
	params.Set("uploadId", uploadID)
	params.Set("partNumber", strconv.Itoa(partNumber))

	presignedURL, err := s.client.Presign(ctx, http.MethodPut, s.bucketName, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign part URL: %w", err)
	}

	return presignedURL.String(), nil
}

// CompleteMultipartSession finalizes a multipart upload. Parts must already
// be in ascending part-number order; gaps are the store's concern.
func (s *Service) CompleteMultipartSession(ctx context.Context, key, uploadID string, parts []mediaTypes.Part) error {
	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: p.PartNumber,
			ETag:       p.ETag,
		})
	}

	_, err := s.client.CompleteMultipartUpload(ctx, s.bucketName, key, uploadID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to complete multipart session: %w", err)
	}

	return nil
}

// PutObject streams a single object to the store and returns its public
// location. Pass size -1 when the length is unknown.
func (s *Service) PutObject(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.Client.PutObject(ctx, s.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL for accessing an object. With a configured
// public base (CDN or reverse proxy) the URL is built from it, otherwise it
// is derived from the store endpoint. Deterministic in (bucket, region, key).
func (s *Service) ObjectURL(key string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucketName, key)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}

	endpoint := strings.TrimPrefix(s.client.EndpointURL().String(), scheme+"://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, s.bucketName, key)
}

// ListKeys returns every object key in the bucket, sorted for stable output.
func (s *Service) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string

	objectsCh := s.client.Client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Recursive: true,
	})

	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}

	sort.Strings(keys)
	return keys, nil
}
