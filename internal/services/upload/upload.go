package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/storage"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

// ObjectStore is the blob-store surface the orchestrator depends on. The
// MinIO service implements it; tests substitute a fake.
type ObjectStore interface {
	CreateMultipartSession(ctx context.Context, key, contentType string) (string, error)
	PresignPartURL(ctx context.Context, key, uploadID string, partNumber int, ttl time.Duration) (string, error)
	CompleteMultipartSession(ctx context.Context, key, uploadID string, parts []media.Part) error
	PutObject(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error)
	ObjectURL(key string) string
	ListKeys(ctx context.Context) ([]string, error)
}

// Publisher notifies connected gallery viewers of committed uploads.
type Publisher interface {
	PublishMediaCommitted(record media.Record, kind media.Kind)
}

// CommitStatus distinguishes a cataloged upload from one whose extension was
// unrecognized. Both are reported as success to the client; the caller can
// still tell them apart.
type CommitStatus string

const (
	StatusCommitted   CommitStatus = "committed"
	StatusUncataloged CommitStatus = "uncataloged"
)

// StoredFile is one file of a batch already durable in the object store but
// not yet written to the catalog.
type StoredFile struct {
	Key          string
	Location     string
	OriginalName string
}

// Service drives the upload protocol. It holds no per-upload state: all
// continuation data for the multipart path travels with the client.
type Service struct {
	store      ObjectStore
	catalog    storage.Catalog
	publisher  Publisher
	presignTTL time.Duration
}

// NewService creates an upload orchestrator. publisher may be nil when no
// real-time notifications are wanted.
func NewService(store ObjectStore, catalog storage.Catalog, publisher Publisher, presignTTL time.Duration) *Service {
	return &Service{
		store:      store,
		catalog:    catalog,
		publisher:  publisher,
		presignTTL: presignTTL,
	}
}

// generateKey builds an object key prefixed with the millisecond timestamp
// plus a short random token, so two uploads of the same filename in the same
// millisecond cannot collide.
func generateKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], filename)
}

// Start opens a multipart session for the file and returns the session ID
// and the generated object key. The client echoes both back on every
// subsequent call.
func (s *Service) Start(ctx context.Context, filename, contentType string) (uploadID, key string, err error) {
	key = generateKey(time.Now(), filename)

	uploadID, err = s.store.CreateMultipartSession(ctx, key, contentType)
	if err != nil {
		return "", "", fmt.Errorf("failed to start upload: %w", err)
	}

	return uploadID, key, nil
}

// PartURL returns a time-limited URL authorizing the PUT of one part.
// Neither the session's liveness nor part-number contiguity is validated
// here; the store rejects bad requests itself.
func (s *Service) PartURL(ctx context.Context, key, uploadID string, partNumber int) (string, error) {
	url, err := s.store.PresignPartURL(ctx, key, uploadID, partNumber, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign part upload: %w", err)
	}

	return url, nil
}

// Complete finalizes the multipart session and, once the store confirms
// durability, commits a record to the catalog. Parts may arrive in any
// order; the store's completion contract requires ascending part numbers.
func (s *Service) Complete(ctx context.Context, key, uploadID string, parts []media.Part, originalName string) (CommitStatus, error) {
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].PartNumber < parts[j].PartNumber
	})

	if err := s.store.CompleteMultipartSession(ctx, key, uploadID, parts); err != nil {
		return "", fmt.Errorf("failed to complete upload: %w", err)
	}

	return s.commit(ctx, key, originalName)
}

// commit classifies the finished object and inserts a catalog record when
// the extension is recognized. Unrecognized files stay in the store without
// a record; the reconcile sweep can find them later.
func (s *Service) commit(ctx context.Context, key, originalName string) (CommitStatus, error) {
	kind, ok := Classify(originalName)
	if !ok {
		slog.Warn("Uploaded file left uncataloged, unrecognized extension",
			slog.String("key", key),
			slog.String("original_name", originalName))
		return StatusUncataloged, nil
	}

	record := media.Record{
		Key:          key,
		URL:          s.store.ObjectURL(key),
		OriginalName: originalName,
		UploadDate:   time.Now().UTC(),
	}

	if err := s.catalog.Insert(ctx, record, kind); err != nil {
		return "", fmt.Errorf("failed to save media record: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishMediaCommitted(record, kind)
	}

	return StatusCommitted, nil
}

// StoreFile streams one file of a single-shot batch to the object store and
// returns its handle for the later catalog pass.
func (s *Service) StoreFile(ctx context.Context, originalName, contentType string, r io.Reader, size int64) (StoredFile, error) {
	key := generateKey(time.Now(), originalName)

	location, err := s.store.PutObject(ctx, key, contentType, r, size)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to store %q: %w", originalName, err)
	}

	return StoredFile{
		Key:          key,
		Location:     location,
		OriginalName: originalName,
	}, nil
}

// CommitBatch writes catalog records for already-stored files, sequentially.
// The first failed insert aborts the remaining writes; stored objects are
// never rolled back, the store/catalog divergence is left to reconciliation.
func (s *Service) CommitBatch(ctx context.Context, files []StoredFile) error {
	for _, f := range files {
		if _, err := s.commit(ctx, f.Key, f.OriginalName); err != nil {
			return err
		}
	}

	return nil
}

// List returns the gallery contents, images and videos each newest first.
func (s *Service) List(ctx context.Context) ([]media.Record, []media.Record, error) {
	return s.catalog.List(ctx)
}

// ReconcileOrphans lists object-store keys that have no catalog record:
// abandoned multipart leftovers, unrecognized extensions, and batch uploads
// whose catalog write failed.
func (s *Service) ReconcileOrphans(ctx context.Context) ([]string, error) {
	storeKeys, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list store keys: %w", err)
	}

	catalogKeys, err := s.catalog.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog keys: %w", err)
	}

	orphans := []string{}
	for _, key := range storeKeys {
		if _, ok := catalogKeys[key]; !ok {
			orphans = append(orphans, key)
		}
	}

	return orphans, nil
}
