package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

// fakeStore is an in-memory object store for tests.
type fakeStore struct {
	sessions       map[string]string // uploadID -> key
	objects        map[string][]byte
	completedParts map[string][]media.Part // key -> parts passed to completion
	nextUploadID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:       make(map[string]string),
		objects:        make(map[string][]byte),
		completedParts: make(map[string][]media.Part),
	}
}

func (f *fakeStore) CreateMultipartSession(_ context.Context, key, _ string) (string, error) {
	f.nextUploadID++
	uploadID := fmt.Sprintf("upload-%d", f.nextUploadID)
	f.sessions[uploadID] = key
	return uploadID, nil
}

func (f *fakeStore) PresignPartURL(_ context.Context, key, uploadID string, partNumber int, ttl time.Duration) (string, error) {
	return fmt.Sprintf("http://store.local/%s?uploadId=%s&partNumber=%d&expires=%d",
		key, uploadID, partNumber, int(ttl.Seconds())), nil
}

func (f *fakeStore) CompleteMultipartSession(_ context.Context, key, uploadID string, parts []media.Part) error {
	if _, ok := f.sessions[uploadID]; !ok {
		return errors.New("no such upload session")
	}
	f.completedParts[key] = append([]media.Part{}, parts...)
	f.objects[key] = []byte("assembled")
	delete(f.sessions, uploadID)
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, key, _ string, r io.Reader, _ int64) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	f.objects[key] = buf.Bytes()
	return f.ObjectURL(key), nil
}

func (f *fakeStore) ObjectURL(key string) string {
	return "http://store.local/gallery/" + key
}

func (f *fakeStore) ListKeys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

// fakeCatalog is an in-memory media catalog. failOnInsert triggers an error
// on the nth insert (1-based), 0 disables failures.
type fakeCatalog struct {
	images       []media.Record
	videos       []media.Record
	inserts      int
	failOnInsert int
}

func (f *fakeCatalog) Insert(_ context.Context, record media.Record, kind media.Kind) error {
	f.inserts++
	if f.failOnInsert != 0 && f.inserts == f.failOnInsert {
		return errors.New("catalog unavailable")
	}
	switch kind {
	case media.KindImage:
		f.images = append(f.images, record)
	case media.KindVideo:
		f.videos = append(f.videos, record)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}

func (f *fakeCatalog) List(_ context.Context) ([]media.Record, []media.Record, error) {
	return f.images, f.videos, nil
}

func (f *fakeCatalog) Keys(_ context.Context) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for _, r := range f.images {
		keys[r.Key] = struct{}{}
	}
	for _, r := range f.videos {
		keys[r.Key] = struct{}{}
	}
	return keys, nil
}

func newTestService() (*Service, *fakeStore, *fakeCatalog) {
	store := newFakeStore()
	catalog := &fakeCatalog{}
	return NewService(store, catalog, nil, time.Hour), store, catalog
}

func TestGenerateKeyFormat(t *testing.T) {
	now := time.Now()
	key := generateKey(now, "cat.png")

	segments := strings.SplitN(key, "-", 3)
	if len(segments) != 3 {
		t.Fatalf("Expected key with three segments, got %q", key)
	}

	millis, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil {
		t.Fatalf("Expected integer timestamp prefix, got %q", segments[0])
	}
	if millis != now.UnixMilli() {
		t.Fatalf("Expected timestamp %d, got %d", now.UnixMilli(), millis)
	}

	if !strings.HasSuffix(key, "-cat.png") {
		t.Fatalf("Expected key to end with the original filename, got %q", key)
	}
}

func TestGenerateKeyDiffersAcrossTimestamps(t *testing.T) {
	base := time.Now()
	first := generateKey(base, "cat.png")
	second := generateKey(base.Add(time.Millisecond), "cat.png")

	if first == second {
		t.Fatalf("Expected different keys for different timestamps, got %q twice", first)
	}
}

func TestGenerateKeyDiffersWithinSameMillisecond(t *testing.T) {
	now := time.Now()
	first := generateKey(now, "cat.png")
	second := generateKey(now, "cat.png")

	if first == second {
		t.Fatalf("Expected different keys for concurrent same-name uploads, got %q twice", first)
	}
}

func TestStartOpensSession(t *testing.T) {
	svc, store, _ := newTestService()

	uploadID, key, err := svc.Start(context.Background(), "cat.png", "image/png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if uploadID == "" {
		t.Fatal("Expected a non-empty upload ID")
	}
	if store.sessions[uploadID] != key {
		t.Fatalf("Expected session %q scoped to key %q", uploadID, key)
	}
}

func TestPartURLCarriesHourTTL(t *testing.T) {
	svc, _, _ := newTestService()

	uploadID, key, err := svc.Start(context.Background(), "cat.png", "image/png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	url, err := svc.PartURL(context.Background(), key, uploadID, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(url, "expires=3600") {
		t.Fatalf("Expected a URL valid for 3600s, got %q", url)
	}
	if !strings.Contains(url, "partNumber=1") {
		t.Fatalf("Expected the URL to authorize part 1, got %q", url)
	}
}

func TestCompleteSortsParts(t *testing.T) {
	svc, store, _ := newTestService()

	uploadID, key, err := svc.Start(context.Background(), "cat.png", "image/png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	parts := []media.Part{
		{PartNumber: 3, ETag: "c"},
		{PartNumber: 1, ETag: "a"},
		{PartNumber: 2, ETag: "b"},
	}

	if _, err := svc.Complete(context.Background(), key, uploadID, parts, "cat.png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	received := store.completedParts[key]
	if len(received) != 3 {
		t.Fatalf("Expected 3 parts, got %d", len(received))
	}
	for i, p := range received {
		if p.PartNumber != i+1 {
			t.Fatalf("Expected part %d at position %d, got %d", i+1, i, p.PartNumber)
		}
	}
}

func TestCompleteCommitsImage(t *testing.T) {
	svc, store, catalog := newTestService()
	ctx := context.Background()

	uploadID, key, err := svc.Start(ctx, "cat.png", "image/png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasSuffix(key, "-cat.png") {
		t.Fatalf("Expected key ending in -cat.png, got %q", key)
	}

	status, err := svc.Complete(ctx, key, uploadID, []media.Part{{PartNumber: 1, ETag: "abc"}}, "cat.png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status != StatusCommitted {
		t.Fatalf("Expected committed status, got %q", status)
	}

	if _, ok := store.objects[key]; !ok {
		t.Fatal("Expected object finalized in the store")
	}
	if len(catalog.images) != 1 {
		t.Fatalf("Expected one image record, got %d", len(catalog.images))
	}

	record := catalog.images[0]
	if record.Key != key {
		t.Fatalf("Expected record key %q, got %q", key, record.Key)
	}
	if record.URL != store.ObjectURL(key) {
		t.Fatalf("Expected derived URL %q, got %q", store.ObjectURL(key), record.URL)
	}
	if record.OriginalName != "cat.png" {
		t.Fatalf("Expected original name cat.png, got %q", record.OriginalName)
	}
}

func TestCompleteUnrecognizedExtensionIsUncataloged(t *testing.T) {
	svc, store, catalog := newTestService()
	ctx := context.Background()

	uploadID, key, err := svc.Start(ctx, "notes.txt", "text/plain")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	status, err := svc.Complete(ctx, key, uploadID, []media.Part{{PartNumber: 1, ETag: "abc"}}, "notes.txt")
	if err != nil {
		t.Fatalf("Expected success despite unrecognized extension, got %v", err)
	}
	if status != StatusUncataloged {
		t.Fatalf("Expected uncataloged status, got %q", status)
	}

	if _, ok := store.objects[key]; !ok {
		t.Fatal("Expected object finalized in the store")
	}
	if len(catalog.images) != 0 || len(catalog.videos) != 0 {
		t.Fatal("Expected no catalog record for unrecognized extension")
	}
}

func TestCommitBatchAbortsOnInsertFailure(t *testing.T) {
	store := newFakeStore()
	catalog := &fakeCatalog{failOnInsert: 2}
	svc := NewService(store, catalog, nil, time.Hour)
	ctx := context.Background()

	var stored []StoredFile
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		f, err := svc.StoreFile(ctx, name, "image/jpeg", strings.NewReader("data"), -1)
		if err != nil {
			t.Fatalf("Unexpected error storing %s: %v", name, err)
		}
		stored = append(stored, f)
	}

	err := svc.CommitBatch(ctx, stored)
	if err == nil {
		t.Fatal("Expected an error from the failed insert")
	}

	// All three objects stay in the store, no rollback
	if len(store.objects) != 3 {
		t.Fatalf("Expected 3 stored objects, got %d", len(store.objects))
	}
	// The insert before the failure stands, the one after was never attempted
	if len(catalog.images) != 1 {
		t.Fatalf("Expected 1 cataloged record, got %d", len(catalog.images))
	}
	if catalog.inserts != 2 {
		t.Fatalf("Expected catalog writes to stop after the failure, got %d inserts", catalog.inserts)
	}
}

func TestReconcileOrphans(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Committed upload: present in store and catalog
	uploadID, key, err := svc.Start(ctx, "cat.png", "image/png")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := svc.Complete(ctx, key, uploadID, []media.Part{{PartNumber: 1, ETag: "a"}}, "cat.png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Uncataloged upload: store only
	uploadID, orphanKey, err := svc.Start(ctx, "notes.txt", "text/plain")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := svc.Complete(ctx, orphanKey, uploadID, []media.Part{{PartNumber: 1, ETag: "b"}}, "notes.txt"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	orphans, err := svc.ReconcileOrphans(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("Expected exactly one orphan, got %d", len(orphans))
	}
	if orphans[0] != orphanKey {
		t.Fatalf("Expected orphan %q, got %q", orphanKey, orphans[0])
	}
}
