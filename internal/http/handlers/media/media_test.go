package media

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uploadService "github.com/GnandeepVenigalla/gd25th-backend/internal/services/upload"
	mediaTypes "github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

type stubStore struct{}

func (stubStore) CreateMultipartSession(context.Context, string, string) (string, error) {
	return "", nil
}
func (stubStore) PresignPartURL(context.Context, string, string, int, time.Duration) (string, error) {
	return "", nil
}
func (stubStore) CompleteMultipartSession(context.Context, string, string, []mediaTypes.Part) error {
	return nil
}
func (stubStore) PutObject(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", nil
}
func (stubStore) ObjectURL(key string) string { return "http://store.local/gallery/" + key }
func (stubStore) ListKeys(context.Context) ([]string, error) {
	return []string{"k1", "k2", "k3"}, nil
}

type stubCatalog struct {
	images []mediaTypes.Record
	videos []mediaTypes.Record
}

func (s *stubCatalog) Insert(context.Context, mediaTypes.Record, mediaTypes.Kind) error {
	return nil
}

func (s *stubCatalog) List(context.Context) ([]mediaTypes.Record, []mediaTypes.Record, error) {
	return s.images, s.videos, nil
}

func (s *stubCatalog) Keys(context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{"k2": {}}, nil
}

func TestListReturnsGallery(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	catalog := &stubCatalog{
		images: []mediaTypes.Record{
			{Key: "img-new", URL: "http://store.local/gallery/img-new", UploadDate: now},
			{Key: "img-old", URL: "http://store.local/gallery/img-old", UploadDate: now.Add(-time.Hour)},
		},
		videos: []mediaTypes.Record{
			{Key: "vid", URL: "http://store.local/gallery/vid", UploadDate: now},
		},
	}
	uploads := uploadService.NewService(stubStore{}, catalog, nil, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/media", nil)
	rec := httptest.NewRecorder()

	List(uploads)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool     `json:"success"`
		Data    ListData `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatal("Expected success=true")
	}
	if len(resp.Data.Images) != 2 || len(resp.Data.Videos) != 1 {
		t.Fatalf("Expected 2 images and 1 video, got %d/%d",
			len(resp.Data.Images), len(resp.Data.Videos))
	}
	if resp.Data.Images[0].Key != "img-new" {
		t.Fatalf("Expected newest image first, got %q", resp.Data.Images[0].Key)
	}
}

func TestOrphansReportsUncatalogedKeys(t *testing.T) {
	uploads := uploadService.NewService(stubStore{}, &stubCatalog{}, nil, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/media/orphans", nil)
	rec := httptest.NewRecorder()

	Orphans(uploads)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool        `json:"success"`
		Data    OrphansData `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data.Orphans) != 2 {
		t.Fatalf("Expected 2 orphans, got %v", resp.Data.Orphans)
	}
	for _, key := range resp.Data.Orphans {
		if key == "k2" {
			t.Fatal("Expected cataloged key k2 to be absent from orphans")
		}
	}
}
