package library

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postcraft/core/internal/models"
	"go.uber.org/zap"
)

// memStore is an in-memory BlobStore for tests.
type memStore struct {
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.blobs[key] = data
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func encodeTestJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestDetectImageType(t *testing.T) {
	if _, err := detectImageType(encodeTestJPEG(t)); err != nil {
		t.Errorf("jpeg rejected: %v", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if _, err := detectImageType(buf.Bytes()); err != nil {
		t.Errorf("png rejected: %v", err)
	}

	if _, err := detectImageType([]byte("%PDF-1.4 not an image")); err == nil {
		t.Error("expected error for non-image payload")
	}
	if _, err := detectImageType([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Error("expected error for unrecognized bytes")
	}
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":            "photo.jpg",
		"../../etc/passwd":     "passwd",
		"dir\\sub\\evil.png":   "evil.png",
		"":                     "upload",
		"/absolute/path/x.gif": "x.gif",
	}
	for in, want := range cases {
		if got := safeFilename(in); got != want {
			t.Errorf("safeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitImageID(t *testing.T) {
	cases := map[string]string{
		"abc-123":      "abc-123",
		"abc-123.jpg":  "abc-123",
		"abc-123.JPEG": "abc-123",
		"abc-123.png":  "abc-123",
		"abc.def":      "abc.def",
	}
	for in, want := range cases {
		if got := splitImageID(in); got != want {
			t.Errorf("splitImageID(%q) = %q, want %q", in, got, want)
		}
	}
}

func newTestVerifier(store BlobStore) *Verifier {
	return &Verifier{
		store:      store,
		httpc:      &http.Client{Timeout: 5 * time.Second},
		staleAfter: time.Hour,
		logger:     zap.NewNop(),
	}
}

func TestVerifierBlobAccessibility(t *testing.T) {
	store := newMemStore()
	store.blobs["content/a.jpg"] = []byte("x")
	v := newTestVerifier(store)

	present := &models.ContentItem{ID: "a", ObjectKey: "content/a.jpg"}
	if !v.Accessible(context.Background(), present) {
		t.Error("stored item reported inaccessible")
	}

	missing := &models.ContentItem{ID: "b", ObjectKey: "content/b.jpg"}
	if v.Accessible(context.Background(), missing) {
		t.Error("missing blob reported accessible")
	}
}

func TestVerifierExternalURL(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
	}))
	defer imageServer.Close()

	placeholderServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}))
	defer placeholderServer.Close()

	goneServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer goneServer.Close()

	v := newTestVerifier(newMemStore())
	ctx := context.Background()

	if !v.Accessible(ctx, &models.ContentItem{ID: "img", ExternalURL: imageServer.URL}) {
		t.Error("reachable image URL reported inaccessible")
	}
	if v.Accessible(ctx, &models.ContentItem{ID: "html", ExternalURL: placeholderServer.URL}) {
		t.Error("HTML placeholder reported accessible")
	}
	if v.Accessible(ctx, &models.ContentItem{ID: "gone", ExternalURL: goneServer.URL}) {
		t.Error("404 URL reported accessible")
	}
	if v.Accessible(ctx, &models.ContentItem{ID: "dead", ExternalURL: "http://127.0.0.1:1/img.jpg"}) {
		t.Error("unreachable host reported accessible")
	}
}

func TestVerifierDeletedBlobStaysGone(t *testing.T) {
	store := newMemStore()
	store.blobs["content/a.jpg"] = []byte("x")
	v := newTestVerifier(store)
	item := &models.ContentItem{ID: "a", ObjectKey: "content/a.jpg"}

	if !v.Accessible(context.Background(), item) {
		t.Fatal("stored item reported inaccessible")
	}

	if err := store.Delete(context.Background(), "content/a.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v.Accessible(context.Background(), item) {
		t.Error("deleted blob still reported accessible")
	}
}

func TestGalleryViewBadgeDerivation(t *testing.T) {
	s := &Service{publicBaseURL: "https://app.example.com"}
	item := models.ContentItem{ID: "abc", Filename: "beach.jpg"}

	view := s.galleryView(&item)
	if view.HasDescription {
		t.Error("badge set without a description")
	}

	item.Description = "golden hour at the beach"
	view = s.galleryView(&item)
	if !view.HasDescription {
		t.Error("badge missing after description write")
	}
	if view.Description != "golden hour at the beach" {
		t.Errorf("description = %q", view.Description)
	}
	if view.ImageURL != "https://app.example.com/api/v1/public/image/abc.jpg" {
		t.Errorf("image url = %q", view.ImageURL)
	}
}
