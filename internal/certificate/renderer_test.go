package certificate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type memStore struct {
	puts    map[string][]byte
	failPut error
}

func newMemStore() *memStore {
	return &memStore{puts: map[string][]byte{}}
}

func (m *memStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if m.failPut != nil {
		return "", m.failPut
	}
	m.puts[key] = body
	return m.URLFor(key), nil
}

func (m *memStore) URLFor(key string) string {
	return "http://store.local/" + key
}

func testAssets(t *testing.T, cfg Config) *Assets {
	t.Helper()

	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		t.Fatalf("parse bold font: %v", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse regular font: %v", err)
	}

	nameFace, err := newFace(bold, cfg.NameFontSize)
	if err != nil {
		t.Fatalf("name face: %v", err)
	}
	captionFace, err := newFace(regular, cfg.CaptionFontSize)
	if err != nil {
		t.Fatalf("caption face: %v", err)
	}
	idFace, err := newFace(regular, cfg.IDFontSize)
	if err != nil {
		t.Fatalf("id face: %v", err)
	}

	bg := image.NewRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(bg, bg.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	return &Assets{
		Background:  bg,
		NameFace:    nameFace,
		CaptionFace: captionFace,
		IDFace:      idFace,
	}
}

func newTestRenderer(t *testing.T, cfg Config, store ArtifactStore) *Renderer {
	t.Helper()
	return NewRenderer(cfg, testAssets(t, cfg), store, nil)
}

func TestRenderProducesPNGAtCanvasSize(t *testing.T) {
	store := newMemStore()
	r := newTestRenderer(t, DefaultConfig(), store)

	artifact, err := r.Render(context.Background(), "Alice", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(artifact.ImageBytes))
	if err != nil {
		t.Fatalf("artifact is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
		t.Errorf("expected 800x600 canvas, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	if artifact.ID == "" {
		t.Error("expected a certificate ID")
	}
	if !strings.HasPrefix(artifact.ImageURL, "http://store.local/certificate_Alice_") {
		t.Errorf("unexpected artifact URL: %s", artifact.ImageURL)
	}
	if len(store.puts) != 1 {
		t.Errorf("expected exactly one upload, got %d", len(store.puts))
	}
}

func TestRenderNotIdempotent(t *testing.T) {
	// Two renders of the same name yield distinct IDs and URLs by design.
	store := newMemStore()
	r := newTestRenderer(t, DefaultConfig(), store)

	first, err := r.Render(context.Background(), "A", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Render(context.Background(), "A", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == second.ID {
		t.Error("repeated renders must produce distinct certificate IDs")
	}
	if first.ImageURL == second.ImageURL {
		t.Error("repeated renders must produce distinct artifact URLs")
	}
}

func TestRenderEmptyName(t *testing.T) {
	store := newMemStore()
	r := newTestRenderer(t, DefaultConfig(), store)

	_, err := r.Render(context.Background(), "   ", "")
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if len(store.puts) != 0 {
		t.Error("nothing should be uploaded for an invalid name")
	}
}

func TestRenderTestNameDiscriminator(t *testing.T) {
	store := newMemStore()
	r := newTestRenderer(t, DefaultConfig(), store)

	artifact, err := r.Render(context.Background(), "John Doe", "Go Course")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.ImageURL != "http://store.local/certificate_John_Doe_Go_Course.png" {
		t.Errorf("unexpected key/URL: %s", artifact.ImageURL)
	}
}

func TestRenderSanitizesKey(t *testing.T) {
	store := newMemStore()
	r := newTestRenderer(t, DefaultConfig(), store)

	artifact, err := r.Render(context.Background(), "Jo@hn Doe!", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for key := range store.puts {
		if strings.ContainsAny(key, " @!") {
			t.Errorf("storage key not sanitized: %s", key)
		}
		if !strings.HasPrefix(key, "certificate_John_Doe_") {
			t.Errorf("unexpected storage key: %s", key)
		}
	}
	if !strings.Contains(artifact.ImageURL, "John_Doe") {
		t.Errorf("URL should carry the sanitized name: %s", artifact.ImageURL)
	}
}

func TestRenderEmbedsVerificationURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QREnabled = true
	cfg.VerificationBaseURL = "https://certgen.example.com/verify"
	store := newMemStore()
	r := newTestRenderer(t, cfg, store)

	artifact, err := r.Render(context.Background(), "Alice", "Algorithms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "https://certgen.example.com/verify?url=" +
		url.QueryEscape("http://store.local/certificate_Alice_Algorithms.png")
	if artifact.QRTargetURL != want {
		t.Errorf("expected QR target %s, got %s", want, artifact.QRTargetURL)
	}
}

func TestRenderUploadFailure(t *testing.T) {
	store := newMemStore()
	store.failPut = errors.New("bucket gone")
	r := newTestRenderer(t, DefaultConfig(), store)

	artifact, err := r.Render(context.Background(), "Alice", "")
	if err == nil {
		t.Fatal("expected upload failure to fail the render")
	}
	if artifact != nil {
		t.Error("no artifact should be returned on failure")
	}
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()

	bgPath := filepath.Join(dir, "certificate.png")
	bg := image.NewRGBA(image.Rect(0, 0, 80, 60))
	var buf bytes.Buffer
	if err := png.Encode(&buf, bg); err != nil {
		t.Fatalf("encode background: %v", err)
	}
	if err := os.WriteFile(bgPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write background: %v", err)
	}
	fontPath := filepath.Join(dir, "font.ttf")
	if err := os.WriteFile(fontPath, goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}

	cfg := DefaultConfig()
	cfg.BackgroundImagePath = bgPath
	cfg.NameFontPath = fontPath
	cfg.CaptionFontPath = fontPath

	assets, err := LoadAssets(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assets.Background == nil || assets.NameFace == nil || assets.CaptionFace == nil || assets.IDFace == nil {
		t.Error("all assets should be loaded")
	}
}

func TestLoadAssetsMissingBackgroundIsFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BackgroundImagePath = filepath.Join(t.TempDir(), "missing.png")

	if _, err := LoadAssets(cfg); err == nil {
		t.Fatal("missing background must fail asset loading")
	}
}
