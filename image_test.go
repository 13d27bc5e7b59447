package kaleido

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// waitLoaded polls until the source finished its latest load.
func waitLoaded(t *testing.T, s *ImageSource) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !s.Ready() && s.Err() == nil {
		if time.Now().After(deadline) {
			t.Fatal("image load did not finish")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestImageSourceLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.png")
	if err := os.WriteFile(path, encodePNG(t, 12, 7), 0o644); err != nil {
		t.Fatal(err)
	}

	var s ImageSource
	defer s.Dispose()
	if s.Ready() {
		t.Fatal("Ready before SetImage")
	}
	s.SetImage(path)
	waitLoaded(t, &s)

	if !s.Ready() {
		t.Fatalf("Ready = false, Err = %v", s.Err())
	}
	w, h, ok := s.Size()
	if !ok || w != 12 || h != 7 {
		t.Errorf("Size() = %d, %d, %v, want 12, 7, true", w, h, ok)
	}
	img := s.Image()
	if img == nil {
		t.Fatal("Image() = nil after Ready")
	}
	if s.Image() != img {
		t.Error("Image() should upload once")
	}
}

func TestImageSourceFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.png")
	if err := os.WriteFile(path, encodePNG(t, 3, 3), 0o644); err != nil {
		t.Fatal(err)
	}

	var s ImageSource
	defer s.Dispose()
	s.SetImage("file://" + filepath.ToSlash(path))
	waitLoaded(t, &s)
	if !s.Ready() {
		t.Errorf("Ready = false, Err = %v", s.Err())
	}
}

func TestImageSourceMissingFile(t *testing.T) {
	var s ImageSource
	defer s.Dispose()
	s.SetImage(filepath.Join(t.TempDir(), "missing.webp"))
	waitLoaded(t, &s)

	if s.Ready() {
		t.Error("Ready = true for a missing file")
	}
	if !errors.Is(s.Err(), fs.ErrNotExist) {
		t.Errorf("Err = %v, want fs.ErrNotExist", s.Err())
	}
	if s.Image() != nil {
		t.Error("Image() should be nil after a failed load")
	}
	if _, _, ok := s.Size(); ok {
		t.Error("Size() ok = true after a failed load")
	}
}

func TestImageSourceUndecodable(t *testing.T) {
	s := ImageSource{FS: fstest.MapFS{
		"assets/bad.png": {Data: []byte("not an image")},
	}}
	defer s.Dispose()
	s.SetImage("assets/bad.png")
	waitLoaded(t, &s)
	if s.Err() == nil {
		t.Error("expected a decode error")
	}
}

func TestImageSourceFS(t *testing.T) {
	s := ImageSource{FS: fstest.MapFS{
		"assets/layer1.png": {Data: encodePNG(t, 4, 2)},
	}}
	defer s.Dispose()
	s.SetImage("/assets/layer1.png")
	waitLoaded(t, &s)
	if w, h, ok := s.Size(); !ok || w != 4 || h != 2 {
		t.Errorf("Size() = %d, %d, %v, want 4, 2, true", w, h, ok)
	}
}

func TestImageSourceHTTP(t *testing.T) {
	data := encodePNG(t, 5, 6)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/layer.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	s := ImageSource{Client: srv.Client()}
	defer s.Dispose()
	s.SetImage(srv.URL + "/layer.png")
	waitLoaded(t, &s)
	if w, h, ok := s.Size(); !ok || w != 5 || h != 6 {
		t.Errorf("Size() = %d, %d, %v, want 5, 6, true (Err = %v)", w, h, ok, s.Err())
	}

	s.SetImage(srv.URL + "/missing.png")
	waitLoaded(t, &s)
	if s.Err() == nil {
		t.Error("expected an error for a 404")
	}
}

func TestImageSourceStaleResultIgnored(t *testing.T) {
	var s ImageSource
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	s.gen.Store(2)
	s.publish(&imageLoad{gen: 2, img: img})
	s.publish(&imageLoad{gen: 1, err: errors.New("old")})

	if !s.Ready() {
		t.Error("a late result from an older load must not replace the newer one")
	}

	// A newer SetImage hides the finished result until its own load lands.
	s.gen.Store(3)
	if s.Ready() || s.Err() != nil {
		t.Error("result of a superseded load should be hidden")
	}
}

func TestImageSourceDisposeDropsResult(t *testing.T) {
	s := ImageSource{FS: fstest.MapFS{"a.png": {Data: encodePNG(t, 2, 2)}}}
	s.SetImage("a.png")
	waitLoaded(t, &s)
	s.Dispose()
	if s.Ready() {
		t.Error("Ready after Dispose")
	}
}

func TestImageSourceLateLoadAfterDisposeDropped(t *testing.T) {
	var s ImageSource
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	s.gen.Store(2)
	s.Dispose()
	// The load started as generation 2 finishes after Dispose.
	s.publish(&imageLoad{gen: 2, img: img})
	if s.result.Load() != nil {
		t.Error("a load finishing after Dispose should not be stored")
	}

	s.gen.Store(3)
	s.publish(&imageLoad{gen: 2, img: img})
	if s.result.Load() != nil {
		t.Error("a superseded load should not be stored")
	}
}

func TestImageSourceUploadLogsFormat(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	s := ImageSource{FS: fstest.MapFS{"a.png": {Data: encodePNG(t, 3, 2)}}}
	defer s.Dispose()
	if got := s.Format(); got != "" {
		t.Errorf("Format() before load = %q, want empty", got)
	}
	s.SetImage("a.png")
	waitLoaded(t, &s)
	if got := s.Format(); got != "png" {
		t.Errorf("Format() = %q, want png", got)
	}
	if s.Image() == nil {
		t.Fatal("Image() = nil")
	}
	out := buf.String()
	if !strings.Contains(out, "format=png") || !strings.Contains(out, "uri=a.png") {
		t.Errorf("log = %q, want the upload record with uri and format", out)
	}
}
