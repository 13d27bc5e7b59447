package kaleido

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageSource holds the bitmap a layer draws. SetImage starts loading in
// the background; the renderer polls Ready on every draw and skips the
// frame until the load has finished. A failed load is logged once and
// leaves the source permanently not ready. There is no retry and no
// timeout.
//
// SetImage, Ready and Image must be called from the host loop goroutine.
type ImageSource struct {
	// FS, when set, resolves plain paths (not URLs) instead of the OS
	// filesystem. Leading slashes are stripped, so "/assets/layer1.webp"
	// works against an embed.FS rooted above assets/.
	FS fs.FS
	// Client fetches http and https URIs. Nil uses http.DefaultClient.
	Client *http.Client

	gen    atomic.Uint64
	result atomic.Pointer[imageLoad]

	// GPU copy, created lazily on the host loop goroutine.
	uploaded     *ebiten.Image
	uploadedFrom *imageLoad
}

// imageLoad is the immutable outcome of one SetImage call.
type imageLoad struct {
	gen    uint64
	uri    string
	format string
	img    image.Image
	err    error
}

// SetImage starts loading uri, which may be a file path, a file:// URL or
// an http(s):// URL. It returns immediately. Any earlier load is superseded:
// its result is discarded even if it completes later.
func (s *ImageSource) SetImage(uri string) {
	gen := s.gen.Add(1)
	go func() {
		img, format, err := s.load(uri)
		if err != nil {
			Logger().Warn("kaleido: image load failed", "uri", uri, "err", err)
		}
		s.publish(&imageLoad{gen: gen, uri: uri, format: format, img: img, err: err})
	}()
}

// publish stores a finished load if it belongs to the latest SetImage.
// Results of superseded or disposed loads are dropped so their bitmaps can
// be collected.
func (s *ImageSource) publish(next *imageLoad) {
	for {
		if next.gen != s.gen.Load() {
			return
		}
		prev := s.result.Load()
		if s.result.CompareAndSwap(prev, next) {
			// SetImage or Dispose may have run between the check and the
			// swap.
			if next.gen != s.gen.Load() {
				s.result.CompareAndSwap(next, nil)
			}
			return
		}
	}
}

// current returns the finished load for the latest SetImage, or nil.
func (s *ImageSource) current() *imageLoad {
	r := s.result.Load()
	if r == nil || r.gen != s.gen.Load() {
		return nil
	}
	return r
}

// Ready reports whether the latest load finished successfully.
func (s *ImageSource) Ready() bool {
	r := s.current()
	return r != nil && r.err == nil
}

// Err returns the error of the latest load, or nil while it is pending or
// after it succeeded.
func (s *ImageSource) Err() error {
	if r := s.current(); r != nil {
		return r.err
	}
	return nil
}

// Format returns the name of the decoded format, e.g. "png" or "webp",
// or "" until Ready.
func (s *ImageSource) Format() string {
	r := s.current()
	if r == nil || r.err != nil {
		return ""
	}
	return r.format
}

// Size returns the pixel size of the loaded bitmap.
func (s *ImageSource) Size() (width, height int, ok bool) {
	r := s.current()
	if r == nil || r.err != nil {
		return 0, 0, false
	}
	b := r.img.Bounds()
	return b.Dx(), b.Dy(), true
}

// Image returns the loaded bitmap as an ebiten image, uploading it on first
// use. It returns nil until Ready.
func (s *ImageSource) Image() *ebiten.Image {
	r := s.current()
	if r == nil || r.err != nil {
		return nil
	}
	if s.uploadedFrom != r {
		if s.uploaded != nil {
			s.uploaded.Deallocate()
		}
		s.uploaded = ebiten.NewImageFromImage(r.img)
		s.uploadedFrom = r
		b := r.img.Bounds()
		Logger().Debug("kaleido: image uploaded",
			"uri", r.uri, "format", r.format, "w", b.Dx(), "h", b.Dy())
	}
	return s.uploaded
}

// Dispose drops the loaded bitmap and cancels any pending load.
func (s *ImageSource) Dispose() {
	s.gen.Add(1)
	s.result.Store(nil)
	if s.uploaded != nil {
		s.uploaded.Deallocate()
		s.uploaded = nil
	}
	s.uploadedFrom = nil
}

// load opens and decodes uri.
func (s *ImageSource) load(uri string) (image.Image, string, error) {
	rc, err := s.open(uri)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	img, format, err := decodeImage(rc)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", uri, err)
	}
	return img, format, nil
}

func (s *ImageSource) open(uri string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		client := s.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Get(uri)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", uri, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: %s", uri, resp.Status)
		}
		return resp.Body, nil
	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", uri, err)
		}
		return os.Open(u.Path)
	}
	if s.FS != nil {
		return s.FS.Open(strings.TrimLeft(uri, "/"))
	}
	return os.Open(uri)
}

// decodeImage decodes any registered format: png, jpeg, gif, webp, bmp and
// tiff.
func decodeImage(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}
