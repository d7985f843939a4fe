package assets

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// Library loads images from a project's public directory and keeps the
// decoded (and scaled) results in memory. Safe for concurrent use.
type Library struct {
	root string

	mu    sync.Mutex
	cache map[string]image.Image
	miss  map[string]error
}

// NewLibrary creates a Library reading files below root.
func NewLibrary(root string) *Library {
	return &Library{
		root:  root,
		cache: make(map[string]image.Image),
		miss:  make(map[string]error),
	}
}

// Path joins rel to the library root.
func (l *Library) Path(rel string) string {
	return filepath.Join(l.root, rel)
}

// Image returns the decoded image at rel.
func (l *Library) Image(rel string) (image.Image, error) {
	return l.load(rel, 0, func() (image.Image, error) {
		return decodeFile(l.Path(rel))
	})
}

// ScaledToHeight returns the image at rel resized to height h, keeping the
// aspect ratio.
func (l *Library) ScaledToHeight(rel string, h int) (image.Image, error) {
	return l.load(rel, h, func() (image.Image, error) {
		src, err := l.Image(rel)
		if err != nil {
			return nil, err
		}
		return ScaleToHeight(src, h), nil
	})
}

// Character returns the image of a character scaled to h.
func (l *Library) Character(basePath, id, file string, h int) (image.Image, error) {
	return l.ScaledToHeight(filepath.Join(basePath, id, file), h)
}

// QRCode renders text as a square QR code of the given size.
func (l *Library) QRCode(text string, size int) (image.Image, error) {
	return l.load("qr:"+text, size, func() (image.Image, error) {
		q, err := qrcode.New(text, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("qrcode: %w", err)
		}
		return q.Image(size), nil
	})
}

func (l *Library) load(rel string, h int, fn func() (image.Image, error)) (image.Image, error) {
	key := fmt.Sprintf("%s@%d", rel, h)

	l.mu.Lock()
	if img, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return img, nil
	}
	if err, ok := l.miss[key]; ok {
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()

	// Decoding happens outside the lock; two workers may decode the same
	// file once each, the second result wins.
	img, err := fn()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.miss[key] = err
		return nil, err
	}
	l.cache[key] = img
	return img, nil
}

// ScaleToHeight resizes src to height h with CatmullRom resampling.
func ScaleToHeight(src image.Image, h int) image.Image {
	b := src.Bounds()
	if h <= 0 || b.Dy() == 0 || b.Dy() == h {
		return src
	}
	w := b.Dx() * h / b.Dy()
	if w < 1 {
		w = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
