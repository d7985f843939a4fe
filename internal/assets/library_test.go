package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	os.MkdirAll(filepath.Dir(path), 0755)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLibraryCharacter(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "images", "aoi", "mouth_open.png"), 200, 400)

	lib := NewLibrary(root)
	img, err := lib.Character("images", "aoi", "mouth_open.png", 100)
	if err != nil {
		t.Fatalf("Character failed: %v", err)
	}
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 100 {
		t.Errorf("Expected 50x100, got %v", img.Bounds())
	}

	again, _ := lib.Character("images", "aoi", "mouth_open.png", 100)
	if again != img {
		t.Error("Expected cached image on second load")
	}

	orig, err := lib.Image(filepath.Join("images", "aoi", "mouth_open.png"))
	if err != nil || orig.Bounds().Dy() != 400 {
		t.Errorf("Expected original 400px image, got %v (%v)", orig, err)
	}
}

func TestLibraryMissingFile(t *testing.T) {
	lib := NewLibrary(t.TempDir())
	if _, err := lib.Image("images/aoi/mouth_open.png"); err == nil {
		t.Error("Expected error for missing file")
	}
	// Negative results are cached too.
	if _, err := lib.Image("images/aoi/mouth_open.png"); err == nil {
		t.Error("Expected cached error for missing file")
	}
}

func TestLibraryQRCode(t *testing.T) {
	lib := NewLibrary(t.TempDir())
	img, err := lib.QRCode("https://github.com/example/repo", 256)
	if err != nil {
		t.Fatalf("QRCode failed: %v", err)
	}
	if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 256 {
		t.Errorf("Expected 256x256, got %v", img.Bounds())
	}
}

func TestScaleToHeightKeepsSameSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 20))
	if ScaleToHeight(src, 20) != image.Image(src) {
		t.Error("Expected the same image when height already matches")
	}
}
