package renderer

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"#2d5a3d", color.RGBA{0x2d, 0x5a, 0x3d, 0xff}, false},
		{"#f00", color.RGBA{255, 0, 0, 255}, false},
		{"#00000000", color.RGBA{}, false},
		{"red", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTypesetterRender(t *testing.T) {
	ts, err := NewTypesetter("")
	if err != nil {
		t.Fatal(err)
	}
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	img, err := ts.Render([]string{"Hi", "there"}, TextStyle{Size: 20, Fill: white, Outline: black, OutlineWidth: 2})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// 7x13 face: widest line is 5 glyphs, plus the outline on both sides.
	if b := img.Bounds(); b.Dx() != 35+4 || b.Dy() != 2*13+4 {
		t.Errorf("Unexpected canvas %v", b)
	}

	var fill, outline int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch img.RGBAAt(x, y) {
			case white:
				fill++
			case black:
				outline++
			}
		}
	}
	if fill == 0 || outline == 0 {
		t.Errorf("Expected both fill and outline pixels, got %d and %d", fill, outline)
	}
}

func TestMix(t *testing.T) {
	a := color.RGBA{0, 0, 0, 255}
	b := color.RGBA{200, 100, 50, 255}
	if got := mix(a, b, 0.5); got != (color.RGBA{100, 50, 25, 255}) {
		t.Errorf("mix = %v", got)
	}
	if got := mix(a, b, 0); got != a {
		t.Errorf("mix at 0 = %v", got)
	}
}
