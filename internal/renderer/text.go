package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextStyle describes how a block of text is painted.
type TextStyle struct {
	Size         float64
	Fill         color.RGBA
	Outline      color.RGBA
	OutlineWidth int
	Inner        color.RGBA
	InnerWidth   int
}

// Typesetter renders text blocks to images. Font faces are not safe for
// concurrent use, so rendering is serialized; callers cache the results.
type Typesetter struct {
	mu    sync.Mutex
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewTypesetter loads the font at path. An empty path selects the
// built-in 7x13 bitmap face, which ignores the requested size.
func NewTypesetter(path string) (*Typesetter, error) {
	ts := &Typesetter{faces: make(map[float64]font.Face)}
	if path == "" {
		return ts, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	ts.font = f
	return ts, nil
}

func (ts *Typesetter) face(size float64) (font.Face, error) {
	if ts.font == nil {
		return basicfont.Face7x13, nil
	}
	if f, ok := ts.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(ts.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	ts.faces[size] = f
	return f, nil
}

// Render paints lines centered on a transparent canvas sized to fit,
// outline included.
func (ts *Typesetter) Render(lines []string, st TextStyle) (*image.RGBA, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	face, err := ts.face(st.Size)
	if err != nil {
		return nil, err
	}

	metrics := face.Metrics()
	lineH := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()
	pad := st.OutlineWidth
	if st.InnerWidth > pad {
		pad = st.InnerWidth
	}

	widths := make([]int, len(lines))
	maxW := 0
	for i, l := range lines {
		widths[i] = font.MeasureString(face, l).Ceil()
		if widths[i] > maxW {
			maxW = widths[i]
		}
	}

	w, h := maxW+2*pad, len(lines)*lineH+2*pad
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))

	origin := func(i int) fixed.Point26_6 {
		return fixed.P(pad+(maxW-widths[i])/2, pad+i*lineH+ascent)
	}
	stroke := func(c color.RGBA, radius int) {
		if radius <= 0 || c.A == 0 {
			return
		}
		step := 1
		if radius > 4 {
			step = 2
		}
		d := &font.Drawer{Dst: canvas, Src: image.NewUniform(c), Face: face}
		for dy := -radius; dy <= radius; dy += step {
			for dx := -radius; dx <= radius; dx += step {
				if dx*dx+dy*dy > radius*radius {
					continue
				}
				for i, l := range lines {
					d.Dot = origin(i).Add(fixed.P(dx, dy))
					d.DrawString(l)
				}
			}
		}
	}

	stroke(st.Outline, st.OutlineWidth)
	stroke(st.Inner, st.InnerWidth)

	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(st.Fill), Face: face}
	for i, l := range lines {
		d.Dot = origin(i)
		d.DrawString(l)
	}
	return canvas, nil
}

// splitLines splits on newlines and drops a trailing empty line.
func splitLines(s string) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines
}

// drawCentered draws src centered at (cx, cy).
func drawCentered(dst draw.Image, src image.Image, cx, cy int) {
	b := src.Bounds()
	r := image.Rect(cx-b.Dx()/2, cy-b.Dy()/2, cx-b.Dx()/2+b.Dx(), cy-b.Dy()/2+b.Dy())
	draw.Draw(dst, r, src, b.Min, draw.Over)
}
