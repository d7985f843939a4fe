// Package renderer composites video frames from the resolved timeline.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"path/filepath"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/dialogvideo/internal/assets"
	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/director"
	"github.com/ivlev/dialogvideo/internal/effects"
	"github.com/ivlev/dialogvideo/internal/lipsync"
	"github.com/ivlev/dialogvideo/internal/script"
	"github.com/ivlev/dialogvideo/internal/subtitle"
	"github.com/ivlev/dialogvideo/internal/timeline"
)

// Layout of the blackboard at 1920 px width. Scaled to the output width.
const (
	baseWidth        = 1920.0
	boardTop         = 40
	boardSide        = 60
	boardBottom      = 160
	boardFrame       = 12
	trayHeight       = 24
	characterMargin  = 20
	placeholderRatio = 0.6
)

// Options wires a Compositor to the data of one project.
type Options struct {
	Settings   *config.Settings
	Roster     *config.Roster
	Timeline   *timeline.Timeline
	Director   *director.Director
	Inventory  assets.Inventory
	Library    *assets.Library // rooted at the project's public directory
	Mouth      lipsync.MouthData
	Typesetter *Typesetter
	Width      int
	Height     int
	FPS        int
	Logger     *slog.Logger
}

// Compositor draws frames. Draw may be called from several goroutines;
// everything it derives from the project is cached.
type Compositor struct {
	opts  Options
	k     float64
	board image.Rectangle

	cache  sync.Map // string -> image.Image
	warned sync.Map // string -> struct{}
}

// NewCompositor returns a compositor for opts. A nil Logger uses
// slog.Default and a nil Typesetter uses the built-in face.
func NewCompositor(opts Options) *Compositor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Typesetter == nil {
		opts.Typesetter, _ = NewTypesetter("")
	}
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	c := &Compositor{opts: opts, k: float64(opts.Width) / baseWidth}
	c.board = image.Rect(c.px(boardSide), c.px(boardTop), opts.Width-c.px(boardSide), opts.Height-c.px(boardBottom))
	return c
}

// px scales a length given for a 1920 px wide frame.
func (c *Compositor) px(v float64) int {
	return int(v*c.k + 0.5)
}

// Draw paints frame into dst, which must be Width x Height.
func (c *Compositor) Draw(dst *image.RGBA, frame int) {
	st := c.opts.Timeline.Resolve(frame)

	draw.Draw(dst, dst.Bounds(), c.background(st.Scene), image.Point{}, draw.Src)

	if st.Active() && st.Line.Visual != nil {
		c.drawVisual(dst, st)
	}

	stage := c.opts.Director.Cast(st.Scene, st.Line)
	c.drawCharacter(dst, stage.Left, config.SideLeft, st, frame)
	c.drawCharacter(dst, stage.Right, config.SideRight, st, frame)

	if st.Active() && st.Speaking {
		c.drawSubtitle(dst, st)
	}
}

// cached returns the image stored under key, building it with fn on first
// use. Build errors are logged once and cached as a miss.
func (c *Compositor) cached(key string, fn func() (image.Image, error)) image.Image {
	if v, ok := c.cache.Load(key); ok {
		img, _ := v.(image.Image)
		return img
	}
	img, err := fn()
	if err != nil {
		c.warnOnce(key, "Asset unavailable", "key", key, "error", err)
		c.cache.Store(key, nil)
		return nil
	}
	v, _ := c.cache.LoadOrStore(key, img)
	img, _ = v.(image.Image)
	return img
}

func (c *Compositor) warnOnce(key, msg string, args ...any) {
	if _, loaded := c.warned.LoadOrStore(key, struct{}{}); !loaded {
		c.opts.Logger.Warn(msg, args...)
	}
}

// background returns the static part of a scene: backdrop, blackboard and
// the scene image inside the board.
func (c *Compositor) background(sceneID int) image.Image {
	return c.cached(fmt.Sprintf("bg:%d", sceneID), func() (image.Image, error) {
		s := c.opts.Settings
		w, h := c.opts.Width, c.opts.Height
		canvas := image.NewRGBA(image.Rect(0, 0, w, h))

		base := colorOr(s.Colors.Background, color.RGBA{255, 255, 255, 255})
		var scene *script.Scene
		if sc := c.opts.Timeline.Script(); sc != nil {
			scene = sc.SceneByID(sceneID)
		}

		kind := script.BackgroundGradient
		if scene != nil {
			base = colorOr(scene.BackgroundColor, base)
			if scene.Background != "" {
				kind = scene.Background
			}
		}
		if kind == script.BackgroundGradient {
			bottom := mix(base, color.RGBA{0, 0, 0, 255}, 0.15)
			for y := 0; y < h; y++ {
				t := 0.0
				if h > 1 {
					t = float64(y) / float64(h-1)
				}
				row := image.Rect(0, y, w, y+1)
				draw.Draw(canvas, row, image.NewUniform(mix(base, bottom, t)), image.Point{}, draw.Src)
			}
		} else {
			draw.Draw(canvas, canvas.Bounds(), image.NewUniform(base), image.Point{}, draw.Src)
		}

		frameW := c.px(boardFrame)
		draw.Draw(canvas, c.board.Inset(-frameW), image.NewUniform(colorOr(s.Colors.BlackboardBorder, color.RGBA{0x8b, 0x45, 0x13, 0xff})), image.Point{}, draw.Src)
		draw.Draw(canvas, c.board, image.NewUniform(colorOr(s.Colors.Blackboard, color.RGBA{0x2d, 0x5a, 0x3d, 0xff})), image.Point{}, draw.Src)
		tray := image.Rect(c.board.Min.X-frameW, c.board.Max.Y, c.board.Max.X+frameW, c.board.Max.Y+c.px(trayHeight))
		draw.Draw(canvas, tray, image.NewUniform(colorOr(s.Colors.BlackboardBorder, color.RGBA{0x8b, 0x45, 0x13, 0xff})), image.Point{}, draw.Src)

		if scene != nil && kind == script.BackgroundImage && scene.BackgroundImage != "" {
			img, err := c.opts.Library.Image(scene.BackgroundImage)
			if err != nil {
				c.warnOnce("bgimg:"+scene.BackgroundImage, "Scene background missing", "scene", sceneID, "error", err)
			} else {
				xdraw.CatmullRom.Scale(canvas, c.board, img, coverRect(img.Bounds(), c.board.Dx(), c.board.Dy()), xdraw.Over, nil)
			}
		}
		return canvas, nil
	})
}

// coverRect crops src to the aspect ratio of w x h around its center.
func coverRect(src image.Rectangle, w, h int) image.Rectangle {
	if w <= 0 || h <= 0 || src.Empty() {
		return src
	}
	sw, sh := src.Dx(), src.Dy()
	if sw*h > sh*w {
		cw := sh * w / h
		x := src.Min.X + (sw-cw)/2
		return image.Rect(x, src.Min.Y, x+cw, src.Max.Y)
	}
	ch := sw * h / w
	y := src.Min.Y + (sh-ch)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+ch)
}

// content is the board area available to visuals.
func (c *Compositor) content() image.Rectangle {
	p := c.opts.Settings.Content
	r := image.Rect(
		c.board.Min.X+c.px(float64(p.SidePadding)),
		c.board.Min.Y+c.px(float64(p.TopPadding)),
		c.board.Max.X-c.px(float64(p.SidePadding)),
		c.board.Max.Y-c.px(float64(p.BottomPadding)),
	)
	if r.Empty() {
		return c.board
	}
	return r
}

func (c *Compositor) drawVisual(dst *image.RGBA, st timeline.State) {
	v := st.Line.Visual
	area := c.content()

	var img image.Image
	switch v.Type {
	case script.VisualImage:
		img = c.cached(fmt.Sprintf("visual:%s:%dx%d", v.Src, area.Dx(), area.Dy()), func() (image.Image, error) {
			src, err := c.opts.Library.Image(filepath.Join("content", v.Src))
			if err != nil {
				src, err = c.opts.Library.Image(v.Src)
			}
			if err != nil {
				return nil, err
			}
			b := src.Bounds()
			h := area.Dy()
			if b.Dx()*area.Dy() > area.Dx()*b.Dy() {
				h = area.Dx() * b.Dy() / b.Dx()
			}
			return assets.ScaleToHeight(src, h), nil
		})
	case script.VisualText:
		img = c.cached(fmt.Sprintf("visual-text:%d", st.LineIndex), func() (image.Image, error) {
			size := v.FontSize
			if size <= 0 {
				size = 80
			}
			return c.opts.Typesetter.Render(splitLines(v.Text), TextStyle{
				Size: size * c.k,
				Fill: colorOr(v.Color, colorOr(c.opts.Settings.Colors.Text, color.RGBA{255, 255, 255, 255})),
			})
		})
	case script.VisualQRCode:
		size := area.Dy() * 6 / 10
		if area.Dx() < area.Dy() {
			size = area.Dx() * 6 / 10
		}
		text := v.Text
		if text == "" {
			text = v.Src
		}
		img = c.cached(fmt.Sprintf("visual-qr:%d", st.LineIndex), func() (image.Image, error) {
			return c.opts.Library.QRCode(text, size)
		})
	}
	if img == nil {
		return
	}

	tf := effects.ForAnimation(v.Animation).At(st.FrameInLine, c.opts.FPS)
	cx := (area.Min.X+area.Max.X)/2 + int(tf.DX*c.k)
	cy := (area.Min.Y+area.Max.Y)/2 + int(tf.DY*c.k)
	drawTransformed(dst, img, cx, cy, tf.Scale, tf.Alpha)
}

// drawTransformed draws src centered at (cx, cy), scaled and faded.
func drawTransformed(dst *image.RGBA, src image.Image, cx, cy int, scale, alpha float64) {
	if alpha <= 0 || scale <= 0 {
		return
	}
	b := src.Bounds()
	w, h := int(float64(b.Dx())*scale+0.5), int(float64(b.Dy())*scale+0.5)
	if w <= 0 || h <= 0 {
		return
	}
	r := image.Rect(cx-w/2, cy-h/2, cx-w/2+w, cy-h/2+h)

	var mask image.Image
	if alpha < 1 {
		mask = image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	}
	if w == b.Dx() && h == b.Dy() {
		draw.DrawMask(dst, r, src, b.Min, mask, image.Point{}, draw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, b, xdraw.Over, &xdraw.Options{SrcMask: mask})
}

func (c *Compositor) drawCharacter(dst *image.RGBA, id string, side config.Side, st timeline.State, frame int) {
	if id == "" {
		return
	}
	def := c.opts.Roster.Character(id)
	if def == nil {
		c.warnOnce("char:"+id, "Character not in roster, skipped", "character", id)
		return
	}

	own := st.Line != nil && st.Line.Character == id
	speaking := own && st.Speaking
	emotion := "normal"
	var data []bool
	if own {
		emotion = st.Line.Emotion
		if speaking {
			data = c.opts.Mouth.Lookup(st.Line.VoiceFile)
		}
	}
	open := lipsync.MouthOpen(data, speaking, st.FrameInLine, frame)

	img := c.characterImage(def, emotion, open)
	if img == nil {
		return
	}

	dx, dy := effects.CharacterOffset(frame, c.opts.FPS, side, speaking)
	b := img.Bounds()
	x := c.px(characterMargin)
	if side == config.SideRight {
		x = c.opts.Width - c.px(characterMargin) - b.Dx()
	}
	x += int(dx * c.k)
	y := c.opts.Height - b.Dy() + int(dy*c.k)
	draw.Draw(dst, image.Rect(x, y, x+b.Dx(), y+b.Dy()), img, b.Min, draw.Over)
}

func (c *Compositor) characterImage(def *config.CharacterDefinition, emotion string, open bool) image.Image {
	s := c.opts.Settings.Character
	h := c.px(float64(s.Height))

	if s.UseImages && len(c.opts.Inventory[def.ID]) > 0 {
		file := c.opts.Inventory.SelectImage(def.ID, emotion, open)
		key := fmt.Sprintf("char:%s:%s:%d:%t", def.ID, file, h, def.FlipX)
		img := c.cached(key, func() (image.Image, error) {
			img, err := c.opts.Library.Character(s.ImagesBasePath, def.ID, file, h)
			if err != nil {
				return nil, err
			}
			if def.FlipX {
				return flipX(img), nil
			}
			return img, nil
		})
		if img != nil {
			return img
		}
	}

	key := fmt.Sprintf("placeholder:%s:%d:%t", def.ID, h, open)
	return c.cached(key, func() (image.Image, error) {
		return c.placeholder(def, h, open)
	})
}

// placeholder is a card in the character color with the name and a mouth
// bar that follows the lip-sync state.
func (c *Compositor) placeholder(def *config.CharacterDefinition, h int, open bool) (image.Image, error) {
	w := int(float64(h) * placeholderRatio)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("placeholder for %s: invalid size %dx%d", def.ID, w, h)
	}
	col := colorOr(c.opts.Settings.Colors.Character(def.ID, def.Color), color.RGBA{0x88, 0x88, 0x88, 0xff})
	card := image.NewRGBA(image.Rect(0, 0, w, h))

	border := c.px(4)
	if border < 1 {
		border = 1
	}
	draw.Draw(card, card.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	draw.Draw(card, card.Bounds().Inset(border), image.NewUniform(withAlpha(col, 0xcc)), image.Point{}, draw.Src)

	mouthH := c.px(6)
	if open {
		mouthH = c.px(24)
	}
	mouthW := w / 3
	mouth := image.Rect((w-mouthW)/2, h*2/3, (w+mouthW)/2, h*2/3+mouthH)
	draw.Draw(card, mouth, image.NewUniform(color.RGBA{0x20, 0x20, 0x20, 0xff}), image.Point{}, draw.Over)

	label, err := c.opts.Typesetter.Render([]string{def.Name}, TextStyle{
		Size: 28 * c.k,
		Fill: color.RGBA{255, 255, 255, 255},
	})
	if err != nil {
		return nil, err
	}
	drawCentered(card, label, w/2, h/3)
	return card, nil
}

func flipX(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(b.Dx()-1-x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func (c *Compositor) drawSubtitle(dst *image.RGBA, st timeline.State) {
	img := c.cached(fmt.Sprintf("subtitle:%d", st.LineIndex), func() (image.Image, error) {
		return c.subtitle(st.Line)
	})
	if img == nil {
		return
	}
	b := img.Bounds()
	x := (c.opts.Width - b.Dx()) / 2
	y := c.opts.Height - c.px(float64(c.opts.Settings.Subtitle.BottomOffset)) - b.Dy()
	draw.Draw(dst, image.Rect(x, y, x+b.Dx(), y+b.Dy()), img, b.Min, draw.Over)
}

func (c *Compositor) subtitle(l *script.Line) (image.Image, error) {
	text := l.Subtitle()
	if text == "" {
		return nil, fmt.Errorf("line %d: empty subtitle", l.ID)
	}
	s := c.opts.Settings
	size := s.Font.Size * c.k

	maxPx := c.px(float64(s.Subtitle.MaxWidthPixels))
	if s.Subtitle.MaxWidthPercent > 0 {
		if p := c.opts.Width * s.Subtitle.MaxWidthPercent / 100; maxPx == 0 || p < maxPx {
			maxPx = p
		}
	}
	lines := []string{text}
	if cols := subtitle.MaxColumns(maxPx, size); cols > 0 {
		lines = subtitle.Wrap(text, cols)
	}

	st := TextStyle{
		Size:         size,
		Fill:         colorOr(s.Font.Color, color.RGBA{255, 255, 255, 255}),
		OutlineWidth: c.px(float64(s.Subtitle.OutlineWidth)),
		InnerWidth:   c.px(float64(s.Subtitle.InnerOutlineWidth)),
	}
	switch s.Font.OutlineColor {
	case config.OutlineFromCharacter:
		var charColor string
		if def := c.opts.Roster.Character(l.Character); def != nil {
			charColor = def.Color
		}
		charColor = s.Colors.Character(l.Character, charColor)
		st.Outline = colorOr(charColor, color.RGBA{0, 0, 0, 255})
	case "none", "":
	default:
		st.Outline = colorOr(s.Font.OutlineColor, color.RGBA{0, 0, 0, 255})
	}
	if ic := s.Font.InnerOutlineColor; ic != "" && ic != "none" {
		st.Inner = colorOr(ic, color.RGBA{255, 255, 255, 255})
	}
	return c.opts.Typesetter.Render(lines, st)
}
