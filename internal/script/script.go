package script

// Script is a complete dialogue: scenes, ordered lines and optional BGM.
type Script struct {
	Version string  `yaml:"version"`
	Scenes  []Scene `yaml:"scenes"`
	Lines   []Line  `yaml:"lines"`
	BGM     *BGM    `yaml:"bgm,omitempty"`
}

// Scene groups lines that share a background treatment.
type Scene struct {
	ID              int        `yaml:"id"`
	Title           string     `yaml:"title"`
	Background      Background `yaml:"background"`
	BackgroundColor string     `yaml:"background_color,omitempty"`
	BackgroundImage string     `yaml:"background_image,omitempty"` // relative to public/
}

type Background string

const (
	BackgroundGradient Background = "gradient"
	BackgroundSolid    Background = "solid"
	BackgroundImage    Background = "image"
)

// Line is one utterance of one character.
type Line struct {
	ID        int    `yaml:"id"`
	Character string `yaml:"character"`
	Text      string `yaml:"text"`                   // fed to speech synthesis
	Display   string `yaml:"display_text,omitempty"` // subtitle override
	Scene     int    `yaml:"scene"`
	VoiceFile string `yaml:"voice_file"`
	// Frames of voiced audio, already divided by the playback rate.
	DurationFrames int      `yaml:"duration_frames"`
	PauseAfter     int      `yaml:"pause_after"`
	Emotion        string   `yaml:"emotion,omitempty"`
	Visual         *Visual  `yaml:"visual,omitempty"`
	SE             *SoundFX `yaml:"se,omitempty"`
}

// Subtitle returns the text shown on screen.
func (l *Line) Subtitle() string {
	if l.Display != "" {
		return l.Display
	}
	return l.Text
}

// SpanFrames is the voiced duration plus the trailing pause.
func (l *Line) SpanFrames() int {
	return l.DurationFrames + l.PauseAfter
}

type VisualType string

const (
	VisualNone   VisualType = "none"
	VisualImage  VisualType = "image"
	VisualText   VisualType = "text"
	VisualQRCode VisualType = "qrcode"
)

// Visual is an overlay shown in the content area while a line is active.
type Visual struct {
	Type      VisualType `yaml:"type"`
	Src       string     `yaml:"src,omitempty"` // relative to public/content/
	Text      string     `yaml:"text,omitempty"`
	FontSize  float64    `yaml:"font_size,omitempty"`
	Color     string     `yaml:"color,omitempty"`
	Animation string     `yaml:"animation,omitempty"`
}

// SoundFX is played once when its line starts.
type SoundFX struct {
	Src    string   `yaml:"src"` // relative to public/se/
	Volume *float64 `yaml:"volume,omitempty"`
}

// Gain returns the configured volume or 1.
func (s *SoundFX) Gain() float64 {
	if s.Volume == nil {
		return 1
	}
	return *s.Volume
}

// BGM is looped under the whole video.
type BGM struct {
	Src    string   `yaml:"src"` // relative to public/bgm/
	Volume *float64 `yaml:"volume,omitempty"`
	Loop   *bool    `yaml:"loop,omitempty"`
}

// Gain returns the configured volume or 0.3.
func (b *BGM) Gain() float64 {
	if b.Volume == nil {
		return 0.3
	}
	return *b.Volume
}

// Loops reports whether the track repeats; true unless disabled.
func (b *BGM) Loops() bool {
	return b.Loop == nil || *b.Loop
}

// SceneByID returns the scene with the given id. Unknown ids fall back to
// the first declared scene; nil only when there are no scenes at all.
func (s *Script) SceneByID(id int) *Scene {
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return &s.Scenes[i]
		}
	}
	if len(s.Scenes) == 0 {
		return nil
	}
	return &s.Scenes[0]
}

// FirstSceneID is the id reported before any line starts.
func (s *Script) FirstSceneID() int {
	if len(s.Scenes) == 0 {
		return 0
	}
	return s.Scenes[0].ID
}

// SceneLines returns the indexes into Lines of every line in scene id,
// in script order.
func (s *Script) SceneLines(id int) []int {
	var idx []int
	for i := range s.Lines {
		if s.Lines[i].Scene == id {
			idx = append(idx, i)
		}
	}
	return idx
}

// IndexOf returns the position of the line with the given id, or -1.
func (s *Script) IndexOf(lineID int) int {
	for i := range s.Lines {
		if s.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
