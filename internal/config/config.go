package config

// Config holds the runtime options of a single render.
type Config struct {
	ProjectDir   string
	ScriptPath   string
	OutputVideo  string
	Width        int
	Height       int
	FPS          int
	PlaybackRate float64
	LeadIn       *int // nil takes video.lead_in_frames
	Tail         *int // nil takes video.tail_frames
	Workers      int
	VideoEncoder string
	Quality      int
	FontPath     string
	ShowStats    bool
	BuildVersion string
	FromFrame    int
	ToFrame      int // exclusive, 0 = until the end
}

// FromSettings fills zero values of c, and nil padding, from the video
// section of s.
func (c *Config) FromSettings(s *Settings) {
	if c.Width == 0 {
		c.Width = s.Video.Width
	}
	if c.Height == 0 {
		c.Height = s.Video.Height
	}
	if c.FPS == 0 {
		c.FPS = s.Video.FPS
	}
	if c.PlaybackRate == 0 {
		c.PlaybackRate = s.Video.PlaybackRate
	}
	if c.LeadIn == nil {
		leadIn := s.Video.LeadInFrames
		c.LeadIn = &leadIn
	}
	if c.Tail == nil {
		tail := s.Video.TailFrames
		c.Tail = &tail
	}
	if c.FontPath == "" {
		c.FontPath = s.Font.Path
	}
}
