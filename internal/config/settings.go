package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// Settings is the global look of a video (video-settings.yaml).
type Settings struct {
	Font      FontSettings      `yaml:"font" toml:"font"`
	Subtitle  SubtitleSettings  `yaml:"subtitle" toml:"subtitle"`
	Character CharacterSettings `yaml:"character" toml:"character"`
	Content   ContentSettings   `yaml:"content" toml:"content"`
	Video     VideoSettings     `yaml:"video" toml:"video"`
	Colors    Colors            `yaml:"colors" toml:"colors"`
}

type FontSettings struct {
	Family string `yaml:"family" toml:"family"`
	// Path to a TTF/OTF file. Empty means the built-in bitmap face.
	Path              string  `yaml:"path" toml:"path"`
	Size              float64 `yaml:"size" toml:"size"`
	Weight            string  `yaml:"weight" toml:"weight"`
	Color             string  `yaml:"color" toml:"color"`
	OutlineColor      string  `yaml:"outline_color" toml:"outline_color"`
	InnerOutlineColor string  `yaml:"inner_outline_color" toml:"inner_outline_color"`
}

type SubtitleSettings struct {
	BottomOffset      int `yaml:"bottom_offset" toml:"bottom_offset"`
	MaxWidthPercent   int `yaml:"max_width_percent" toml:"max_width_percent"`
	MaxWidthPixels    int `yaml:"max_width_pixels" toml:"max_width_pixels"`
	OutlineWidth      int `yaml:"outline_width" toml:"outline_width"`
	InnerOutlineWidth int `yaml:"inner_outline_width" toml:"inner_outline_width"`
}

type CharacterSettings struct {
	Height         int    `yaml:"height" toml:"height"`
	UseImages      bool   `yaml:"use_images" toml:"use_images"`
	ImagesBasePath string `yaml:"images_base_path" toml:"images_base_path"`
}

type ContentSettings struct {
	TopPadding    int `yaml:"top_padding" toml:"top_padding"`
	SidePadding   int `yaml:"side_padding" toml:"side_padding"`
	BottomPadding int `yaml:"bottom_padding" toml:"bottom_padding"`
}

type VideoSettings struct {
	Width        int     `yaml:"width" toml:"width"`
	Height       int     `yaml:"height" toml:"height"`
	FPS          int     `yaml:"fps" toml:"fps"`
	PlaybackRate float64 `yaml:"playback_rate" toml:"playback_rate"`
	// Lines start at LeadInFrames. The template keeps its whole 1.5 s of
	// padding after the last line.
	LeadInFrames int     `yaml:"lead_in_frames" toml:"lead_in_frames"`
	TailFrames   int     `yaml:"tail_frames" toml:"tail_frames"`
}

type Colors struct {
	Background       string `yaml:"background" toml:"background"`
	Blackboard       string `yaml:"blackboard" toml:"blackboard"`
	BlackboardBorder string `yaml:"blackboard_border" toml:"blackboard_border"`
	Text             string `yaml:"text" toml:"text"`

	// Named holds every other key of the section, such as per-character
	// colors keyed by character id.
	Named map[string]string `yaml:",inline" toml:"-"`
}

// Character returns the palette color of character id, or fallback when
// the palette has none.
func (c Colors) Character(id, fallback string) string {
	if v, ok := c.Named[id]; ok {
		return v
	}
	return fallback
}

// OutlineFromCharacter is the outline_color value that paints subtitle
// outlines in the speaking character's color.
const OutlineFromCharacter = "character"

// DefaultSettings returns the settings shipped with the template project.
func DefaultSettings() *Settings {
	return &Settings{
		Font: FontSettings{
			Family:            "M PLUS Rounded 1c",
			Size:              70,
			Weight:            "900",
			Color:             "#ffffff",
			OutlineColor:      OutlineFromCharacter,
			InnerOutlineColor: "none",
		},
		Subtitle: SubtitleSettings{
			BottomOffset:      40,
			MaxWidthPercent:   55,
			MaxWidthPixels:    1000,
			OutlineWidth:      14,
			InnerOutlineWidth: 8,
		},
		Character: CharacterSettings{
			Height:         275,
			UseImages:      true,
			ImagesBasePath: "images",
		},
		Video: VideoSettings{
			Width:        1920,
			Height:       1080,
			FPS:          30,
			PlaybackRate: 1.2,
			LeadInFrames: 0,
			TailFrames:   45,
		},
		Colors: Colors{
			Background:       "#ffffff",
			Blackboard:       "#2d5a3d",
			BlackboardBorder: "#8B4513",
			Text:             "#ffffff",
		},
	}
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// IsHexColor reports whether s is a #rgb, #rrggbb or #rrggbbaa color.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// ValidateSettings checks that s describes a renderable video.
// It returns a joined error listing all problems found.
func ValidateSettings(s *Settings) error {
	var errs []error
	if s.Video.Width <= 0 || s.Video.Height <= 0 {
		errs = append(errs, fmt.Errorf("video: invalid size %dx%d", s.Video.Width, s.Video.Height))
	}
	if s.Video.Width%2 != 0 || s.Video.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("video: size %dx%d must be even for yuv420p", s.Video.Width, s.Video.Height))
	}
	if s.Video.FPS <= 0 {
		errs = append(errs, fmt.Errorf("video: fps must be positive, got %d", s.Video.FPS))
	}
	if s.Video.PlaybackRate <= 0 {
		errs = append(errs, fmt.Errorf("video: playback_rate must be positive, got %g", s.Video.PlaybackRate))
	}
	if s.Video.LeadInFrames < 0 || s.Video.TailFrames < 0 {
		errs = append(errs, errors.New("video: lead_in_frames and tail_frames must not be negative"))
	}
	if s.Font.Size <= 0 {
		errs = append(errs, fmt.Errorf("font: size must be positive, got %g", s.Font.Size))
	}
	if s.Character.Height <= 0 {
		errs = append(errs, fmt.Errorf("character: height must be positive, got %d", s.Character.Height))
	}
	for name, c := range map[string]string{
		"colors.background":        s.Colors.Background,
		"colors.blackboard":        s.Colors.Blackboard,
		"colors.blackboard_border": s.Colors.BlackboardBorder,
		"font.color":               s.Font.Color,
	} {
		if !IsHexColor(c) {
			errs = append(errs, fmt.Errorf("%s: invalid color %q", name, c))
		}
	}
	for _, name := range sortedKeys(s.Colors.Named) {
		if c := s.Colors.Named[name]; !IsHexColor(c) {
			errs = append(errs, fmt.Errorf("colors.%s: invalid color %q", name, c))
		}
	}
	if oc := s.Font.OutlineColor; oc != OutlineFromCharacter && oc != "none" && !IsHexColor(oc) {
		errs = append(errs, fmt.Errorf("font.outline_color: invalid color %q", oc))
	}
	return errors.Join(errs...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
