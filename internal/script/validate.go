package script

import (
	"errors"
	"fmt"

	"github.com/ivlev/dialogvideo/internal/config"
)

var knownAnimations = map[string]bool{
	"": true, "none": true, "fadeIn": true, "slideUp": true,
	"slideLeft": true, "zoomIn": true, "bounce": true,
}

// Validate checks a script against a roster. Problems that rendering can
// degrade around (unknown scene, unknown emotion) come back as warnings;
// everything else is joined into the returned error.
func Validate(s *Script, roster *config.Roster) (warnings []string, err error) {
	if len(s.Lines) == 0 {
		return nil, ErrNoLines
	}

	scenes := make(map[int]bool, len(s.Scenes))
	var errs []error
	for _, sc := range s.Scenes {
		if scenes[sc.ID] {
			errs = append(errs, fmt.Errorf("scene %d: duplicate id", sc.ID))
		}
		scenes[sc.ID] = true
		switch sc.Background {
		case BackgroundGradient, BackgroundSolid, "":
		case BackgroundImage:
			if sc.BackgroundImage == "" {
				errs = append(errs, fmt.Errorf("scene %d: background image without background_image", sc.ID))
			}
		default:
			warnings = append(warnings, fmt.Sprintf("scene %d: unknown background %q, using solid", sc.ID, sc.Background))
		}
	}

	prevID := 0
	for i := range s.Lines {
		l := &s.Lines[i]
		if i > 0 && l.ID <= prevID {
			errs = append(errs, fmt.Errorf("line %d: ids must be strictly increasing (previous %d)", l.ID, prevID))
		}
		prevID = l.ID

		if l.DurationFrames < 0 || l.PauseAfter < 0 {
			errs = append(errs, fmt.Errorf("line %d: negative duration or pause", l.ID))
		}
		if l.Text == "" && l.Display == "" {
			errs = append(errs, fmt.Errorf("line %d: empty text", l.ID))
		}
		if l.VoiceFile == "" {
			errs = append(errs, fmt.Errorf("line %d: missing voice_file", l.ID))
		}
		if roster != nil {
			if roster.Character(l.Character) == nil {
				warnings = append(warnings, fmt.Sprintf("line %d: character %q is not in the roster and will not be drawn", l.ID, l.Character))
			}
			if !roster.HasEmotion(l.Emotion) {
				warnings = append(warnings, fmt.Sprintf("line %d: unknown emotion %q", l.ID, l.Emotion))
			}
		}
		if !scenes[l.Scene] {
			warnings = append(warnings, fmt.Sprintf("line %d: scene %d is not declared, falling back to the first scene", l.ID, l.Scene))
		}
		if v := l.Visual; v != nil {
			if err := validateVisual(v); err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", l.ID, err))
			}
		}
		if l.SE != nil && l.SE.Src == "" {
			errs = append(errs, fmt.Errorf("line %d: se without src", l.ID))
		}
	}

	if s.BGM != nil && s.BGM.Src == "" {
		errs = append(errs, errors.New("bgm: missing src"))
	}

	return warnings, errors.Join(errs...)
}

func validateVisual(v *Visual) error {
	switch v.Type {
	case VisualNone:
	case VisualImage:
		if v.Src == "" {
			return errors.New("image visual without src")
		}
	case VisualText, VisualQRCode:
		if v.Text == "" {
			return fmt.Errorf("%s visual without text", v.Type)
		}
	default:
		return fmt.Errorf("unknown visual type %q", v.Type)
	}
	if !knownAnimations[v.Animation] {
		return fmt.Errorf("unknown animation %q", v.Animation)
	}
	if v.Color != "" && !config.IsHexColor(v.Color) {
		return fmt.Errorf("invalid visual color %q", v.Color)
	}
	return nil
}
