package engine

import (
	"os"
	"path/filepath"

	"github.com/ivlev/dialogvideo/internal/timeline"
	"github.com/ivlev/dialogvideo/internal/video"
)

// BuildAudioPlan places every voice and sound effect at the start of its
// line. Voices play at rate; files that do not exist are left out and
// returned so the caller can report them.
func BuildAudioPlan(p *Project, tl *timeline.Timeline, fps int, rate float64) (video.AudioPlan, []string) {
	var plan video.AudioPlan
	var missing []string

	exists := func(path string) bool {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
			return false
		}
		return true
	}

	lines := tl.Script().Lines
	for i := range lines {
		l := &lines[i]
		start := float64(tl.StartFrame(i)) / float64(fps)
		if l.VoiceFile != "" {
			if path := filepath.Join(p.VoicesDir(), l.VoiceFile); exists(path) {
				plan.Voices = append(plan.Voices, video.AudioClip{Path: path, Start: start, Volume: 1, Tempo: rate})
			}
		}
		if l.SE != nil {
			if path := filepath.Join(p.SEDir(), l.SE.Src); exists(path) {
				plan.Effects = append(plan.Effects, video.AudioClip{Path: path, Start: start, Volume: l.SE.Gain()})
			}
		}
	}

	if b := tl.Script().BGM; b != nil {
		if path := filepath.Join(p.BGMDir(), b.Src); exists(path) {
			plan.BGM = &video.BGMTrack{Path: path, Volume: b.Gain(), Loop: b.Loops()}
		}
	}

	plan.Duration = float64(tl.TotalFrames()) / float64(fps)
	return plan, missing
}
