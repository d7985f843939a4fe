package engine

import (
	"bytes"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/dialogvideo/internal/director"
	"github.com/ivlev/dialogvideo/internal/timeline"
)

// Plan is the resolved timeline as data: what the renderer will draw and
// when, without drawing it.
type Plan struct {
	ID          string     `yaml:"id"`
	CreatedAt   time.Time  `yaml:"created_at"`
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	FPS         int        `yaml:"fps"`
	LeadIn      int        `yaml:"lead_in_frames"`
	Tail        int        `yaml:"tail_frames"`
	TotalFrames int        `yaml:"total_frames"`
	Duration    float64    `yaml:"duration"`
	Lines       []PlanLine `yaml:"lines"`
}

// PlanLine is one line placed on the timeline.
type PlanLine struct {
	ID         int    `yaml:"id"`
	Scene      int    `yaml:"scene"`
	Character  string `yaml:"character"`
	StartFrame int    `yaml:"start_frame"`
	SpeechEnd  int    `yaml:"speech_end"`
	EndFrame   int    `yaml:"end_frame"`
	Left       string `yaml:"left,omitempty"`
	Right      string `yaml:"right,omitempty"`
	Emotion    string `yaml:"emotion,omitempty"`
	Visual     string `yaml:"visual,omitempty"`
	Subtitle   string `yaml:"subtitle"`
}

// BuildPlan resolves every line of tl: its frames, the cast on stage while
// it plays and what it shows.
func BuildPlan(tl *timeline.Timeline, d *director.Director, width, height, fps int) *Plan {
	opts := tl.Options()
	plan := &Plan{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Width:       width,
		Height:      height,
		FPS:         fps,
		LeadIn:      opts.LeadIn,
		Tail:        opts.Tail,
		TotalFrames: tl.TotalFrames(),
		Duration:    float64(tl.TotalFrames()) / float64(fps),
	}

	lines := tl.Script().Lines
	for i := range lines {
		l := &lines[i]
		start, end := tl.Span(i)
		stage := d.Cast(l.Scene, l)
		pl := PlanLine{
			ID:         l.ID,
			Scene:      l.Scene,
			Character:  l.Character,
			StartFrame: start,
			SpeechEnd:  tl.SpeechEnd(i),
			EndFrame:   end,
			Left:       stage.Left,
			Right:      stage.Right,
			Emotion:    l.Emotion,
			Subtitle:   l.Subtitle(),
		}
		if l.Visual != nil {
			pl.Visual = string(l.Visual.Type)
		}
		plan.Lines = append(plan.Lines, pl)
	}
	return plan
}

// WritePlan stores plan as YAML.
func WritePlan(path string, plan *Plan) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
