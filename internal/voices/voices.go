// Package voices prepares the input of the external speech synthesis step
// and folds its output (wav files) back into the script.
package voices

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/lipsync"
	"github.com/ivlev/dialogvideo/internal/script"
	"github.com/ivlev/dialogvideo/internal/system"
)

// Entry is one utterance to synthesize.
type Entry struct {
	ID            int    `yaml:"id"`
	Character     string `yaml:"character"`
	VoiceInstruct string `yaml:"voice_instruct,omitempty"`
	Text          string `yaml:"text"`
	OutputFile    string `yaml:"output_file"`
}

// Manifest lists every line with the voice description of its character.
func Manifest(s *script.Script, roster *config.Roster) []Entry {
	entries := make([]Entry, 0, len(s.Lines))
	for _, l := range s.Lines {
		e := Entry{ID: l.ID, Character: l.Character, Text: l.Text, OutputFile: l.VoiceFile}
		if def := roster.Character(l.Character); def != nil {
			e.VoiceInstruct = def.VoiceInstruct
		}
		entries = append(entries, e)
	}
	return entries
}

// WriteManifest stores entries as YAML.
func WriteManifest(path string, entries []Entry) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Duration is one record of durations.json.
type Duration struct {
	ID       int     `json:"id"`
	File     string  `json:"file"`
	Duration float64 `json:"duration"`
	Frames   int     `json:"frames"`
}

// FramesFor converts a voice length to frames of video, taking the faster
// playback into account.
func FramesFor(seconds, rate float64, fps int) int {
	if rate <= 0 {
		rate = 1
	}
	return int(seconds / rate * float64(fps))
}

// Options configures Sync.
type Options struct {
	VoicesDir string
	FPS       int
	Rate      float64
	Workers   int
	Logger    *slog.Logger

	// Measure and Extract default to ffprobe and lipsync.Extract.
	Measure func(ctx context.Context, path string) (float64, error)
	Extract func(ctx context.Context, path string, fps int, rate float64) ([]bool, error)
}

// Result is what Sync measured.
type Result struct {
	Durations []Duration
	Mouth     lipsync.MouthData
	Missing   []string // voice files that do not exist
}

// Sync measures every voice file of s and extracts its mouth data. Missing
// files are reported, not fatal; any other failure aborts the run.
func Sync(ctx context.Context, s *script.Script, opts Options) (*Result, error) {
	if opts.Measure == nil {
		opts.Measure = system.GetAudioDuration
	}
	if opts.Extract == nil {
		opts.Extract = lipsync.Extract
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	type measured struct {
		ok    bool
		dur   Duration
		mouth []bool
	}
	out := make([]measured, len(s.Lines))
	missing := make([]bool, len(s.Lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range s.Lines {
		l := s.Lines[i]
		if l.VoiceFile == "" {
			continue
		}
		g.Go(func() error {
			path := filepath.Join(opts.VoicesDir, l.VoiceFile)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				missing[i] = true
				return nil
			}

			secs, err := opts.Measure(gctx, path)
			if err != nil {
				return fmt.Errorf("line %d: %w", l.ID, err)
			}
			mouth, err := opts.Extract(gctx, path, opts.FPS, opts.Rate)
			if err != nil {
				return fmt.Errorf("line %d: mouth data: %w", l.ID, err)
			}

			d := Duration{
				ID:       l.ID,
				File:     l.VoiceFile,
				Duration: math.Round(secs*100) / 100,
				Frames:   FramesFor(secs, opts.Rate, opts.FPS),
			}
			out[i] = measured{ok: true, dur: d, mouth: mouth}
			opts.Logger.Debug("Voice measured", "line", l.ID, "seconds", secs, "frames", d.Frames)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Mouth: lipsync.MouthData{}}
	for i, m := range out {
		if missing[i] {
			res.Missing = append(res.Missing, s.Lines[i].VoiceFile)
			continue
		}
		if !m.ok {
			continue
		}
		res.Durations = append(res.Durations, m.dur)
		res.Mouth[m.dur.File] = m.mouth
	}
	return res, nil
}

// Apply writes the measured frame counts into the script and returns how
// many lines changed.
func Apply(s *script.Script, durations []Duration) int {
	byID := make(map[int]int, len(durations))
	for _, d := range durations {
		byID[d.ID] = d.Frames
	}
	changed := 0
	for i := range s.Lines {
		f, ok := byID[s.Lines[i].ID]
		if !ok || s.Lines[i].DurationFrames == f {
			continue
		}
		s.Lines[i].DurationFrames = f
		changed++
	}
	return changed
}

// WriteDurations stores durations as indented JSON.
func WriteDurations(path string, durations []Duration) error {
	data, err := json.MarshalIndent(durations, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
