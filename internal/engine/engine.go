package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/dialogvideo/internal/assets"
	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/director"
	"github.com/ivlev/dialogvideo/internal/renderer"
	"github.com/ivlev/dialogvideo/internal/subtitle"
	"github.com/ivlev/dialogvideo/internal/system"
	"github.com/ivlev/dialogvideo/internal/timeline"
	"github.com/ivlev/dialogvideo/internal/video"
)

// VideoProject renders one project to a video file.
type VideoProject struct {
	Config   *config.Config
	Project  *Project
	Encoder  video.VideoEncoder
	Logger   *slog.Logger
	Out      io.Writer // progress and report lines
	Timeline *timeline.Timeline
	Director *director.Director
}

// NewVideoProject resolves the timeline and cast of proj. Zero values of
// cfg are filled from the project settings.
func NewVideoProject(cfg *config.Config, proj *Project, ve video.VideoEncoder) *VideoProject {
	cfg.FromSettings(proj.Settings)
	return &VideoProject{
		Config:   cfg,
		Project:  proj,
		Encoder:  ve,
		Logger:   slog.Default(),
		Out:      os.Stdout,
		Timeline: timeline.New(proj.Script, timeline.Options{LeadIn: *cfg.LeadIn, Tail: *cfg.Tail}),
		Director: director.NewDirector(proj.Script, proj.Roster),
	}
}

// Compositor returns a compositor drawing frames of this project.
func (p *VideoProject) Compositor() (*renderer.Compositor, error) {
	fontPath := p.Config.FontPath
	if fontPath != "" && !filepath.IsAbs(fontPath) {
		fontPath = filepath.Join(p.Project.Dir, fontPath)
	}
	ts, err := renderer.NewTypesetter(fontPath)
	if err != nil {
		return nil, err
	}
	return renderer.NewCompositor(renderer.Options{
		Settings:   p.Project.Settings,
		Roster:     p.Project.Roster,
		Timeline:   p.Timeline,
		Director:   p.Director,
		Inventory:  p.Project.Inventory,
		Library:    assets.NewLibrary(p.Project.PublicPath()),
		Mouth:      p.Project.Mouth,
		Typesetter: ts,
		Width:      p.Config.Width,
		Height:     p.Config.Height,
		FPS:        p.Config.FPS,
		Logger:     p.Logger,
	}), nil
}

// FrameRange returns the frames to render, clamped to the timeline.
func (p *VideoProject) FrameRange() (from, to int) {
	total := p.Timeline.TotalFrames()
	from, to = p.Config.FromFrame, p.Config.ToFrame
	if from < 0 {
		from = 0
	}
	if to <= 0 || to > total {
		to = total
	}
	return from, to
}

// Subtitles returns the subtitle cues of the project.
func (p *VideoProject) Subtitles() []subtitle.Cue {
	s := p.Project.Settings
	cols := subtitle.MaxColumns(s.Subtitle.MaxWidthPixels, s.Font.Size)
	return subtitle.Build(p.Timeline, p.Config.FPS, cols)
}

type renderedFrame struct {
	index int
	img   *image.RGBA
}

// Run renders all frames with a pool of workers and streams them, in order,
// into the encoder together with the mixed audio.
func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()

	from, to := p.FrameRange()
	frameCount := to - from
	if frameCount <= 0 {
		return errors.New("nothing to render: empty frame range")
	}

	comp, err := p.Compositor()
	if err != nil {
		return err
	}

	audio, missing := BuildAudioPlan(p.Project, p.Timeline, p.Config.FPS, p.Config.PlaybackRate)
	for _, m := range missing {
		p.Logger.Warn("Audio file missing, skipped", "path", m)
	}
	if from > 0 || to < p.Timeline.TotalFrames() {
		// Partial renders are for checking the picture only.
		audio = video.AudioPlan{}
	}
	audio.Duration = float64(frameCount) / float64(p.Config.FPS)
	if !audio.Empty() {
		if err := system.CheckFilterSupport("adelay", "atempo", "amix", "volume"); err != nil {
			return err
		}
	}

	workers := p.Config.Workers
	if workers < 1 {
		workers = system.DefaultWorkers()
	}
	if workers > frameCount {
		workers = frameCount
	}
	pool := system.NewFramePool(p.Config.Width, p.Config.Height, system.FrameBudget(p.Config.Width, p.Config.Height, workers))

	fmt.Fprintln(p.Out, "--- [PROJECT: DIALOG VIDEO] ---")
	fmt.Fprintf(p.Out, "[*] Script: %s | Lines: %d | Frames: %d (%.1fs)\n", p.Project.ScriptPath, p.Timeline.Len(), frameCount, audio.Duration)
	fmt.Fprintf(p.Out, "[*] Resolution: %dx%d @ %d FPS | Workers: %d | Buffers: %d\n", p.Config.Width, p.Config.Height, p.Config.FPS, workers, pool.Cap())
	fmt.Fprintf(p.Out, "[*] Encoder: %s | Audio: %d voices, %d effects\n", p.Config.VideoEncoder, len(audio.Voices), len(audio.Effects))
	fmt.Fprintln(p.Out, "-----------------------------")

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	results := make(chan renderedFrame, workers)
	frames := make(chan *image.RGBA, workers)

	// Frame indexes in order.
	g.Go(func() error {
		defer close(jobs)
		for i := from; i < to; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// 1. Render pool (CPU bound). A buffer is taken before the job so the
	// worker holding the next frame in order never waits for memory.
	var renderDone time.Time
	var rg errgroup.Group
	for w := 0; w < workers; w++ {
		rg.Go(func() error {
			for {
				img, err := pool.Get(gctx)
				if err != nil {
					return err
				}
				i, ok := <-jobs
				if !ok {
					pool.Put(img)
					return nil
				}
				comp.Draw(img, i)
				select {
				case results <- renderedFrame{index: i, img: img}:
				case <-gctx.Done():
					pool.Put(img)
					return gctx.Err()
				}
			}
		})
	}
	g.Go(func() error {
		err := rg.Wait()
		renderDone = time.Now()
		close(results)
		return err
	})

	// 2. Reorder: frames leave in index order.
	g.Go(func() error {
		defer close(frames)
		pending := make(map[int]*image.RGBA)
		next := from
		step := max(frameCount/10, 1)
		for r := range results {
			pending[r.index] = r.img
			for {
				img, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				select {
				case frames <- img:
				case <-gctx.Done():
					pool.Put(img)
					return gctx.Err()
				}
				next++
				if done := next - from; done%step == 0 || done == frameCount {
					fmt.Fprintf(p.Out, "[>] Ready: %d/%d\n", done, frameCount)
				}
			}
		}
		for _, img := range pending {
			pool.Put(img)
		}
		return nil
	})

	// 3. Encode (single ffmpeg process).
	g.Go(func() error {
		return p.Encoder.Encode(gctx, frames, video.EncodeParams{
			Width:   p.Config.Width,
			Height:  p.Config.Height,
			FPS:     p.Config.FPS,
			Encoder: p.Config.VideoEncoder,
			Quality: p.Config.Quality,
			Output:  p.Config.OutputVideo,
			Audio:   audio,
			Release: pool.Put,
		})
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	totalTime := time.Since(startTime)
	if p.Config.ShowStats {
		p.report(totalTime, renderDone.Sub(startTime), frameCount)
	}
	fmt.Fprintf(p.Out, "[+++] Done: %s\n", p.Config.OutputVideo)
	return nil
}

func (p *VideoProject) report(total, render time.Duration, frameCount int) {
	fps := float64(frameCount) / total.Seconds()
	fmt.Fprintf(p.Out, "--- [PERFORMANCE REPORT] ---\n"+
		"Build: %s\n"+
		"Total Time: %.2fs\n"+
		"Rendering (CPU): %.2fs\n"+
		"Effective FPS: %.2f\n"+
		"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), render.Seconds(), fps)

	entry := fmt.Sprintf("[%s] Build: %s | Script: %s | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Project.ScriptPath),
		frameCount,
		total.Seconds(),
		render.Seconds(),
		fps,
	)
	if err := appendLog(benchmarkLog, entry); err != nil {
		fmt.Fprintf(p.Out, "[!] Could not write %s: %v\n", benchmarkLog, err)
	}
}

const benchmarkLog = "benchmark.log"

// appendLog appends entry to the file at path, creating it when needed.
func appendLog(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
