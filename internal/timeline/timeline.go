package timeline

import (
	"github.com/ivlev/dialogvideo/internal/script"
)

// Options sets the padding around the spoken lines.
type Options struct {
	LeadIn int // frames before the first line
	Tail   int // frames after the last line
}

// State is what is happening at one frame.
type State struct {
	Line      *script.Line // nil when no line is active
	LineIndex int          // -1 when no line is active
	Scene     int
	// First frame of the active line's span.
	StartFrame int
	// True while the voice plays, false during the trailing pause.
	Speaking    bool
	FrameInLine int
}

// Active reports whether a line covers the frame.
func (s State) Active() bool {
	return s.Line != nil
}

// Timeline maps frames to lines. Line starts are computed once.
type Timeline struct {
	script *script.Script
	opts   Options
	starts []int // starts[i] = start of line i, starts[len] = end of last span
}

// New builds the prefix-sum table of line starts for s.
func New(s *script.Script, opts Options) *Timeline {
	starts := make([]int, len(s.Lines)+1)
	starts[0] = opts.LeadIn
	for i := range s.Lines {
		starts[i+1] = starts[i] + s.Lines[i].SpanFrames()
	}
	return &Timeline{script: s, opts: opts, starts: starts}
}

// Script returns the script the timeline was built from.
func (t *Timeline) Script() *script.Script {
	return t.script
}

// Options returns the padding the timeline was built with.
func (t *Timeline) Options() Options {
	return t.opts
}

// StartFrame returns the first frame of line i.
func (t *Timeline) StartFrame(i int) int {
	return t.starts[i]
}

// Span returns the half-open frame range [start, end) of line i,
// trailing pause included.
func (t *Timeline) Span(i int) (start, end int) {
	return t.starts[i], t.starts[i+1]
}

// SpeechEnd returns the frame where the voice of line i stops.
func (t *Timeline) SpeechEnd(i int) int {
	return t.starts[i] + t.script.Lines[i].DurationFrames
}

// ContentFrames is the sum of all spans, padding excluded.
func (t *Timeline) ContentFrames() int {
	return t.starts[len(t.starts)-1] - t.opts.LeadIn
}

// TotalFrames is lead-in + all spans + tail.
func (t *Timeline) TotalFrames() int {
	return t.starts[len(t.starts)-1] + t.opts.Tail
}

// Len returns the number of lines.
func (t *Timeline) Len() int {
	return len(t.script.Lines)
}

// Resolve scans the lines forward and returns the state at frame.
// The first span containing frame wins. Past the last span the scene of
// the last line persists; before the first one the first declared scene
// is reported.
func (t *Timeline) Resolve(frame int) State {
	st := State{LineIndex: -1, Scene: t.script.FirstSceneID()}

	for i := range t.script.Lines {
		line := &t.script.Lines[i]
		start, end := t.starts[i], t.starts[i+1]

		if frame >= start && frame < end {
			st.Line = line
			st.LineIndex = i
			st.Scene = line.Scene
			st.StartFrame = start
			st.Speaking = frame < start+line.DurationFrames
			st.FrameInLine = frame - start
			return st
		}
		if frame < start {
			// Lead-in: nothing has started yet.
			return st
		}
		st.Scene = line.Scene
	}
	return st
}
