package video

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AudioClip is a file placed at Start seconds on the output timeline.
type AudioClip struct {
	Path   string
	Start  float64
	Volume float64
	Tempo  float64 // 0 or 1 plays at normal speed
}

// BGMTrack plays under the whole video.
type BGMTrack struct {
	Path   string
	Volume float64
	Loop   bool
}

// AudioPlan lists everything mixed into the soundtrack.
type AudioPlan struct {
	Voices   []AudioClip
	Effects  []AudioClip
	BGM      *BGMTrack
	Duration float64 // seconds, caps the output
}

// Empty reports whether the plan has no audio inputs.
func (a AudioPlan) Empty() bool {
	return len(a.Voices) == 0 && len(a.Effects) == 0 && a.BGM == nil
}

// InputArgs returns the -i arguments in the order BuildAudioFilter expects:
// voices, effects, then BGM.
func (a AudioPlan) InputArgs() []string {
	var args []string
	for _, c := range a.Voices {
		args = append(args, "-i", c.Path)
	}
	for _, c := range a.Effects {
		args = append(args, "-i", c.Path)
	}
	if a.BGM != nil {
		if a.BGM.Loop {
			args = append(args, "-stream_loop", "-1")
		}
		args = append(args, "-i", a.BGM.Path)
	}
	return args
}

// BuildAudioFilter returns a filter_complex graph mixing the plan and the
// label of its output. Input indexes start at first. Voices are sped up by
// their tempo and delayed to their start; amix does not normalize, so each
// input keeps its own volume.
func BuildAudioFilter(a AudioPlan, first int) (graph string, label string) {
	if a.Empty() {
		return "", ""
	}

	var parts, labels []string
	idx := first
	for i, c := range a.Voices {
		var chain []string
		chain = append(chain, atempoChain(c.Tempo)...)
		chain = append(chain, adelay(c.Start))
		if c.Volume != 0 && c.Volume != 1 {
			chain = append(chain, "volume="+formatFloat(c.Volume))
		}
		l := fmt.Sprintf("[v%d]", i)
		parts = append(parts, fmt.Sprintf("[%d:a]%s%s", idx, strings.Join(chain, ","), l))
		labels = append(labels, l)
		idx++
	}
	for i, c := range a.Effects {
		l := fmt.Sprintf("[se%d]", i)
		parts = append(parts, fmt.Sprintf("[%d:a]%s,volume=%s%s", idx, adelay(c.Start), formatFloat(c.Volume), l))
		labels = append(labels, l)
		idx++
	}
	if a.BGM != nil {
		parts = append(parts, fmt.Sprintf("[%d:a]volume=%s[bgm]", idx, formatFloat(a.BGM.Volume)))
		labels = append(labels, "[bgm]")
	}

	parts = append(parts, fmt.Sprintf("%samix=inputs=%d:duration=longest:dropout_transition=0:normalize=0[aout]",
		strings.Join(labels, ""), len(labels)))
	return strings.Join(parts, ";"), "[aout]"
}

// atempoChain splits a tempo into atempo steps within ffmpeg's 0.5..2.0
// range per filter.
func atempoChain(t float64) []string {
	if t <= 0 || t == 1 {
		return nil
	}
	var chain []string
	for t > 2 {
		chain = append(chain, "atempo=2")
		t /= 2
	}
	for t < 0.5 {
		chain = append(chain, "atempo=0.5")
		t /= 0.5
	}
	return append(chain, "atempo="+formatFloat(t))
}

func adelay(start float64) string {
	ms := int64(math.Round(start * 1000))
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("adelay=%d|%d", ms, ms)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
