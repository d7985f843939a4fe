// Package subtitle builds subtitle cues from a dialogue timeline.
package subtitle

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/width"

	"github.com/ivlev/dialogvideo/internal/timeline"
)

// Cue is one subtitle shown while a line is voiced.
type Cue struct {
	Index     int
	Start     float64 // seconds
	End       float64 // seconds
	Character string
	Text      string
}

// Build returns one cue per line covering the voiced part of its span.
// Lines with an empty subtitle or zero duration are skipped. When maxCols
// is positive text is wrapped to that many display columns.
func Build(tl *timeline.Timeline, fps int, maxCols int) []Cue {
	lines := tl.Script().Lines
	cues := make([]Cue, 0, len(lines))
	for i := range lines {
		l := &lines[i]
		text := strings.TrimSpace(l.Subtitle())
		if text == "" || l.DurationFrames == 0 {
			continue
		}
		if maxCols > 0 {
			text = strings.Join(Wrap(text, maxCols), "\n")
		}
		cues = append(cues, Cue{
			Index:     len(cues) + 1,
			Start:     float64(tl.StartFrame(i)) / float64(fps),
			End:       float64(tl.SpeechEnd(i)) / float64(fps),
			Character: l.Character,
			Text:      text,
		})
	}
	return cues
}

// MaxColumns derives the wrap width from the subtitle box: a half-width
// column is taken to be half the font size wide.
func MaxColumns(maxWidthPixels int, fontSize float64) int {
	if maxWidthPixels <= 0 || fontSize <= 0 {
		return 0
	}
	return int(float64(maxWidthPixels) / (fontSize / 2))
}

// DisplayWidth counts wide and fullwidth runes as two columns.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// Wrap breaks text into lines of at most maxCols display columns. Explicit
// newlines are kept. Latin words are not split unless longer than a line.
func Wrap(text string, maxCols int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, wrapParagraph(para, maxCols)...)
	}
	return out
}

func wrapParagraph(para string, maxCols int) []string {
	if DisplayWidth(para) <= maxCols {
		return []string{para}
	}

	var lines []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, strings.TrimRight(cur.String(), " "))
			cur.Reset()
			curW = 0
		}
	}

	for _, tok := range tokens(para) {
		w := DisplayWidth(tok)
		if curW+w > maxCols {
			flush()
			if tok == " " {
				continue
			}
		}
		if w > maxCols {
			// Hard split of an overlong token.
			for _, r := range tok {
				rw := runeWidth(r)
				if curW+rw > maxCols {
					flush()
				}
				cur.WriteRune(r)
				curW += rw
			}
			continue
		}
		cur.WriteString(tok)
		curW += w
	}
	flush()
	return lines
}

// tokens splits text into runs of half-width non-space runes, single
// spaces and single wide runes. Wide scripts may break between any two
// characters.
func tokens(s string) []string {
	var toks []string
	var word strings.Builder
	end := func() {
		if word.Len() > 0 {
			toks = append(toks, word.String())
			word.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == ' ':
			end()
			toks = append(toks, " ")
		case runeWidth(r) == 2:
			end()
			toks = append(toks, string(r))
		default:
			word.WriteRune(r)
		}
	}
	end()
	return toks
}

// FormatSRTTimestamp formats seconds as HH:MM:SS,mmm.
func FormatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3600000
	ms %= 3600000
	m := ms / 60000
	ms %= 60000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// RenderSRT formats cues as an SRT document.
func RenderSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d\n", cue.Index))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", FormatSRTTimestamp(cue.Start), FormatSRTTimestamp(cue.End)))
		sb.WriteString(cue.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteSRT writes cues to an SRT file.
func WriteSRT(path string, cues []Cue) error {
	return os.WriteFile(path, []byte(RenderSRT(cues)), 0644)
}
