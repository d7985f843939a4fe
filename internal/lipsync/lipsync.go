// Package lipsync holds per-frame mouth open/closed data for voice files.
package lipsync

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
)

// Threshold is the RMS level above which the mouth is drawn open.
const Threshold = 0.02

// analysisSampleRate is the PCM rate ffmpeg resamples voices to.
const analysisSampleRate = 48000

// MouthData maps voice file names to mouth states, one per frame.
type MouthData map[string][]bool

// Load reads a mouth-data JSON file. A missing file yields empty data.
func Load(path string) (MouthData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return MouthData{}, nil
		}
		return nil, err
	}
	md := MouthData{}
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return md, nil
}

// Save writes md as JSON.
func (md MouthData) Save(path string) error {
	raw, err := json.Marshal(md)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// Lookup returns the sequence for a voice file, nil when unknown.
func (md MouthData) Lookup(voiceFile string) []bool {
	return md[voiceFile]
}

// MouthOpen decides the mouth state of a character. Without data the mouth
// flaps every 5 frames while speaking.
func MouthOpen(data []bool, speaking bool, frameInLine, frame int) bool {
	if !speaking {
		return false
	}
	if len(data) == 0 {
		return (frame/5)%2 == 0
	}
	if frameInLine < 0 || frameInLine >= len(data) {
		return false
	}
	return data[frameInLine]
}

// SamplesPerFrame is the number of source samples heard during one video
// frame when the voice is played back at rate.
func SamplesPerFrame(fps int, rate float64) int {
	if fps <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Round(float64(analysisSampleRate) * rate / float64(fps)))
}

// Extract decodes a voice file through ffmpeg and returns one mouth state
// per video frame.
func Extract(ctx context.Context, path string, fps int, rate float64) ([]bool, error) {
	chunk := SamplesPerFrame(fps, rate)
	if chunk <= 0 {
		return nil, fmt.Errorf("invalid fps %d or playback rate %g", fps, rate)
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", "-v", "error",
		"-i", path,
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ac", "1", "-ar", strconv.Itoa(analysisSampleRate),
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	data, readErr := analyzeAll(stdout, chunk)
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}
	if readErr != nil {
		return nil, readErr
	}
	return data, nil
}

// analyzeAll is Analyze that consumes the rest of r on error, so a writer
// on the other end of a pipe never blocks and the process can exit.
func analyzeAll(r io.Reader, samplesPerFrame int) ([]bool, error) {
	data, err := Analyze(r, samplesPerFrame)
	if err != nil {
		io.Copy(io.Discard, r)
		return nil, err
	}
	return data, nil
}

// Analyze reads mono s16le PCM from r and computes the RMS of every chunk
// of samplesPerFrame samples. A trailing partial chunk counts as a frame.
func Analyze(r io.Reader, samplesPerFrame int) ([]bool, error) {
	if samplesPerFrame <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", samplesPerFrame)
	}
	buf := make([]byte, samplesPerFrame*2)
	var out []bool
	for {
		n, err := io.ReadFull(r, buf)
		if n >= 2 {
			out = append(out, rms(buf[:n-n%2]) > Threshold)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func rms(pcm []byte) float64 {
	count := len(pcm) / 2
	sum := 0.0
	for i := 0; i < count; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
		sum += s * s
	}
	return math.Sqrt(sum / float64(count))
}
