package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
)

// EncodeParams describes one output file.
type EncodeParams struct {
	Width, Height int
	FPS           int
	Encoder       string // ffmpeg video codec, e.g. libx264
	Quality       int
	Output        string
	Audio         AudioPlan

	// Release is called with each frame once it has been written.
	Release func(*image.RGBA)
}

// VideoEncoder turns a stream of frames into a video file. Every received
// frame must be handed to p.Release when it is no longer needed.
type VideoEncoder interface {
	Encode(ctx context.Context, frames <-chan *image.RGBA, p EncodeParams) error
}

// FFmpegEncoder pipes raw RGBA frames into a system ffmpeg process and mixes
// the audio plan in the same invocation.
type FFmpegEncoder struct{}

// Encode reads frames until the channel is closed and waits for ffmpeg to
// finish. On error the caller must cancel ctx so producers stop.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames <-chan *image.RGBA, p EncodeParams) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", BuildArgs(p)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	var writeErr error
	for img := range frames {
		if writeErr == nil {
			writeErr = writeRawRGBA(stdin, img)
		}
		if p.Release != nil {
			p.Release(img)
		}
		if writeErr != nil {
			break
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, tail(out.Bytes(), 2048))
	}
	if writeErr != nil {
		return fmt.Errorf("write raw error: %w", writeErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// BuildArgs returns the ffmpeg command line for p: raw frames on stdin
// (input 0), then one input per audio clip.
func BuildArgs(p EncodeParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", strconv.Itoa(p.FPS),
		"-i", "-",
	}
	args = append(args, p.Audio.InputArgs()...)

	graph, label := BuildAudioFilter(p.Audio, 1)
	if graph != "" {
		args = append(args, "-filter_complex", graph)
	}
	args = append(args, "-map", "0:v")
	if label != "" {
		args = append(args, "-map", label, "-c:a", "aac", "-b:a", "192k")
	}

	args = append(args, "-c:v", p.Encoder, "-pix_fmt", "yuv420p")
	args = append(args, qualityArgs(p.Encoder, p.Quality)...)
	if p.Audio.Duration > 0 {
		args = append(args, "-t", formatFloat(p.Audio.Duration))
	}
	args = append(args, p.Output)
	return args
}

func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no constant-quality mode on every version; 75 -> 7.5 Mbit/s.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", strconv.Itoa(quality)}
	default: // libx264
		return []string{"-crf", strconv.Itoa(quality), "-preset", "medium"}
	}
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	if img == nil {
		return errors.New("nil frame")
	}
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}
