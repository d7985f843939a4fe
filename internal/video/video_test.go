package video

import (
	"bytes"
	"image"
	"strings"
	"testing"
)

func TestBuildAudioFilter(t *testing.T) {
	plan := AudioPlan{
		Voices: []AudioClip{
			{Path: "a.wav", Start: 1, Volume: 1, Tempo: 1.2},
			{Path: "b.wav", Start: 2.5, Volume: 1, Tempo: 1.2},
		},
		Effects:  []AudioClip{{Path: "ding.mp3", Start: 1, Volume: 0.5}},
		BGM:      &BGMTrack{Path: "bgm.mp3", Volume: 0.3, Loop: true},
		Duration: 10,
	}
	graph, label := BuildAudioFilter(plan, 1)

	want := "[1:a]atempo=1.2,adelay=1000|1000[v0];" +
		"[2:a]atempo=1.2,adelay=2500|2500[v1];" +
		"[3:a]adelay=1000|1000,volume=0.5[se0];" +
		"[4:a]volume=0.3[bgm];" +
		"[v0][v1][se0][bgm]amix=inputs=4:duration=longest:dropout_transition=0:normalize=0[aout]"
	if graph != want {
		t.Errorf("Unexpected graph:\n got %s\nwant %s", graph, want)
	}
	if label != "[aout]" {
		t.Errorf("Expected [aout], got %s", label)
	}

	if g, l := BuildAudioFilter(AudioPlan{}, 1); g != "" || l != "" {
		t.Errorf("Empty plan should produce no graph, got %q %q", g, l)
	}
}

func TestAtempoChain(t *testing.T) {
	tests := []struct {
		tempo float64
		want  string
	}{
		{0, ""},
		{1, ""},
		{1.2, "atempo=1.2"},
		{4, "atempo=2,atempo=2"},
		{0.25, "atempo=0.5,atempo=0.5"},
	}
	for _, tt := range tests {
		if got := strings.Join(atempoChain(tt.tempo), ","); got != tt.want {
			t.Errorf("atempoChain(%g) = %q, want %q", tt.tempo, got, tt.want)
		}
	}
}

func TestBuildArgs(t *testing.T) {
	p := EncodeParams{
		Width: 1920, Height: 1080, FPS: 30,
		Encoder: "libx264", Quality: 23,
		Output: "out.mp4",
		Audio: AudioPlan{
			Voices:   []AudioClip{{Path: "voices/a.wav", Start: 1, Tempo: 1.2}},
			BGM:      &BGMTrack{Path: "bgm/loop.mp3", Volume: 0.3, Loop: true},
			Duration: 12.5,
		},
	}
	args := strings.Join(BuildArgs(p), " ")

	for _, want := range []string{
		"-f rawvideo -pixel_format rgba -video_size 1920x1080 -framerate 30 -i -",
		"-i voices/a.wav -stream_loop -1 -i bgm/loop.mp3",
		"-map 0:v -map [aout]",
		"-c:v libx264 -pix_fmt yuv420p -crf 23 -preset medium",
		"-t 12.5 out.mp4",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected %q in args:\n%s", want, args)
		}
	}
}

func TestBuildArgsSilent(t *testing.T) {
	args := strings.Join(BuildArgs(EncodeParams{Width: 640, Height: 360, FPS: 24, Encoder: "h264_nvenc", Quality: 28, Output: "o.mp4"}), " ")
	if strings.Contains(args, "filter_complex") || strings.Contains(args, "[aout]") {
		t.Errorf("Silent video should not mix audio: %s", args)
	}
	if !strings.Contains(args, "-cq 28") {
		t.Errorf("Expected nvenc quality flag: %s", args)
	}
}

func TestQualityArgs(t *testing.T) {
	if got := strings.Join(qualityArgs("h264_videotoolbox", 75), " "); got != "-b:v 7500k" {
		t.Errorf("videotoolbox: got %q", got)
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4*2*4 || !bytes.Equal(buf.Bytes(), img.Pix) {
		t.Errorf("Unexpected raw output of %d bytes", buf.Len())
	}

	sub := img.SubImage(image.Rect(1, 0, 3, 2)).(*image.RGBA)
	buf.Reset()
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*2*4 {
		t.Errorf("Sub-image should be packed to 16 bytes, got %d", buf.Len())
	}
}
