package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const testSettings = `video:
  width: 64
  height: 36
  fps: 10
  lead_in_frames: 5
  tail_frames: 3
character:
  use_images: false
`

const testCharacters = `characters:
  aoi:
    name: Aoi
    color: "#ff6699"
    position: left
    voice_instruct: bright
  rin:
    name: Rin
    color: "#3366ff"
    position: right
`

const testScript = `lines:
  - id: 1
    character: aoi
    text: やっほー
    voice_file: aoi_1.wav
    duration_frames: 10
    pause_after: 2
  - id: 2
    character: rin
    text: こんにちは
    voice_file: rin_2.wav
    duration_frames: 8
`

func writeTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"video-settings.yaml": testSettings,
		"characters.yaml":     testCharacters,
		"script.yaml":         testScript,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPlanCommandPrintsYAML(t *testing.T) {
	dir := writeTestProject(t)
	out, _, err := runCLI(t, "plan", "--project", dir)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	var plan struct {
		TotalFrames int `yaml:"total_frames"`
		Lines       []struct {
			ID         int    `yaml:"id"`
			StartFrame int    `yaml:"start_frame"`
			Left       string `yaml:"left"`
			Right      string `yaml:"right"`
		} `yaml:"lines"`
	}
	if err := yaml.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("unmarshal plan: %v\n%s", err, out)
	}
	if plan.TotalFrames != 28 {
		t.Fatalf("expected 28 frames, got %d", plan.TotalFrames)
	}
	if len(plan.Lines) != 2 || plan.Lines[1].StartFrame != 17 {
		t.Fatalf("unexpected lines %+v", plan.Lines)
	}
	if plan.Lines[0].Left != "aoi" || plan.Lines[0].Right != "rin" {
		t.Fatalf("unexpected cast %+v", plan.Lines[0])
	}
}

func TestPlanCommandWritesFile(t *testing.T) {
	dir := writeTestProject(t)
	path := filepath.Join(t.TempDir(), "plan.yaml")
	out, _, err := runCLI(t, "plan", "-p", dir, "-o", path)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("expected output path in %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("plan file not written: %v", err)
	}
}

func TestSubtitlesCommand(t *testing.T) {
	dir := writeTestProject(t)
	out, _, err := runCLI(t, "subtitles", "-p", dir)
	if err != nil {
		t.Fatalf("subtitles: %v", err)
	}
	if !strings.Contains(out, "00:00:00,500 --> 00:00:01,500\nやっほー") {
		t.Fatalf("unexpected first cue:\n%s", out)
	}
	if !strings.Contains(out, "2\n00:00:01,700 --> 00:00:02,500") {
		t.Fatalf("unexpected second cue:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "subs")
	if _, _, err := runCLI(t, "subtitles", "-p", dir, "-o", path); err != nil {
		t.Fatalf("subtitles to file: %v", err)
	}
	if _, err := os.Stat(path + ".srt"); err != nil {
		t.Fatalf("expected .srt extension to be added: %v", err)
	}
}

func TestInspectCommand(t *testing.T) {
	dir := writeTestProject(t)
	out, _, err := runCLI(t, "inspect", "-p", dir)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Speaker", "aoi", "17-25", "[WARN] 2 files missing", "no mouth data"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestVoicesManifestCommand(t *testing.T) {
	dir := writeTestProject(t)
	if _, _, err := runCLI(t, "voices", "manifest", "-p", dir); err != nil {
		t.Fatalf("voices manifest: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "public", "voices", "manifest.yaml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []struct {
		ID            int    `yaml:"id"`
		VoiceInstruct string `yaml:"voice_instruct"`
		OutputFile    string `yaml:"output_file"`
	}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if len(entries) != 2 || entries[0].VoiceInstruct != "bright" || entries[1].OutputFile != "rin_2.wav" {
		t.Fatalf("unexpected manifest %+v", entries)
	}
}

func TestVoicesSyncHelpDescribesSampling(t *testing.T) {
	stdout, _, err := runCLI(t, "voices", "sync", "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(stdout, "48000*playback_rate/fps") {
		t.Errorf("Expected sampling note in help, got:\n%s", stdout)
	}
}

func TestAssetsCommandPlaceholders(t *testing.T) {
	dir := writeTestProject(t)
	out, _, err := runCLI(t, "assets", "-p", dir)
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	if !strings.Contains(out, "Rin") || !strings.Contains(out, "placeholders are drawn") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestMissingProjectFails(t *testing.T) {
	if _, _, err := runCLI(t, "plan", "-p", t.TempDir()); err == nil {
		t.Fatal("expected error for an empty directory")
	}
}

func TestRenderOptionsConfig(t *testing.T) {
	dir := writeTestProject(t)
	opts := renderOptions{preset: "9:16", encoder: "libx264", from: 2, to: 10}
	ctx := newCommandContext(&dir, new(string))
	proj, err := ctx.ensureProject()
	if err != nil {
		t.Fatalf("load project: %v", err)
	}
	cfg, err := opts.config(proj)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Width != 1080 || cfg.Height != 1920 || cfg.Quality != 23 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !strings.HasPrefix(filepath.Base(cfg.OutputVideo), "script_") || filepath.Ext(cfg.OutputVideo) != ".mp4" {
		t.Fatalf("unexpected output name %s", cfg.OutputVideo)
	}

	if _, err := (renderOptions{preset: "1:1", encoder: "libx264"}).config(proj); err == nil {
		t.Fatal("expected unknown preset error")
	}
	if _, err := (renderOptions{encoder: "libx264", from: 5, to: 5}).config(proj); err == nil {
		t.Fatal("expected invalid range error")
	}
}

func TestDefaultQuality(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    int
	}{
		{"h264_videotoolbox", 0, 75},
		{"h264_nvenc", 0, 28},
		{"libx264", 0, 23},
		{"libx264", 18, 18},
	}
	for _, tt := range tests {
		if got := defaultQuality(tt.encoder, tt.quality); got != tt.want {
			t.Errorf("defaultQuality(%q, %d) = %d, want %d", tt.encoder, tt.quality, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "line", 3)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"line":3`) {
		t.Fatalf("unexpected log output %q", buf.String())
	}

	if _, err := newLogger(io.Discard, "loud", "text"); err == nil {
		t.Fatal("expected level error")
	}
	if _, err := newLogger(io.Discard, "info", "xml"); err == nil {
		t.Fatal("expected format error")
	}
}
