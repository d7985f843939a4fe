package script

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/dialogvideo/internal/config"
)

const sampleYAML = `
scenes:
  - {id: 1, title: オープニング, background: gradient}
  - {id: 2, title: 特徴紹介, background: solid}
lines:
  - id: 1
    character: aoi
    text: やっほー
    scene: 1
    voice_file: 01_aoi.wav
    duration_frames: 160
    pause_after: 15
    visual: {type: text, text: "Remotion", font_size: 70, animation: zoomIn}
  - id: 2
    character: murasaki
    text: ギットハブからすぐに使えるの？
    display_text: GitHubからすぐに使えるの？
    scene: 2
    voice_file: 02_murasaki.wav
    duration_frames: 90
    pause_after: 0
    emotion: happy
    se: {src: chime.mp3, volume: 0.5}
bgm:
  src: background.mp3
`

func testRoster() *config.Roster {
	return &config.Roster{
		Characters: map[string]*config.CharacterDefinition{
			"aoi":      {ID: "aoi", Color: "#00BFFF", Position: config.SideRight},
			"murasaki": {ID: "murasaki", Color: "#9932CC", Position: config.SideLeft},
		},
		Emotions: []string{"normal", "happy"},
	}
}

func TestDecode(t *testing.T) {
	s, err := Decode(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Version != "1.0" {
		t.Errorf("Expected default version 1.0, got %s", s.Version)
	}
	if len(s.Lines) != 2 || len(s.Scenes) != 2 {
		t.Fatalf("Expected 2 lines and 2 scenes, got %d and %d", len(s.Lines), len(s.Scenes))
	}

	second := s.Lines[1]
	if second.Subtitle() != "GitHubからすぐに使えるの？" {
		t.Errorf("Subtitle should prefer display text, got %s", second.Subtitle())
	}
	if s.Lines[0].Subtitle() != "やっほー" {
		t.Errorf("Subtitle should fall back to text, got %s", s.Lines[0].Subtitle())
	}
	if second.SE.Gain() != 0.5 {
		t.Errorf("Expected SE volume 0.5, got %f", second.SE.Gain())
	}
	if s.BGM.Gain() != 0.3 || !s.BGM.Loops() {
		t.Errorf("Expected BGM defaults 0.3/loop, got %f/%v", s.BGM.Gain(), s.BGM.Loops())
	}
	if s.Lines[0].SpanFrames() != 175 {
		t.Errorf("Expected span 175, got %d", s.Lines[0].SpanFrames())
	}
}

func TestScriptWriteRead(t *testing.T) {
	s, err := Decode(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := WriteScript(s, path); err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}
	read, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if len(read.Lines) != len(s.Lines) {
		t.Fatalf("Line count mismatch: expected %d, got %d", len(s.Lines), len(read.Lines))
	}
	if read.Lines[1].Display != s.Lines[1].Display || read.Lines[0].Visual.Animation != "zoomIn" {
		t.Errorf("Round trip lost fields: %+v", read.Lines)
	}
}

func TestSceneByIDFallsBackToFirst(t *testing.T) {
	s := &Script{Scenes: []Scene{{ID: 3, Title: "a"}, {ID: 5, Title: "b"}}}
	if got := s.SceneByID(5); got.Title != "b" {
		t.Errorf("Expected scene b, got %s", got.Title)
	}
	if got := s.SceneByID(42); got.ID != 3 {
		t.Errorf("Unknown scene should fall back to first, got %d", got.ID)
	}
	if (&Script{}).SceneByID(1) != nil {
		t.Error("Expected nil scene for script without scenes")
	}
	if s.FirstSceneID() != 3 {
		t.Errorf("Expected first scene 3, got %d", s.FirstSceneID())
	}
}

func TestSceneLines(t *testing.T) {
	s := &Script{Lines: []Line{{ID: 1, Scene: 1}, {ID: 2, Scene: 2}, {ID: 3, Scene: 1}}}
	got := s.SceneLines(1)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Unexpected scene lines: %v", got)
	}
	if s.IndexOf(3) != 2 || s.IndexOf(9) != -1 {
		t.Error("IndexOf mismatch")
	}
}

func TestValidate(t *testing.T) {
	s, err := Decode(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	warnings, err := Validate(s, testRoster())
	if err != nil {
		t.Fatalf("Expected valid script, got %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	s.Lines[1].ID = 1
	s.Lines[1].Character = "zundamon"
	s.Lines[1].Scene = 9
	s.Lines[0].Visual.Type = "video"
	warnings, err = Validate(s, testRoster())
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"strictly increasing", "unknown visual type"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error containing %q, got %v", want, err)
		}
	}
	if len(warnings) != 2 {
		t.Errorf("Expected 2 warnings (character, scene), got %v", warnings)
	}
}

func TestValidateEmpty(t *testing.T) {
	if _, err := Validate(&Script{}, nil); !errors.Is(err, ErrNoLines) {
		t.Errorf("Expected ErrNoLines, got %v", err)
	}
}
