package lipsync

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
)

func pcm(samples ...int16) []byte {
	var buf bytes.Buffer
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func repeat(v int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestAnalyze(t *testing.T) {
	var samples []int16
	samples = append(samples, repeat(0, 4)...)     // silent
	samples = append(samples, repeat(8000, 4)...)  // loud
	samples = append(samples, repeat(300, 4)...)   // below threshold
	samples = append(samples, repeat(-9000, 2)...) // partial chunk, loud

	got, err := Analyze(bytes.NewReader(pcm(samples...)), 4)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	want := []bool{false, true, false, true}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	got, err := Analyze(bytes.NewReader(nil), 4)
	if err != nil || len(got) != 0 {
		t.Errorf("Expected no frames, got %v (%v)", got, err)
	}
	if _, err := Analyze(bytes.NewReader(nil), 0); err == nil {
		t.Error("Expected error for zero chunk size")
	}
}

// flakyReader fails its first read, then serves rest.
type flakyReader struct {
	failed bool
	rest   *bytes.Reader
}

var errFlaky = errors.New("read failed")

func (r *flakyReader) Read(p []byte) (int, error) {
	if !r.failed {
		r.failed = true
		return 0, errFlaky
	}
	return r.rest.Read(p)
}

func TestAnalyzeAllDrainsOnError(t *testing.T) {
	r := &flakyReader{rest: bytes.NewReader(make([]byte, 4096))}
	data, err := analyzeAll(r, 100)
	if !errors.Is(err, errFlaky) {
		t.Fatalf("Expected read error, got %v", err)
	}
	if data != nil {
		t.Errorf("Expected no data on error, got %d frames", len(data))
	}
	if r.rest.Len() != 0 {
		t.Errorf("Expected reader drained, %d bytes left", r.rest.Len())
	}
}

func TestSamplesPerFrame(t *testing.T) {
	if got := SamplesPerFrame(30, 1.2); got != 1920 {
		t.Errorf("Expected 1920 samples, got %d", got)
	}
	if got := SamplesPerFrame(0, 1); got != 0 {
		t.Errorf("Expected 0 for invalid fps, got %d", got)
	}
}

func TestMouthOpen(t *testing.T) {
	data := []bool{true, false, true}

	tests := []struct {
		name        string
		data        []bool
		speaking    bool
		frameInLine int
		frame       int
		want        bool
	}{
		{"silent pause", data, false, 0, 0, false},
		{"data open", data, true, 0, 100, true},
		{"data closed", data, true, 1, 100, false},
		{"past data", data, true, 3, 100, false},
		{"flap open", nil, true, 0, 4, true},
		{"flap closed", nil, true, 0, 5, false},
		{"flap open again", nil, true, 0, 10, true},
	}
	for _, tt := range tests {
		if got := MouthOpen(tt.data, tt.speaking, tt.frameInLine, tt.frame); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestMouthDataSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mouth-data.json")
	md := MouthData{"01_aoi.wav": {true, false, true}}
	if err := md.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.Lookup("01_aoi.wav"); len(got) != 3 || !got[0] || got[1] {
		t.Errorf("Unexpected data %v", got)
	}
	if loaded.Lookup("missing.wav") != nil {
		t.Error("Expected nil for unknown voice file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	md, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil || len(md) != 0 {
		t.Errorf("Expected empty data, got %v (%v)", md, err)
	}
}
