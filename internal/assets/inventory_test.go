package assets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSelectImage(t *testing.T) {
	inv := Inventory{
		"aoi":      {"happy_close.png", "happy_open.png", "mouth_close.png", "mouth_open.png", "surprised_open.png"},
		"murasaki": {"mouth_close.png", "mouth_open.png"},
	}

	tests := []struct {
		id      string
		emotion string
		open    bool
		want    string
	}{
		{"aoi", "normal", true, "mouth_open.png"},
		{"aoi", "normal", false, "mouth_close.png"},
		{"aoi", "", true, "mouth_open.png"},
		{"aoi", "happy", true, "happy_open.png"},
		{"aoi", "happy", false, "happy_close.png"},
		{"aoi", "surprised", false, "surprised_open.png"},
		{"aoi", "surprised", true, "surprised_open.png"},
		{"aoi", "sad", true, "mouth_open.png"},
		{"aoi", "sad", false, "mouth_close.png"},
		{"murasaki", "happy", false, "mouth_close.png"},
		{"nobody", "happy", true, "mouth_open.png"},
	}

	for _, tt := range tests {
		if got := inv.SelectImage(tt.id, tt.emotion, tt.open); got != tt.want {
			t.Errorf("SelectImage(%s, %s, %v) = %s, want %s", tt.id, tt.emotion, tt.open, got, tt.want)
		}
	}
}

func TestSelectImageNormalIgnoresInventory(t *testing.T) {
	for _, inv := range []Inventory{nil, {}, {"aoi": {"normal_open.png"}}} {
		if got := inv.SelectImage("aoi", "normal", true); got != "mouth_open.png" {
			t.Errorf("Expected mouth_open.png, got %s", got)
		}
	}
}

func TestScanInventory(t *testing.T) {
	dir := t.TempDir()
	mk := func(rel string) {
		path := filepath.Join(dir, rel)
		os.MkdirAll(filepath.Dir(path), 0755)
		if err := os.WriteFile(path, []byte{}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	mk("aoi/mouth_open.png")
	mk("aoi/happy_open.png")
	mk("aoi/notes.txt")
	mk("murasaki/mouth_close.png")
	mk(".cache/mouth_open.png")
	mk("stray.png")

	inv, err := ScanInventory(dir)
	if err != nil {
		t.Fatalf("ScanInventory failed: %v", err)
	}

	want := Inventory{
		"aoi":      {"happy_open.png", "mouth_open.png"},
		"murasaki": {"mouth_close.png"},
	}
	if !reflect.DeepEqual(inv, want) {
		t.Errorf("Expected %v, got %v", want, inv)
	}

	again, _ := ScanInventory(dir)
	if !reflect.DeepEqual(inv, again) {
		t.Error("Scan should be deterministic")
	}
}

func TestScanInventoryMissingDir(t *testing.T) {
	inv, err := ScanInventory(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("Expected ErrNoImages, got %v", err)
	}
	if inv == nil || len(inv) != 0 {
		t.Errorf("Expected empty inventory, got %v", inv)
	}
}
