package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		filepath.Join(dir, "intro.yaml"),
		filepath.Join(dir, "features.yml"),
		filepath.Join(dir, "ending.yaml"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("lines: []\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}
	// Not a script
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	latest, err := FindLatest(dir)
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}
}

func TestFindLatestEmptyDir(t *testing.T) {
	if _, err := FindLatest(t.TempDir()); err == nil {
		t.Error("Expected error for empty directory")
	}
}
