package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindLatest finds the most recently modified script file in dir.
func FindLatest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scripts directory: %w", err)
	}

	type candidate struct {
		path string
		mod  int64
	}
	var scripts []candidate
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		scripts = append(scripts, candidate{filepath.Join(dir, entry.Name()), info.ModTime().UnixNano()})
	}

	if len(scripts) == 0 {
		return "", fmt.Errorf("no script files found in %s", dir)
	}

	// Newest first
	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].mod > scripts[j].mod
	})

	return scripts[0].path, nil
}
