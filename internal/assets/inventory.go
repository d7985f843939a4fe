package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoImages is returned when the images directory does not exist.
var ErrNoImages = errors.New("images directory not found")

// Inventory lists the PNG files available per character.
type Inventory map[string][]string

// ScanInventory enumerates dir/<character>/*.png. Hidden directories are
// skipped. File lists are sorted so repeated scans give the same result.
func ScanInventory(dir string) (Inventory, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Inventory{}, ErrNoImages
		}
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	inv := Inventory{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var pngs []string
		for _, f := range files {
			if !f.IsDir() && strings.HasSuffix(f.Name(), ".png") {
				pngs = append(pngs, f.Name())
			}
		}
		sort.Strings(pngs)
		inv[entry.Name()] = pngs
	}
	return inv, nil
}

// Has reports whether character id has the given file.
func (inv Inventory) Has(id, file string) bool {
	for _, f := range inv[id] {
		if f == file {
			return true
		}
	}
	return false
}

// SelectImage picks the image file for a character in a given emotion and
// mouth state:
//
//  1. "normal" or no emotion: mouth_{open|close}.png
//  2. {emotion}_{open|close}.png when present
//  3. {emotion}_open.png when present (no closed variant drawn)
//  4. mouth_{open|close}.png
func (inv Inventory) SelectImage(id, emotion string, mouthOpen bool) string {
	state := "close"
	if mouthOpen {
		state = "open"
	}
	neutral := "mouth_" + state + ".png"

	if emotion == "" || emotion == "normal" {
		return neutral
	}
	if f := emotion + "_" + state + ".png"; inv.Has(id, f) {
		return f
	}
	if f := emotion + "_open.png"; inv.Has(id, f) {
		return f
	}
	return neutral
}
