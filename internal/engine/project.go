package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivlev/dialogvideo/internal/assets"
	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/lipsync"
	"github.com/ivlev/dialogvideo/internal/script"
)

// Conventional project layout.
const (
	SettingsFile   = "video-settings.yaml"
	CharactersFile = "characters.yaml"
	ScriptFile     = "script.yaml"
	ScriptsDir     = "scripts"
	PublicDir      = "public"
	MouthDataFile  = "mouth-data.json"
	DurationsFile  = "durations.json"
)

// Project is everything a render needs, loaded from one directory.
type Project struct {
	Dir        string
	Settings   *config.Settings
	Roster     *config.Roster
	Script     *script.Script
	ScriptPath string
	Inventory  assets.Inventory
	Mouth      lipsync.MouthData

	// Problems rendering works around.
	Warnings []string
}

// PublicPath joins elem below the project's public directory.
func (p *Project) PublicPath(elem ...string) string {
	return filepath.Join(append([]string{p.Dir, PublicDir}, elem...)...)
}

func (p *Project) VoicesDir() string { return p.PublicPath("voices") }
func (p *Project) SEDir() string     { return p.PublicPath("se") }
func (p *Project) BGMDir() string    { return p.PublicPath("bgm") }

// ImagesDir is where character folders live.
func (p *Project) ImagesDir() string {
	return p.PublicPath(p.Settings.Character.ImagesBasePath)
}

func (p *Project) MouthDataPath() string {
	return filepath.Join(p.VoicesDir(), MouthDataFile)
}

// LoadProject reads settings, roster, script, image inventory and mouth
// data from dir. scriptPath overrides the script location; when empty
// script.yaml is used, or the newest file in scripts/.
func LoadProject(dir, scriptPath string) (*Project, error) {
	p := &Project{Dir: dir}

	settings, err := loadSettings(dir)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = config.DefaultSettings()
		p.Warnings = append(p.Warnings, SettingsFile+" not found, using defaults")
	}
	if err := config.ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	p.Settings = settings

	roster, err := config.LoadRoster(filepath.Join(dir, CharactersFile))
	if err != nil {
		return nil, err
	}
	p.Roster = roster

	if scriptPath == "" {
		scriptPath, err = findScript(dir)
		if err != nil {
			return nil, err
		}
	}
	s, err := script.ReadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	warnings, err := script.Validate(s, roster)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", scriptPath, err)
	}
	p.Script = s
	p.ScriptPath = scriptPath
	p.Warnings = append(p.Warnings, warnings...)

	inv, err := assets.ScanInventory(p.ImagesDir())
	switch {
	case errors.Is(err, assets.ErrNoImages):
		p.Warnings = append(p.Warnings, fmt.Sprintf("%s not found, characters are drawn as placeholders", p.ImagesDir()))
	case err != nil:
		return nil, fmt.Errorf("scan images: %w", err)
	}
	p.Inventory = inv

	mouth, err := lipsync.Load(p.MouthDataPath())
	if err != nil {
		return nil, err
	}
	p.Mouth = mouth
	return p, nil
}

// loadSettings returns nil settings when neither a YAML nor a TOML file
// exists.
func loadSettings(dir string) (*config.Settings, error) {
	yamlPath := filepath.Join(dir, SettingsFile)
	tomlPath := filepath.Join(dir, "video-settings.toml")
	for _, path := range []string{yamlPath, tomlPath} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return config.LoadSettings(path)
	}
	return nil, nil
}

func findScript(dir string) (string, error) {
	path := filepath.Join(dir, ScriptFile)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	latest, err := script.FindLatest(filepath.Join(dir, ScriptsDir))
	if err != nil {
		return "", fmt.Errorf("no %s in %s and no scripts/ directory: %w", ScriptFile, dir, err)
	}
	return latest, nil
}
