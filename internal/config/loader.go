package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadSettings reads video settings from path. Files ending in .toml are
// decoded as TOML, everything else as YAML. Missing keys keep their defaults.
func LoadSettings(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := DecodeSettings(f, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return s, nil
}

// DecodeSettings decodes settings in the given format ("yaml" or "toml")
// on top of DefaultSettings and validates the result.
func DecodeSettings(r io.Reader, format string) (*Settings, error) {
	s := DefaultSettings()
	if format != "toml" {
		normalized, err := normalizeSettingsYAML(r)
		if err != nil {
			return nil, err
		}
		r = normalized
	}
	if err := decode(r, format, s); err != nil {
		return nil, err
	}
	if err := ValidateSettings(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadRoster reads characters.yaml (or .toml) from path.
func LoadRoster(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	r, err := DecodeRoster(f, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return r, nil
}

// DecodeRoster decodes and validates a character roster.
func DecodeRoster(r io.Reader, format string) (*Roster, error) {
	roster := &Roster{}
	if err := decode(r, format, roster); err != nil {
		return nil, err
	}
	if roster.Characters == nil {
		roster.Characters = map[string]*CharacterDefinition{}
	}
	roster.normalize()
	if err := ValidateRoster(roster); err != nil {
		return nil, err
	}
	return roster, nil
}

func decode(r io.Reader, format string, v any) error {
	switch format {
	case "toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return fmt.Errorf("decode yaml: %w", err)
		}
	}
	return nil
}

// colorFields are the fixed keys of the colors section. Other keys there
// are palette names and keep their spelling.
var colorFields = map[string]bool{
	"background":        true,
	"blackboard":        true,
	"blackboard_border": true,
	"text":              true,
}

// normalizeSettingsYAML rewrites the camelCase keys written by the template
// project (outlineColor, useImages, playbackRate...) to snake_case, so both
// spellings decode into Settings under strict field checking.
func normalizeSettingsYAML(r io.Reader) (io.Reader, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return strings.NewReader(""), nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(root.Content); i += 2 {
			section := root.Content[i]
			section.Value = snakeCase(section.Value)
			body := root.Content[i+1]
			if body.Kind != yaml.MappingNode {
				continue
			}
			for j := 0; j+1 < len(body.Content); j += 2 {
				key := body.Content[j]
				name := snakeCase(key.Value)
				if section.Value == "colors" && !colorFields[name] {
					continue
				}
				key.Value = name
			}
		}
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}

// snakeCase turns maxWidthPixels into max_width_pixels. Keys already in
// snake_case are returned unchanged.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}
