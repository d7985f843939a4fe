package config

import (
	"errors"
	"fmt"
	"sort"
)

// Side is a horizontal stage position.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// CharacterDefinition is one entry of characters.yaml.
type CharacterDefinition struct {
	ID            string `yaml:"-" toml:"-"`
	Name          string `yaml:"name" toml:"name"`
	Description   string `yaml:"description" toml:"description"`
	VoiceInstruct string `yaml:"voice_instruct" toml:"voice_instruct"`
	Color         string `yaml:"color" toml:"color"`
	Position      Side   `yaml:"position" toml:"position"`
	FlipX         bool   `yaml:"flip_x,omitempty" toml:"flip_x"`
}

// Roster is the decoded characters.yaml.
type Roster struct {
	Characters map[string]*CharacterDefinition `yaml:"characters" toml:"characters"`
	Emotions   []string                        `yaml:"emotions" toml:"emotions"`
}

// Character returns the definition for id, or nil when id is unknown.
func (r *Roster) Character(id string) *CharacterDefinition {
	if r == nil {
		return nil
	}
	return r.Characters[id]
}

// IDs returns the character ids in sorted order.
func (r *Roster) IDs() []string {
	ids := make([]string, 0, len(r.Characters))
	for id := range r.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasEmotion reports whether e is declared. "normal" and "" are always valid.
func (r *Roster) HasEmotion(e string) bool {
	if e == "" || e == "normal" {
		return true
	}
	for _, known := range r.Emotions {
		if known == e {
			return true
		}
	}
	return false
}

func (r *Roster) normalize() {
	for id, c := range r.Characters {
		if c == nil {
			c = &CharacterDefinition{}
			r.Characters[id] = c
		}
		c.ID = id
		if c.Name == "" {
			c.Name = id
		}
	}
}

// ValidateRoster checks positions and colors of every character.
func ValidateRoster(r *Roster) error {
	if len(r.Characters) == 0 {
		return errors.New("characters: roster is empty")
	}
	var errs []error
	for _, id := range r.IDs() {
		c := r.Characters[id]
		if c.Position != SideLeft && c.Position != SideRight {
			errs = append(errs, fmt.Errorf("characters.%s: position must be left or right, got %q", id, c.Position))
		}
		if !IsHexColor(c.Color) {
			errs = append(errs, fmt.Errorf("characters.%s: invalid color %q", id, c.Color))
		}
	}
	return errors.Join(errs...)
}
