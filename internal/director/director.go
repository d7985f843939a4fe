package director

import (
	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/script"
)

// Stage is the set of characters on screen. Empty strings mean the side
// is vacant.
type Stage struct {
	Left  string
	Right string
}

// Count returns how many characters are on stage.
func (s Stage) Count() int {
	n := 0
	if s.Left != "" {
		n++
	}
	if s.Right != "" {
		n++
	}
	return n
}

// Has reports whether id is on stage.
func (s Stage) Has(id string) bool {
	return id != "" && (s.Left == id || s.Right == id)
}

// SideOf returns the side id stands on.
func (s Stage) SideOf(id string) (config.Side, bool) {
	switch {
	case id == "":
		return "", false
	case s.Left == id:
		return config.SideLeft, true
	case s.Right == id:
		return config.SideRight, true
	}
	return "", false
}

func (s *Stage) put(side config.Side, id string) {
	if side == config.SideRight {
		s.Right = id
	} else {
		s.Left = id
	}
}

// Director decides which characters appear in each scene.
type Director struct {
	Script *script.Script
	Roster *config.Roster

	speakers map[int][]string
}

// NewDirector creates a Director and indexes the speakers of every scene.
func NewDirector(s *script.Script, roster *config.Roster) *Director {
	d := &Director{
		Script:   s,
		Roster:   roster,
		speakers: make(map[int][]string),
	}
	for _, line := range s.Lines {
		if !contains(d.speakers[line.Scene], line.Character) {
			d.speakers[line.Scene] = append(d.speakers[line.Scene], line.Character)
		}
	}
	return d
}

// Speakers returns the distinct characters of a scene in order of first
// appearance.
func (d *Director) Speakers(sceneID int) []string {
	return d.speakers[sceneID]
}

// DefaultSide returns the configured side of a character. Characters
// missing from the roster stand on the left.
func (d *Director) DefaultSide(id string) config.Side {
	if c := d.Roster.Character(id); c != nil && c.Position == config.SideRight {
		return config.SideRight
	}
	return config.SideLeft
}

// Cast picks at most two characters for the scene. active is the line
// being played, or nil. When the scene has more than two speakers the
// active one is always on stage.
func (d *Director) Cast(sceneID int, active *script.Line) Stage {
	chars := d.speakers[sceneID]

	var stage Stage
	switch len(chars) {
	case 0:
		return stage
	case 1:
		stage.put(d.DefaultSide(chars[0]), chars[0])
		return stage
	case 2:
		return d.castPair(chars)
	}

	anchor := d.anchorLine(sceneID, active)
	if anchor < 0 {
		return stage
	}
	speaker := d.Script.Lines[anchor].Character
	side := d.DefaultSide(speaker)
	stage.put(side, speaker)

	if other := d.partnerOf(sceneID, anchor); other != "" {
		stage.put(side.Opposite(), other)
	}
	return stage
}

// castPair seats two speakers at their default sides, borrowing from the
// other bucket when both want the same side.
func (d *Director) castPair(chars []string) Stage {
	var left, right []string
	for _, c := range chars {
		if d.DefaultSide(c) == config.SideRight {
			right = append(right, c)
		} else {
			left = append(left, c)
		}
	}

	var stage Stage
	if len(left) > 0 {
		stage.Left = left[0]
	}
	if len(right) > 0 {
		stage.Right = right[0]
	}
	if stage.Left == "" {
		stage.Left = firstOtherThan(right, stage.Right)
	}
	if stage.Right == "" {
		stage.Right = firstOtherThan(left, stage.Left)
	}
	if stage.Left == "" || stage.Right == "" {
		stage.Left, stage.Right = chars[0], chars[1]
	}
	return stage
}

// anchorLine returns the index of the line the cast is built around: the
// active line when it belongs to the scene, otherwise the scene's first
// line.
func (d *Director) anchorLine(sceneID int, active *script.Line) int {
	lines := d.Script.SceneLines(sceneID)
	if len(lines) == 0 {
		return -1
	}
	if active != nil && active.Scene == sceneID {
		for _, i := range lines {
			if d.Script.Lines[i].ID == active.ID {
				return i
			}
		}
	}
	return lines[0]
}

// partnerOf finds the nearest speaker of the scene who differs from the
// speaker of line anchor, looking backward first and then forward.
func (d *Director) partnerOf(sceneID, anchor int) string {
	speaker := d.Script.Lines[anchor].Character
	lines := d.Script.SceneLines(sceneID)

	pos := 0
	for k, i := range lines {
		if i == anchor {
			pos = k
			break
		}
	}

	for k := pos - 1; k >= 0; k-- {
		if c := d.Script.Lines[lines[k]].Character; c != speaker {
			return c
		}
	}
	for k := pos + 1; k < len(lines); k++ {
		if c := d.Script.Lines[lines[k]].Character; c != speaker {
			return c
		}
	}
	return ""
}

func firstOtherThan(ids []string, taken string) string {
	for _, id := range ids {
		if id != taken {
			return id
		}
	}
	return ""
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
