// Package evidence explains a similarity hit with keyword overlaps between a
// submitted design and a corpus record.
package evidence

import (
	"fmt"
	"strings"

	"github.com/agenthands/copycheck/internal/core/model"
)

const MaxItems = 5

// Prefixes that open every evidence string; the summary renderer groups by them.
const (
	ThemePrefix     = "theme similarity: "
	MechanicPrefix  = "mechanic similarity: "
	GameplayPrefix  = "gameplay similarity: "
	ComponentPrefix = "component similarity: "
)

type family struct {
	name     string
	keywords []string
}

var themeFamilies = []family{
	{"fantasy", []string{"fantasy", "magic", "dragon", "wizard", "medieval"}},
	{"sci-fi", []string{"science", "space", "future", "robot", "alien"}},
	{"war", []string{"war", "battle", "military", "combat", "conflict"}},
	{"economic", []string{"economic", "trade", "business", "money", "market"}},
	{"adventure", []string{"adventure", "exploration", "quest", "journey"}},
	{"horror", []string{"horror", "zombie", "monster", "dark", "evil"}},
	{"historical", []string{"ancient", "historical", "civilization", "empire"}},
}

var mechanicFamilies = []family{
	{"card game", []string{"card", "deck", "hand", "draw"}},
	{"tile placement", []string{"tile", "placement", "grid", "board"}},
	{"dice", []string{"dice", "roll", "random"}},
	{"strategy", []string{"strategy", "tactical", "planning"}},
	{"cooperative", []string{"cooperative", "collaboration", "team"}},
	{"competitive", []string{"competitive", "versus", "against"}},
	{"resource management", []string{"resource", "management", "collect"}},
	{"area control", []string{"area", "territory", "control", "expansion"}},
	{"worker placement", []string{"worker", "placement", "action"}},
	{"deck building", []string{"deck", "building", "construct"}},
}

var gameplayAspects = []family{
	{"win condition", []string{"win", "victory", "goal", "objective", "points"}},
	{"player interaction", []string{"player", "opponent", "interaction", "compete"}},
	{"turn structure", []string{"turn", "round", "phase", "sequence"}},
	{"difficulty", []string{"easy", "simple", "complex", "difficult", "strategy"}},
	{"duration", []string{"quick", "fast", "long", "time", "minutes"}},
}

var componentKeywords = []string{"miniature", "component", "board", "token", "marker", "piece"}

// Extract lists at most MaxItems overlaps in a fixed order: theme families,
// mechanic families, gameplay aspects, components. Matching is by lower-cased
// substring.
func Extract(design model.Design, record model.GameRecord) []string {
	theme := strings.ToLower(design.Theme)
	category := strings.ToLower(record.Category)
	mechanics := strings.ToLower(strings.Join(design.Mechanics, " "))
	mechanic := strings.ToLower(record.Mechanic)
	description := strings.ToLower(design.Description)
	recordDescription := strings.ToLower(record.Description)

	var out []string

	for _, f := range themeFamilies {
		if !f.presentIn(theme) || !f.presentIn(category) {
			continue
		}
		if shared := f.shared(theme, category); len(shared) > 0 {
			out = append(out, fmt.Sprintf("%s%s (keywords: %s)", ThemePrefix, f.name, strings.Join(shared, ", ")))
		} else {
			out = append(out, fmt.Sprintf("%s%s-like theme", ThemePrefix, f.name))
		}
	}

	for _, f := range mechanicFamilies {
		if !f.presentIn(mechanics) || !f.presentIn(mechanic) {
			continue
		}
		if shared := f.shared(mechanics, mechanic); len(shared) > 0 {
			out = append(out, fmt.Sprintf("%s%s (shared keywords: %s)", MechanicPrefix, f.name, strings.Join(shared, ", ")))
		} else {
			out = append(out, fmt.Sprintf("%s%s-like mechanics", MechanicPrefix, f.name))
		}
	}

	for _, f := range gameplayAspects {
		if shared := f.shared(description, recordDescription); len(shared) > 0 {
			out = append(out, fmt.Sprintf("%s%s (shared: %s)", GameplayPrefix, f.name, strings.Join(shared, ", ")))
		}
	}

	designText := theme + " " + mechanics + " " + description
	recordText := category + " " + mechanic + " " + recordDescription
	for _, kw := range componentKeywords {
		if strings.Contains(designText, kw) && strings.Contains(recordText, kw) {
			out = append(out, ComponentPrefix+kw)
		}
	}

	if len(out) > MaxItems {
		out = out[:MaxItems]
	}
	return out
}

func (f family) presentIn(text string) bool {
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (f family) shared(a, b string) []string {
	var out []string
	for _, kw := range f.keywords {
		if strings.Contains(a, kw) && strings.Contains(b, kw) {
			out = append(out, kw)
		}
	}
	return out
}
