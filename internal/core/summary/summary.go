// Package summary renders the human-readable analysis of a risk verdict.
package summary

import (
	"fmt"
	"strings"

	"github.com/agenthands/copycheck/internal/core/evidence"
	"github.com/agenthands/copycheck/internal/core/model"
)

const (
	maxFacetLines   = 5
	gamesForFacets  = 2
	noMatchesResult = "No similar games were found. The design appears highly original."
)

type facets struct {
	theme, mechanic, gameplay, component []string
}

// Render builds the summary from the risk level and the reported games, which
// must already be sorted by score.
func Render(level model.RiskLevel, games []model.SimilarGame) string {
	if len(games) == 0 {
		return noMatchesResult
	}

	top := games[0]
	f := collect(games)

	var parts []string
	pct := fmt.Sprintf("%.1f%%", top.SimilarityScore)
	switch level {
	case model.HighRisk:
		parts = append(parts,
			fmt.Sprintf("**High copyright risk** (max similarity: %s)", pct),
			fmt.Sprintf("Very high similarity to '%s'.", top.Title))
	case model.Caution:
		parts = append(parts,
			fmt.Sprintf("**Copyright caution** (max similarity: %s)", pct),
			fmt.Sprintf("Similar to '%s' and others.", top.Title))
	case model.LowRisk:
		parts = append(parts,
			fmt.Sprintf("**Low copyright risk** (max similarity: %s)", pct),
			fmt.Sprintf("Slight similarity to '%s' and others.", top.Title))
	default:
		parts = append(parts,
			fmt.Sprintf("**No copyright risk** (max similarity: %s)", pct),
			"Similarity to existing games is low; the design appears original.")
	}

	parts = appendFacet(parts, "Theme similarity", f.theme, true)
	parts = appendFacet(parts, "Mechanic similarity", f.mechanic, true)
	parts = appendFacet(parts, "Gameplay similarity", f.gameplay, true)
	parts = appendFacet(parts, "Component similarity", f.component, false)

	parts = append(parts, "\n**Specific improvement directions:**")
	parts = append(parts, recommendations(level, top.Title, f)...)

	return strings.Join(parts, "\n")
}

func collect(games []model.SimilarGame) facets {
	var f facets
	n := gamesForFacets
	if len(games) < n {
		n = len(games)
	}
	for _, g := range games[:n] {
		for _, e := range g.OverlappingElements {
			switch {
			case strings.HasPrefix(e, evidence.ThemePrefix):
				f.theme = append(f.theme, e)
			case strings.HasPrefix(e, evidence.MechanicPrefix):
				f.mechanic = append(f.mechanic, e)
			case strings.HasPrefix(e, evidence.GameplayPrefix):
				f.gameplay = append(f.gameplay, e)
			case strings.HasPrefix(e, evidence.ComponentPrefix):
				f.component = append(f.component, e)
			}
		}
	}
	return f
}

func appendFacet(parts []string, title string, items []string, list bool) []string {
	if len(items) == 0 {
		return parts
	}
	parts = append(parts, fmt.Sprintf("\n**%s:** %d found", title, len(items)))
	if list {
		for _, it := range head(items) {
			parts = append(parts, "  • "+it)
		}
	}
	return parts
}

func recommendations(level model.RiskLevel, topTitle string, f facets) []string {
	var recs []string
	switch level {
	case model.HighRisk:
		recs = append(recs, "**Urgent changes required:**")
		if len(f.theme) > 0 {
			recs = append(recs, fmt.Sprintf("- Change the theme: %d theme elements overlap with existing games", len(f.theme)))
			recs = appendBranches(recs, f.theme, "")
		}
		if len(f.mechanic) > 0 {
			recs = append(recs, fmt.Sprintf("- Redesign the core rules: %d mechanics are similar", len(f.mechanic)))
			recs = appendBranches(recs, f.mechanic, "")
		}
	case model.Caution:
		recs = append(recs, "**Recommended differentiation:**")
		if len(f.theme) > 0 {
			recs = append(recs, fmt.Sprintf("- Differentiate the theme: consider changing these %d elements", len(f.theme)))
			recs = appendBranches(recs, f.theme, " → move to a distinct setting or world")
		}
		if len(f.mechanic) > 0 {
			recs = append(recs, fmt.Sprintf("- Innovate the rules: add original elements to these %d mechanics", len(f.mechanic)))
			recs = appendBranches(recs, f.mechanic, " → introduce new rules or variants")
		}
		if len(f.gameplay) > 0 {
			recs = append(recs, fmt.Sprintf("- Refine the gameplay: differentiate these %d elements", len(f.gameplay)))
			recs = appendBranches(recs, f.gameplay, " → introduce a distinct win condition or play style")
		}
	default:
		recs = append(recs,
			"**Maintain current direction:**",
			"- Keep developing the current original direction",
			fmt.Sprintf("- Minor similarities with '%s' can still be differentiated further", topTitle))
	}
	return recs
}

func appendBranches(recs, items []string, suffix string) []string {
	for _, it := range head(items) {
		recs = append(recs, "  └ "+it+suffix)
	}
	return recs
}

func head(items []string) []string {
	if len(items) > maxFacetLines {
		return items[:maxFacetLines]
	}
	return items
}
