package model

import (
	"bytes"
	"encoding/json"
)

// ExtractedDesign is the JSON shape the LLM returns for design extraction and
// translation.
type ExtractedDesign struct {
	Title       string   `json:"title"`
	Theme       string   `json:"theme"`
	Mechanics   []string `json:"mechanics"`
	Description string   `json:"description"`
}

// GameElements are search-oriented fields pulled from a free-text plan for the
// approval workflow.
type GameElements struct {
	Title               string `json:"title"`
	SearchQuery         string `json:"search_query"`
	ThemeKeywords       string `json:"theme_keywords"`
	MechanicKeywords    string `json:"mechanic_keywords"`
	Description         string `json:"description"`
	TargetPlayers       string `json:"target_players"`
	EstimatedComplexity string `json:"estimated_complexity"`

	// Degraded is set when the LLM call failed and the fields were filled
	// from the raw plan text.
	Degraded bool `json:"-"`
}

// Design converts the elements into the structure the evidence extractor reads.
func (e GameElements) Design() Design {
	var mechanics []string
	if e.MechanicKeywords != "" {
		mechanics = []string{e.MechanicKeywords}
	}
	return Design{
		Title:       e.Title,
		Theme:       e.ThemeKeywords,
		Mechanics:   mechanics,
		Description: e.Description,
	}
}

// ReviewItem is one entry of the LLM re-evaluation of a candidate game.
type ReviewItem struct {
	GameIndex          int      `json:"game_index"`
	AdjustedSimilarity float64  `json:"adjusted_similarity"`
	RiskLevel          string   `json:"risk_level"`
	KeySimilarities    []string `json:"key_similarities"`
	Differences        []string `json:"differences"`
}

// ReviewResult wraps review items so structured-output providers get an object
// at the schema root.
type ReviewResult struct {
	Games []ReviewItem `json:"games"`
}

// UnmarshalJSON also accepts a bare array of items or a single item object,
// which models often return instead of the wrapper.
func (r *ReviewResult) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Games)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	if raw, ok := fields["games"]; ok {
		return json.Unmarshal(raw, &r.Games)
	}
	if _, ok := fields["game_index"]; ok {
		var item ReviewItem
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return err
		}
		r.Games = []ReviewItem{item}
	}
	return nil
}
