package model

import "strings"

// GameRecord is one row of the reference corpus. It is immutable once loaded.
type GameRecord struct {
	Title       string `json:"title"`
	GameID      *int64 `json:"game_id"`
	Category    string `json:"category"`
	Mechanic    string `json:"mechanic"`
	Description string `json:"description"`
}

// Design is a submitted board-game design, already reduced to the fields the
// similarity check consumes.
type Design struct {
	PlanID      int64    `json:"planId"`
	Title       string   `json:"title"`
	Theme       string   `json:"theme"`
	Mechanics   []string `json:"mechanics"`
	Description string   `json:"description"`
}

// QueryText joins the design fields in the same order the corpus candidate
// text uses (theme, mechanics, description).
func (d Design) QueryText() string {
	return d.Theme + "\n" + strings.Join(d.Mechanics, ", ") + "\n" + d.Description
}
