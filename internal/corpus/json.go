package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/agenthands/copycheck/internal/core/model"
)

// Keys accepted for each field, English first, then the Korean dataset keys.
var jsonKeys = map[string][]string{
	"title":       {"title", "name", "이름"},
	"game_id":     {"game_id", "id", "게임ID"},
	"category":    {"category", "categories", "카테고리"},
	"mechanic":    {"mechanic", "mechanics", "mechanisms", "메커니즘"},
	"description": {"description", "Description", "설명"},
}

// ReadJSON reads an array of game objects. List values (JSON arrays or
// Python-style "['a', 'b']" strings) are joined with ", ".
func ReadJSON(r io.Reader) ([]model.GameRecord, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse json corpus: %v", model.ErrConfiguration, err)
	}

	records := make([]model.GameRecord, 0, len(raw))
	for i, obj := range raw {
		get := func(field string) any {
			for _, k := range jsonKeys[field] {
				if v, ok := obj[k]; ok && v != nil {
					return v
				}
			}
			return nil
		}

		gameID, err := parseGameID(scalarString(get("game_id")))
		if err != nil {
			log.Printf("Warning: %v", &model.MalformedRecordError{Line: i + 1, Err: err})
			continue
		}

		records = append(records, model.GameRecord{
			Title:       titleOrDefault(scalarString(get("title"))),
			GameID:      gameID,
			Category:    listString(get("category")),
			Mechanic:    listString(get("mechanic")),
			Description: scalarString(get("description")),
		})
	}
	return records, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func listString(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s := strings.TrimSpace(scalarString(p)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			return strings.Join(splitPyList(s), ", ")
		}
		return t
	default:
		return scalarString(v)
	}
}

// splitPyList splits a Python list literal of strings.
func splitPyList(s string) []string {
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(inner, ",") {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
