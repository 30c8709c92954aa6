package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/copycheck/internal/core/model"
	"golang.org/x/text/encoding/charmap"
)

var csvColumns = map[string][]string{
	"title":       {"name", "title"},
	"game_id":     {"game_id", "id"},
	"category":    {"category", "categories"},
	"mechanic":    {"mechanic", "mechanics"},
	"description": {"description"},
}

// ReadCSV reads a bgg_data.csv style file. Input that is not valid UTF-8 is
// decoded as Latin-1. Rows that cannot be parsed are logged and skipped.
func ReadCSV(r io.Reader) ([]model.GameRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", model.ErrConfiguration, err)
	}
	if !utf8.Valid(data) {
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: decode latin-1: %v", model.ErrConfiguration, err)
		}
	}

	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv header: %v", model.ErrConfiguration, err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for field, names := range csvColumns {
			for _, n := range names {
				if h == n {
					if _, seen := cols[field]; !seen {
						cols[field] = i
					}
				}
			}
		}
	}
	if _, ok := cols["title"]; !ok {
		if _, ok := cols["description"]; !ok {
			return nil, fmt.Errorf("%w: csv header has neither name nor description column", model.ErrConfiguration)
		}
	}

	var records []model.GameRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			log.Printf("Warning: %v", &model.MalformedRecordError{Line: line, Err: err})
			continue
		}
		line, _ := cr.FieldPos(0)

		get := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		gameID, err := parseGameID(get("game_id"))
		if err != nil {
			log.Printf("Warning: %v", &model.MalformedRecordError{Line: line, Err: err})
			continue
		}

		records = append(records, model.GameRecord{
			Title:       titleOrDefault(get("title")),
			GameID:      gameID,
			Category:    get("category"),
			Mechanic:    get("mechanic"),
			Description: get("description"),
		})
	}
	return records, nil
}
