package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/agenthands/copycheck/internal/core/model"
	_ "modernc.org/sqlite"
)

// DefaultQuery must return title, game_id, category, mechanic, description in
// that order.
const DefaultQuery = `SELECT name, game_id, category, mechanic, description FROM games ORDER BY rowid`

// ReadSQLite reads the corpus from a SQLite database opened read-only. Rows
// are numbered from 1 in query order; a row that cannot be read is logged and
// skipped.
func ReadSQLite(ctx context.Context, path, query string) ([]model.GameRecord, error) {
	if query == "" {
		query = DefaultQuery
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", model.ErrConfiguration, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query corpus: %v", model.ErrConfiguration, err)
	}
	defer rows.Close()

	var records []model.GameRecord
	for n := 1; rows.Next(); n++ {
		var title, gameID, category, mechanic, description sql.NullString
		if err := rows.Scan(&title, &gameID, &category, &mechanic, &description); err != nil {
			log.Printf("Warning: %v", &model.MalformedRecordError{Line: n, Err: err})
			continue
		}
		id, err := parseGameID(gameID.String)
		if err != nil {
			log.Printf("Warning: %v", &model.MalformedRecordError{Line: n, Err: err})
			continue
		}
		records = append(records, model.GameRecord{
			Title:       titleOrDefault(title.String),
			GameID:      id,
			Category:    category.String,
			Mechanic:    mechanic.String,
			Description: description.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate corpus rows: %v", model.ErrConfiguration, err)
	}
	return records, nil
}
