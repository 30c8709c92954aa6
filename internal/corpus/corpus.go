// Package corpus reads the reference game dataset from CSV, JSON or SQLite.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agenthands/copycheck/internal/core/model"
)

const unknownTitle = "Unknown Game"

// Load picks a reader by file extension.
func Load(ctx context.Context, path string) ([]model.GameRecord, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: corpus file %s not found", model.ErrConfiguration, path)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
		}
		defer f.Close()
		return ReadJSON(f)
	case ".db", ".sqlite", ".sqlite3":
		return ReadSQLite(ctx, path, "")
	default:
		return nil, fmt.Errorf("%w: unsupported corpus format %q", model.ErrConfiguration, filepath.Ext(path))
	}
}

// parseGameID accepts integers and integral floats ("13.0"). Empty is nil.
func parseGameID(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return nil, fmt.Errorf("invalid game_id %q", s)
	}
	v := int64(f)
	return &v, nil
}

func titleOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownTitle
	}
	return s
}
