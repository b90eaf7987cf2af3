package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// openDB opens a sqlite database at path and applies the schema.
// ":memory:" is accepted for tests.
func openDB(path, schema string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite has a single writer; one connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if err := migrate(db, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// migrate executes each statement of the schema in order
func migrate(db *sql.DB, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func encodeList[T any](v []T) string {
	if v == nil {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList[T any](s string) []T {
	var v []T
	if s == "" {
		return []T{}
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return []T{}
	}
	return v
}
