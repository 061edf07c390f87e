// Copyright 2025 Content Forge, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS content_records (
	content_id TEXT PRIMARY KEY,
	parent_id  TEXT,
	created_at TEXT NOT NULL,
	record     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_content_records_parent
	ON content_records (parent_id) WHERE parent_id IS NOT NULL;
`

// SQLiteStore persists records in a local sqlite database. The full record is
// stored as a JSON document; content_id and parent_id are lifted into columns
// for lookups and lineage queries.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path and prepares
// the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", rec.ContentID, err)
	}

	var parent any
	if rec.ParentID != "" {
		parent = rec.ParentID
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_records (content_id, parent_id, created_at, record) VALUES (?, ?, ?, ?)`,
		rec.ContentID, parent, rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"), string(doc))
	if err != nil {
		return fmt.Errorf("store record %q: %w", rec.ContentID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, contentID string) (Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM content_records WHERE content_id = ?`, contentID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load record %q: %w", contentID, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %q: %w", contentID, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Children(ctx context.Context, parentID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM content_records WHERE parent_id = ? ORDER BY created_at, content_id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("load children of %q: %w", parentID, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan child of %q: %w", parentID, err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decode child of %q: %w", parentID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children of %q: %w", parentID, err)
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
