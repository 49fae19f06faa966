// Package sqlite implements record.Store on SQLite. Each record is one row
// keyed by table and id, holding its wire values as a JSON object.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tobsdb/tdbprop/internal/record"
	"github.com/tobsdb/tdbprop/pkg"
)

//go:embed schema.sql
var schemaSQL string

// DBFile is the database file name created inside the data directory.
const DBFile = "records.db"

var ErrClosed = errors.New("store is closed")

// Store persists wire records in SQLite.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

var _ record.Store = (*Store)(nil)

// Open creates dataDir if needed and opens (or creates) the database in it.
// An empty dataDir means the current directory.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFile))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	pkg.DebugLog("opened sqlite store", pkg.Fields("dir", dataDir))
	return &Store{db: db}, nil
}

// Close releases the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// generateUUID generates a new UUID v7 for record ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Save inserts or replaces the record. An empty id gets a fresh UUID v7.
func (s *Store) Save(ctx context.Context, table, id string, data map[string]any) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return "", ErrClosed
	}
	if table == "" {
		return "", errors.New("No table specified")
	}
	if id == "" {
		id = generateUUID()
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", table, id, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (table_name, record_id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (table_name, record_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		table, id, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("save %s/%s: %w", table, id, err)
	}
	return id, nil
}

// Load returns the stored wire values. Numbers come back as json.Number so
// integers keep full precision.
func (s *Store) Load(ctx context.Context, table, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE table_name = ? AND record_id = ?`, table, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", record.ErrNotFound, table, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", table, id, err)
	}

	return decodeData(raw)
}

// Delete removes the record. Deleting a missing record returns
// record.ErrNotFound.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE table_name = ? AND record_id = ?`, table, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", record.ErrNotFound, table, id)
	}
	return nil
}

// Ids lists the record ids of table in id order. UUID v7 ids sort by
// creation time.
func (s *Store) Ids(ctx context.Context, table string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id FROM records WHERE table_name = ? ORDER BY record_id`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func decodeData(raw string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
