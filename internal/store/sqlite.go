package store

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultSlot is the slot name used when none is configured.
const DefaultSlot = "chat-db"

// SQLiteSubstrate stores the snapshot blob in a single row of a key-value
// table, keyed by the slot name. It is the server-side stand-in for the
// original single-slot sink.
type SQLiteSubstrate struct {
	db   *sql.DB
	slot string
}

func NewSQLiteSubstrate(dataSourceName, slot string) (*SQLiteSubstrate, error) {
	if slot == "" {
		slot = DefaultSlot
	}
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteSubstrate{db: db, slot: slot}
	if err = s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSubstrate) Close() error {
	return s.db.Close()
}

func (s *SQLiteSubstrate) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS snapshot (
        slot TEXT PRIMARY KEY,
        data TEXT NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteSubstrate) Load() *Snapshot {
	var data string
	err := s.db.QueryRow("SELECT data FROM snapshot WHERE slot = ?", s.slot).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("failed to read snapshot slot %q, starting empty: %v", s.slot, err)
		}
		return NewSnapshot()
	}
	return decodeSnapshot([]byte(data))
}

func (s *SQLiteSubstrate) Save(snap *Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("failed to serialize snapshot, write dropped: %v", err)
		return
	}
	_, err = s.db.Exec(
		"INSERT INTO snapshot (slot, data) VALUES (?, ?) ON CONFLICT(slot) DO UPDATE SET data = excluded.data",
		s.slot, string(data),
	)
	if err != nil {
		log.Printf("failed to write snapshot slot %q, write dropped: %v", s.slot, err)
	}
}
