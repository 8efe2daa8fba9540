// Package irdb persists command sets in SQLite. A set is written as one
// atomic record: the set row plus one JSON command record per command,
// replaced wholesale inside a single transaction.
package irdb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/ircodec/internal/ir"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSetNotFound is returned when no stored set has the requested name.
var ErrSetNotFound = errors.New("command set not found")

// Store provides command set persistence over a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and runs any
// pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}
	// Not closing m: that would close the shared DB connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SetInfo summarizes a stored command set.
type SetInfo struct {
	SetID        string `json:"set_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CommandCount int    `json:"command_count"`
	UpdatedAtNs  int64  `json:"updated_at_ns"`
}

// SaveSet stores the whole set atomically, replacing any previous contents
// stored under the same name. A new set gets a generated id; an existing one
// keeps its id across saves.
func (s *Store) SaveSet(ctx context.Context, set *ir.CommandSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save set %q: %w", set.Name, err)
	}
	defer tx.Rollback()

	var setID string
	err = tx.QueryRowContext(ctx, "SELECT set_id FROM command_sets WHERE name = ?", set.Name).Scan(&setID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		setID = uuid.New().String()
	case err != nil:
		return fmt.Errorf("save set %q: %w", set.Name, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO command_sets (set_id, name, description, emitter_channel, receiver_channel, updated_at_ns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(set_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			emitter_channel = excluded.emitter_channel,
			receiver_channel = excluded.receiver_channel,
			updated_at_ns = excluded.updated_at_ns
	`, setID, set.Name, set.Description, set.EmitterChannel, set.ReceiverChannel, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save set %q: %w", set.Name, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM commands WHERE set_id = ?", setID); err != nil {
		return fmt.Errorf("save set %q: %w", set.Name, err)
	}

	for id, cmd := range set.Commands {
		record, err := json.Marshal(cmd.Record())
		if err != nil {
			return fmt.Errorf("save set %q command %q: %w", set.Name, id, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO commands (set_id, command_id, record) VALUES (?, ?, ?)",
			setID, id, string(record))
		if err != nil {
			return fmt.Errorf("save set %q command %q: %w", set.Name, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save set %q: %w", set.Name, err)
	}
	return nil
}

// LoadSet rebuilds a stored command set by name.
func (s *Store) LoadSet(ctx context.Context, name string) (*ir.CommandSet, error) {
	var (
		setID string
		rec   ir.CommandSetRecord
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT set_id, name, description, emitter_channel, receiver_channel
		FROM command_sets WHERE name = ?
	`, name).Scan(&setID, &rec.Name, &rec.Description, &rec.EmitterChannel, &rec.ReceiverChannel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load set %q: %w", name, ErrSetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load set %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT command_id, record FROM commands WHERE set_id = ?", setID)
	if err != nil {
		return nil, fmt.Errorf("load set %q: %w", name, err)
	}
	defer rows.Close()

	rec.Commands = make(map[string]ir.CommandRecord)
	for rows.Next() {
		var (
			commandID string
			raw       string
		)
		if err := rows.Scan(&commandID, &raw); err != nil {
			return nil, fmt.Errorf("load set %q: %w", name, err)
		}
		var cmdRec ir.CommandRecord
		if err := json.Unmarshal([]byte(raw), &cmdRec); err != nil {
			return nil, fmt.Errorf("load set %q command %q: %w", name, commandID, err)
		}
		rec.Commands[commandID] = cmdRec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load set %q: %w", name, err)
	}

	return ir.CommandSetFromRecord(rec)
}

// ListSets returns summaries of all stored sets, ordered by name.
func (s *Store) ListSets(ctx context.Context) ([]SetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cs.set_id, cs.name, cs.description, cs.updated_at_ns,
		       (SELECT COUNT(*) FROM commands c WHERE c.set_id = cs.set_id)
		FROM command_sets cs
		ORDER BY cs.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var infos []SetInfo
	for rows.Next() {
		var info SetInfo
		if err := rows.Scan(&info.SetID, &info.Name, &info.Description, &info.UpdatedAtNs, &info.CommandCount); err != nil {
			return nil, fmt.Errorf("list sets: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return infos, nil
}

// DeleteSet removes a stored set and its commands.
func (s *Store) DeleteSet(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM command_sets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete set %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete set %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete set %q: %w", name, ErrSetNotFound)
	}
	return nil
}
