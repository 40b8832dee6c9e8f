package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// StructuredTable is the table holding one row per completed extraction.
const StructuredTable = "structured_data"

// timestampLayout is RFC 3339 with a fixed nine-digit fraction, so stored
// values order correctly as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultListLimit caps ListStructuredLogs when the caller passes no limit.
const DefaultListLimit = 50

// Store is the SQLite-backed Structured Store.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writers
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "hireagent.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: an in-memory database is per-connection, and a single
	// writer avoids "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded migrations that are not yet recorded in schema_version.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}
		if err := s.applyMigration(version, entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(version int, name string) error {
	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
		return fmt.Errorf("checking migration %d: %w", version, err)
	}
	if exists > 0 {
		return nil
	}

	content, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("applying migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", version, err)
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Structured data ---

// InsertStructuredLog appends one row. A zero Timestamp is stamped with the
// current time.
func (s *Store) InsertStructuredLog(ctx context.Context, row StructuredLogRow) error {
	if row.SessionID == "" {
		return errors.New("structured log row has no session id")
	}
	ts := row.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO structured_data (session_id, timestamp, industry, location, roles, number_of_positions, urgency)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.SessionID, ts.UTC().Format(timestampLayout), row.Industry, row.Location,
		row.Roles, row.PositionCount, row.Urgent,
	)
	if err != nil {
		return fmt.Errorf("inserting structured row for session %s: %w", row.SessionID, err)
	}
	return nil
}

// ListStructuredLogs returns the newest rows first. limit <= 0 uses DefaultListLimit.
func (s *Store) ListStructuredLogs(ctx context.Context, limit int) ([]StructuredLogRow, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, timestamp, industry, location, roles, number_of_positions, urgency
		FROM structured_data ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StructuredLogRow
	for rows.Next() {
		r, err := scanStructuredRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// StructuredLogForSession returns the row written for sessionID, or ErrNotFound.
func (s *Store) StructuredLogForSession(ctx context.Context, sessionID string) (StructuredLogRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, timestamp, industry, location, roles, number_of_positions, urgency
		FROM structured_data WHERE session_id = ? ORDER BY rowid ASC LIMIT 1`, sessionID,
	)
	r, err := scanStructuredRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StructuredLogRow{}, ErrNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStructuredRow(sc scanner) (StructuredLogRow, error) {
	var r StructuredLogRow
	var ts string
	if err := sc.Scan(&r.SessionID, &ts, &r.Industry, &r.Location, &r.Roles, &r.PositionCount, &r.Urgent); err != nil {
		return StructuredLogRow{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return StructuredLogRow{}, fmt.Errorf("parsing timestamp: %w", err)
	}
	r.Timestamp = t
	return r, nil
}

// Columns reports the structured_data column layout.
func (s *Store) Columns(ctx context.Context) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+StructuredTable+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var dflt sql.NullString
		var notNull, pk int
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		c.NotNull = notNull != 0
		c.PrimaryKey = pk != 0
		c.Default = dflt.String
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, ErrNotFound
	}
	return cols, nil
}
