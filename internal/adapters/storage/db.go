package storage

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"
)

// A migration moves the schema up one version. Each runs at most once
// per database; the schema_version table records what has been applied.
type migration struct {
	version int
	apply   func(db *sql.DB) error
}

// migrations run in version order. Append only; never edit an entry
// that has shipped.
var migrations = []migration{
	{1, migrateLedgerBaseline},
	{2, migrateEditorAccounts},
}

// LatestSchemaVersion returns the version a fully migrated database has.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the highest applied migration version.
// POST: returns 0 (and no error) when the database has never been migrated
func SchemaVersion(db *sql.DB) (int, error) {
	var present int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&present)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema_version: %w", err)
	}
	if present == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB brings the database schema to the latest version.
// dbPath is the on-disk location; a .bak copy is taken before any
// pending migration runs (skipped for :memory: databases).
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion(); idempotent
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if err := backupBeforeMigrate(dbPath, current); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			m.version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}
	return nil
}

// backupBeforeMigrate copies the database file aside so a bad migration
// can be rolled back by hand. In-memory and not-yet-created databases
// have nothing to copy.
func backupBeforeMigrate(dbPath string, fromVersion int) error {
	if dbPath == "" || dbPath == ":memory:" {
		return nil
	}
	src, err := os.Open(dbPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open db for backup: %w", err)
	}
	defer src.Close()

	bakPath := fmt.Sprintf("%s.v%d.bak", dbPath, fromVersion)
	dst, err := os.Create(bakPath)
	if err != nil {
		return fmt.Errorf("failed to create backup %s: %w", bakPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write backup %s: %w", bakPath, err)
	}
	return nil
}

// migrateLedgerBaseline creates the attendance ledger: member rows, week
// markers, and the per-member-per-week log cells.
func migrateLedgerBaseline(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL UNIQUE,
		hour_requirement TEXT NOT NULL DEFAULT '6:00:00',
		check_in_time TEXT,
		timeout_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS week (
		week_start TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS week_cell (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		logged TEXT NOT NULL DEFAULT '0:00:00',
		note TEXT NOT NULL DEFAULT '',
		UNIQUE (member_id, week_start),
		FOREIGN KEY (member_id) REFERENCES member(id),
		FOREIGN KEY (week_start) REFERENCES week(week_start)
	);

	CREATE INDEX IF NOT EXISTS idx_week_cell_member ON week_cell(member_id, week_start);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return nil
}

// migrateEditorAccounts adds the editor allowlist used by the admin
// surface. The kiosk form predates accounts and needs none.
func migrateEditorAccounts(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create account schema: %w", err)
	}
	return nil
}
