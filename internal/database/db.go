// Package database provides the SQLite connection used by the cache store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DatabaseProfile selects the durability/speed trade-off of a connection
type DatabaseProfile string

const (
	// ProfileCache trades durability for speed. Contents can be recomputed.
	ProfileCache DatabaseProfile = "cache"
	// ProfileStandard syncs at checkpoints
	ProfileStandard DatabaseProfile = "standard"
)

// profilePragmas are appended after journal_mode(WAL)
var profilePragmas = map[DatabaseProfile][]string{
	ProfileCache:    {"synchronous(OFF)", "auto_vacuum(FULL)", "temp_store(MEMORY)"},
	ProfileStandard: {"synchronous(NORMAL)", "temp_store(MEMORY)"},
}

// commonPragmas apply to every profile. cache_size is negative so it is read as KiB.
var commonPragmas = []string{"busy_timeout(5000)", "cache_size(-16000)"}

type poolLimits struct {
	maxOpen, maxIdle int
}

var profilePools = map[DatabaseProfile]poolLimits{
	ProfileCache:    {maxOpen: 10, maxIdle: 2},
	ProfileStandard: {maxOpen: 25, maxIdle: 5},
}

var checkpointModes = map[string]bool{"PASSIVE": true, "FULL": true, "RESTART": true, "TRUNCATE": true}

// DB wraps a configured SQLite connection
type DB struct {
	conn    *sql.DB
	path    string
	profile DatabaseProfile
	name    string
}

// Config holds database configuration
type Config struct {
	Path    string
	Profile DatabaseProfile // defaults to ProfileStandard
	Name    string          // used in errors, e.g. "cache"
}

// New opens a database with the profile's PRAGMAs and verifies the connection.
// Paths starting with "file:" are used verbatim, which is how tests open
// in-memory databases. Other paths are made absolute and their directory
// is created.
func New(cfg Config) (*DB, error) {
	path, err := preparePath(cfg.Path)
	if err != nil {
		return nil, err
	}

	profile := cfg.Profile
	if profile == "" {
		profile = ProfileStandard
	}

	conn, err := sql.Open("sqlite", buildConnectionString(path, profile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	pool, ok := profilePools[profile]
	if !ok {
		pool = profilePools[ProfileStandard]
	}
	conn.SetMaxOpenConns(pool.maxOpen)
	conn.SetMaxIdleConns(pool.maxIdle)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{conn: conn, path: path, profile: profile, name: cfg.Name}, nil
}

func preparePath(path string) (string, error) {
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path %q: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return abs, nil
}

// buildConnectionString appends the profile's PRAGMAs as _pragma query
// parameters, extending an existing query string if path has one
func buildConnectionString(path string, profile DatabaseProfile) string {
	pragmas := append([]string{"journal_mode(WAL)"}, profilePragmas[profile]...)
	pragmas = append(pragmas, commonPragmas...)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	var b strings.Builder
	b.WriteString(path)
	for _, p := range pragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the configured name
func (db *DB) Name() string {
	return db.name
}

// Profile returns the database profile
func (db *DB) Profile() DatabaseProfile {
	return db.profile
}

// Path returns the resolved database path
func (db *DB) Path() string {
	return db.path
}

// Migrate applies schema inside a transaction.
// Schemas are expected to use IF NOT EXISTS so this can run at every startup.
func (db *DB) Migrate(schema string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("migrate %s: begin: %w", db.name, err)
	}
	if _, err := tx.Exec(schema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migrate %s: %w", db.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate %s: commit: %w", db.name, err)
	}
	return nil
}

// HealthCheck pings the database and runs PRAGMA integrity_check
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", db.name, err)
	}

	var result string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("%s integrity check: %w", db.name, err)
	}
	if result != "ok" {
		return fmt.Errorf("%s integrity check reported: %s", db.name, result)
	}
	return nil
}

// WALCheckpoint runs a WAL checkpoint in the given mode, TRUNCATE when empty
func (db *DB) WALCheckpoint(mode string) error {
	if mode == "" {
		mode = "TRUNCATE"
	}
	if !checkpointModes[mode] {
		return fmt.Errorf("invalid WAL checkpoint mode: %s", mode)
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(" + mode + ")"); err != nil {
		return fmt.Errorf("%s WAL checkpoint: %w", db.name, err)
	}
	return nil
}

// Stats describes the size of the database on disk
type Stats struct {
	SizeBytes    int64 `json:"size_bytes"`
	WALSizeBytes int64 `json:"wal_size_bytes"`
	PageCount    int64 `json:"page_count"`
	PageSize     int64 `json:"page_size"`
}

// GetStats reports page counts and file sizes. File sizes stay zero for
// in-memory databases.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{
		SizeBytes:    fileSize(db.path),
		WALSizeBytes: fileSize(db.path + "-wal"),
	}

	row := db.conn.QueryRow("SELECT page_count, page_size FROM pragma_page_count(), pragma_page_size()")
	if err := row.Scan(&stats.PageCount, &stats.PageSize); err != nil {
		return nil, fmt.Errorf("%s page stats: %w", db.name, err)
	}
	return stats, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
