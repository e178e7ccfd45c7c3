// Package clientdata provides the TTL cache used to memoise computed reports.
// Values are stored as msgpack blobs with expiration timestamps, either in
// SQLite or in process memory.
package clientdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Cache tables in cache.db
const (
	TableAllocationReports  = "allocation_reports"
	TablePerformanceReports = "performance_reports"
)

// AllTables lists all tables in cache.db for cleanup operations.
var AllTables = []string{
	TableAllocationReports,
	TablePerformanceReports,
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Schema creates the cache tables. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS allocation_reports (cache_key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS performance_reports (cache_key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);

CREATE INDEX IF NOT EXISTS idx_allocation_reports_expires ON allocation_reports(expires_at);
CREATE INDEX IF NOT EXISTS idx_performance_reports_expires ON performance_reports(expires_at);
`

// Repository provides cache operations backed by SQLite.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new cache repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// validateTable ensures the table name is in our allowed list.
// Table names are interpolated into SQL, so only known names are accepted.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves data with expiration = now + ttl.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	blob, err := encode(data)
	if err != nil {
		return err
	}

	expiresAt := r.now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (cache_key, data, expires_at) VALUES (?, ?, ?)",
		table,
	)
	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}

	return nil
}

// GetIfFresh decodes the entry into dst only if expires_at > now.
// Returns false, nil if the key doesn't exist or the entry is expired.
func (r *Repository) GetIfFresh(table, key string, dst interface{}) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE cache_key = ? AND expires_at > ?", table)
	return r.scanInto(r.db.QueryRow(query, key, r.now().Unix()), table, dst)
}

// Get decodes the entry into dst regardless of expiration status.
// Returns false, nil if the key doesn't exist.
func (r *Repository) Get(table, key string, dst interface{}) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE cache_key = ?", table)
	return r.scanInto(r.db.QueryRow(query, key), table, dst)
}

func (r *Repository) scanInto(row *sql.Row, table string, dst interface{}) (bool, error) {
	var blob []byte
	err := row.Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	if err := decode(blob, dst); err != nil {
		return false, fmt.Errorf("failed to decode data from %s: %w", table, err)
	}
	return true, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(table, key string) error {
	if err := validateTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE cache_key = ?", table)
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	return nil
}

// DeleteExpired removes all rows where expires_at <= now.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(table string) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", table)

	result, err := r.db.Exec(query, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}

	return deleted, nil
}

// DeleteAllExpired removes all expired entries from all tables.
// Returns a map of table name to number of rows deleted.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	results := make(map[string]int64)

	for _, table := range AllTables {
		deleted, err := r.DeleteExpired(table)
		if err != nil {
			return results, err
		}
		results[table] = deleted
	}

	return results, nil
}

// Table returns a Cache view over one table
func (r *Repository) Table(table string) Cache {
	return &tableCache{repo: r, table: table}
}

type tableCache struct {
	repo  *Repository
	table string
}

func (c *tableCache) Get(key string, dst interface{}) (bool, error) {
	return c.repo.GetIfFresh(c.table, key, dst)
}

func (c *tableCache) Set(key string, value interface{}, ttl time.Duration) error {
	return c.repo.Store(c.table, key, value, ttl)
}
