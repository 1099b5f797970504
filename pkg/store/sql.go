package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DefaultTable is the table used by the SQL store.
const DefaultTable = "metabox_values"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQL stores values in a (record_id, meta_key, meta_value) table. Queries use
// the Postgres dialect.
//
//	CREATE TABLE metabox_values (
//	  record_id  TEXT NOT NULL,
//	  meta_key   TEXT NOT NULL,
//	  meta_value TEXT NOT NULL DEFAULT '',
//	  PRIMARY KEY (record_id, meta_key)
//	);
type SQL struct {
	db    *sqlx.DB
	table string
}

// SQLOption customises the SQL store.
type SQLOption func(*SQL)

// WithTable overrides the table name. Invalid identifiers are ignored.
func WithTable(table string) SQLOption {
	return func(s *SQL) {
		if tableNamePattern.MatchString(table) {
			s.table = table
		}
	}
}

type valueRow struct {
	Key   string `db:"meta_key"`
	Value string `db:"meta_value"`
}

// NewSQL wraps an open database handle.
func NewSQL(db *sqlx.DB, opts ...SQLOption) *SQL {
	s := &SQL{db: db, table: DefaultTable}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OpenPostgres connects with the lib/pq driver.
func OpenPostgres(ctx context.Context, dsn string, opts ...SQLOption) (*SQL, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	return NewSQL(db, opts...), nil
}

// Migrate creates the value table when missing.
func (s *SQL) Migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
	record_id TEXT NOT NULL,
	meta_key TEXT NOT NULL,
	meta_value TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (record_id, meta_key)
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, recordID, key string) (string, bool, error) {
	if err := checkRecord(recordID); err != nil {
		return "", false, err
	}
	var value string
	query := `SELECT meta_value FROM ` + s.table + ` WHERE record_id = $1 AND meta_key = $2`
	err := s.db.QueryRowxContext(ctx, query, recordID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: sql get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) GetAll(ctx context.Context, recordID string, keys []string) (map[string]string, error) {
	if err := checkRecord(recordID); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT meta_key, meta_value FROM `+s.table+` WHERE record_id = ? AND meta_key IN (?)`, recordID, keys)
	if err != nil {
		return nil, fmt.Errorf("store: sql build query: %w", err)
	}
	var rows []valueRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("store: sql get all: %w", err)
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// SetMany upserts the batch inside one transaction.
func (s *SQL) SetMany(ctx context.Context, recordID string, values map[string]string) (err error) {
	if err := checkRecord(recordID); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: sql begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO ` + s.table + ` (record_id, meta_key, meta_value) VALUES ($1, $2, $3)
ON CONFLICT (record_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`
	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("store: sql prepare: %w", err)
	}
	defer stmt.Close()

	for key, value := range values {
		if _, err = stmt.ExecContext(ctx, recordID, key, value); err != nil {
			return fmt.Errorf("store: sql set %q: %w", key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: sql commit: %w", err)
	}
	return nil
}
