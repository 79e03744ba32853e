package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS file_history (
	id           TEXT PRIMARY KEY,
	action       TEXT NOT NULL,
	severity     TEXT NOT NULL,
	path         TEXT NOT NULL,
	new_path     TEXT,
	row_count    INTEGER,
	column_count INTEGER,
	schema       TEXT,
	duration_ms  INTEGER,
	ip_address   TEXT,
	user_agent   TEXT,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS file_history_created_at_idx ON file_history (created_at DESC);
`

// SQLiteStore keeps history in a local SQLite file. Timestamps are stored
// as Unix nanoseconds so ordering and pruning are plain integer compares.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and its table.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	e.normalize()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_history
			(id, action, severity, path, new_path, row_count, column_count, schema,
			 duration_ms, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), string(e.Action), string(e.Severity), e.Path,
		nullString(e.NewPath), e.Rows, e.Columns, nullString(string(e.Schema)),
		e.DurationMS, nullString(e.IPAddress), nullString(e.UserAgent),
		e.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, severity, path, new_path, row_count, column_count, schema,
		       duration_ms, ip_address, user_agent, created_at
		FROM file_history
		ORDER BY created_at DESC
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			id, action, severity, path string
			newPath, schema            sql.NullString
			ipAddress, userAgent       sql.NullString
			rowCount, columns          sql.NullInt64
			durationMS                 sql.NullInt64
			createdAt                  int64
		)
		if err := rows.Scan(
			&id, &action, &severity, &path, &newPath, &rowCount, &columns, &schema,
			&durationMS, &ipAddress, &userAgent, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse history id %q: %w", id, err)
		}

		entry := Entry{
			ID:         parsed,
			Action:     Action(action),
			Severity:   Severity(severity),
			Path:       path,
			NewPath:    newPath.String,
			Rows:       int(rowCount.Int64),
			Columns:    int(columns.Int64),
			DurationMS: durationMS.Int64,
			IPAddress:  ipAddress.String,
			UserAgent:  userAgent.String,
			CreatedAt:  time.Unix(0, createdAt).UTC(),
		}
		if schema.Valid {
			entry.Schema = []byte(schema.String)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM file_history WHERE created_at < ?`, cutoff.UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Durable() bool { return true }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
