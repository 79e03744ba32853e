package history

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvinsight/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS file_history (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	severity    TEXT NOT NULL,
	path        TEXT NOT NULL,
	new_path    TEXT,
	row_count   INTEGER,
	column_count INTEGER,
	schema      JSONB,
	duration_ms BIGINT,
	ip_address  TEXT,
	user_agent  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS file_history_created_at_idx ON file_history (created_at DESC);
`

// PostgresStore keeps history in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool with the configured limits, verifies the
// connection and creates the history table if needed.
func OpenPostgres(ctx context.Context, cfg config.HistoryConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing pool. Call Migrate before first use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the history table and index.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	e.normalize()

	var schema []byte
	if len(e.Schema) > 0 {
		schema = e.Schema
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO file_history
			(id, action, severity, path, new_path, row_count, column_count, schema,
			 duration_ms, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		toPgUUID(e.ID), string(e.Action), string(e.Severity), e.Path,
		toPgText(e.NewPath), toPgInt4(e.Rows), toPgInt4(e.Columns), schema,
		toPgInt8(e.DurationMS), toPgText(e.IPAddress), toPgText(e.UserAgent),
		toPgTimestamptz(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, action, severity, path, new_path, row_count, column_count, schema,
		       duration_ms, ip_address, user_agent, created_at
		FROM file_history
		ORDER BY created_at DESC
		LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		entry, err := scanPgEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

func scanPgEntry(rows pgx.Rows) (Entry, error) {
	var (
		id         pgtype.UUID
		action     string
		severity   string
		path       string
		newPath    pgtype.Text
		rowCount   pgtype.Int4
		columns    pgtype.Int4
		schema     []byte
		durationMS pgtype.Int8
		ipAddress  pgtype.Text
		userAgent  pgtype.Text
		createdAt  pgtype.Timestamptz
	)

	err := rows.Scan(
		&id, &action, &severity, &path, &newPath, &rowCount, &columns, &schema,
		&durationMS, &ipAddress, &userAgent, &createdAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("scan history entry: %w", err)
	}

	entry := Entry{
		ID:        pgUUIDToUUID(id),
		Action:    Action(action),
		Severity:  Severity(severity),
		Path:      path,
		Schema:    schema,
		CreatedAt: createdAt.Time.UTC(),
	}
	if newPath.Valid {
		entry.NewPath = newPath.String
	}
	if rowCount.Valid {
		entry.Rows = int(rowCount.Int32)
	}
	if columns.Valid {
		entry.Columns = int(columns.Int32)
	}
	if durationMS.Valid {
		entry.DurationMS = durationMS.Int64
	}
	if ipAddress.Valid {
		entry.IPAddress = ipAddress.String
	}
	if userAgent.Valid {
		entry.UserAgent = userAgent.String
	}
	return entry, nil
}

func (s *PostgresStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM file_history WHERE created_at < $1`, toPgTimestamptz(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Durable() bool { return true }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
