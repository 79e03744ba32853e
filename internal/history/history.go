// Package history records what happened to files and datasets: loads,
// uploads, renames, deletes and folder creation.
//
// Three backends implement Store: an in-memory ring (driver "none"), a
// PostgreSQL table through pgx, and a SQLite file. Entries older than the
// retention window are removed by Prune, which the service runs on a
// schedule.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/csvinsight/internal/config"
	"github.com/google/uuid"
)

// ErrUnavailable is returned by stores that keep no durable history.
var ErrUnavailable = errors.New("history unavailable")

// DefaultLimit is used when Recent is called with a non-positive limit.
const DefaultLimit = 50

// MaxLimit caps a single Recent call.
const MaxLimit = 500

// Action is the kind of event recorded.
type Action string

const (
	ActionLoad   Action = "load"
	ActionUpload Action = "upload"
	ActionRename Action = "rename"
	ActionDelete Action = "delete"
	ActionMkdir  Action = "mkdir"
)

// Severity ranks how destructive an action was.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityOf returns the severity recorded for action.
func SeverityOf(action Action) Severity {
	switch action {
	case ActionDelete:
		return SeverityHigh
	case ActionUpload, ActionRename:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Entry is one history record.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	Action     Action          `json:"action"`
	Severity   Severity        `json:"severity"`
	Path       string          `json:"path"`
	NewPath    string          `json:"newPath,omitempty"`
	Rows       int             `json:"rows,omitempty"`
	Columns    int             `json:"columns,omitempty"`
	Schema     json.RawMessage `json:"schema,omitempty"`
	DurationMS int64           `json:"durationMs,omitempty"`
	IPAddress  string          `json:"ipAddress,omitempty"`
	UserAgent  string          `json:"userAgent,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// normalize fills ID, Severity and CreatedAt when unset.
func (e *Entry) normalize() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Severity == "" {
		e.Severity = SeverityOf(e.Action)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}

// Store persists history entries.
type Store interface {
	// Record saves e, assigning an ID and timestamp when missing.
	Record(ctx context.Context, e Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Prune deletes entries created before cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Durable reports whether entries survive a restart.
	Durable() bool

	Close() error
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.HistoryConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "none":
		return NewMemoryStore(MaxLimit), nil
	case "postgres":
		return OpenPostgres(ctx, cfg)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}
