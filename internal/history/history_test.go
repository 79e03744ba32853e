package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/JonMunkholm/csvinsight/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Shared store behaviour
// =============================================================================

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Action: ActionLoad, Path: "a.csv", Rows: 3, Columns: 2, CreatedAt: base},
		{Action: ActionUpload, Path: "b.csv", CreatedAt: base.Add(time.Hour)},
		{
			Action:    ActionRename,
			Path:      "b.csv",
			NewPath:   "c.csv",
			IPAddress: "10.0.0.1",
			UserAgent: "test-agent",
			Schema:    json.RawMessage(`[{"name":"x","type":"numeric"}]`),
			CreatedAt: base.Add(2 * time.Hour),
		},
	}
	for _, e := range entries {
		require.NoError(t, store.Record(ctx, e))
	}

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	assert.Equal(t, ActionRename, recent[0].Action, "newest first")
	assert.Equal(t, "c.csv", recent[0].NewPath)
	assert.Equal(t, "10.0.0.1", recent[0].IPAddress)
	assert.Equal(t, "test-agent", recent[0].UserAgent)
	assert.JSONEq(t, `[{"name":"x","type":"numeric"}]`, string(recent[0].Schema))
	assert.Equal(t, SeverityMedium, recent[0].Severity)
	assert.NotEqual(t, uuid.Nil, recent[0].ID)
	assert.True(t, recent[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	assert.Equal(t, ActionLoad, recent[2].Action)
	assert.Equal(t, 3, recent[2].Rows)
	assert.Equal(t, 2, recent[2].Columns)
	assert.Equal(t, SeverityLow, recent[2].Severity)

	limited, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	removed, err := store.Prune(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, ActionRename, remaining[0].Action)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(10)
	defer store.Close()

	assert.False(t, store.Durable())
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	assert.True(t, store.Durable())
	exerciseStore(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, Entry{Action: ActionMkdir, Path: "reports"}))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	recent, err := reopened.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "reports", recent[0].Path)
}

// =============================================================================
// Memory ring specifics
// =============================================================================

func TestMemoryStore_Wraps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, Entry{
			Action: ActionLoad,
			Path:   string(rune('a'+i)) + ".csv",
		}))
	}

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "e.csv", recent[0].Path)
	assert.Equal(t, "d.csv", recent[1].Path)
	assert.Equal(t, "c.csv", recent[2].Path)
}

func TestMemoryStore_PruneAfterWrap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Record(ctx, Entry{
			Action:    ActionLoad,
			Path:      string(rune('a'+i)) + ".csv",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	removed, err := store.Prune(ctx, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "d.csv", recent[0].Path)

	require.NoError(t, store.Record(ctx, Entry{Action: ActionLoad, Path: "e.csv"}))
	recent, err = store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e.csv", recent[0].Path)
}

// =============================================================================
// Helpers
// =============================================================================

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		action Action
		want   Severity
	}{
		{ActionLoad, SeverityLow},
		{ActionMkdir, SeverityLow},
		{ActionUpload, SeverityMedium},
		{ActionRename, SeverityMedium},
		{ActionDelete, SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityOf(tt.action))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, DefaultLimit, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, MaxLimit, clampLimit(MaxLimit+1))
}

func TestPgConversions(t *testing.T) {
	assert.False(t, toPgText("   ").Valid)
	assert.Equal(t, "x", toPgText(" x ").String)
	assert.False(t, toPgInt4(0).Valid)
	assert.Equal(t, int32(5), toPgInt4(5).Int32)
	assert.False(t, toPgInt8(0).Valid)
	assert.False(t, toPgUUID(uuid.Nil).Valid)

	id := uuid.New()
	assert.Equal(t, id, pgUUIDToUUID(toPgUUID(id)))
	assert.False(t, toPgTimestamptz(time.Time{}).Valid)
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, config.HistoryConfig{Driver: "none"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(ctx, config.HistoryConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "h.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, config.HistoryConfig{Driver: "mongo"})
	assert.Error(t, err)
}
