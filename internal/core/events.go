package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csvinsight/internal/history"
	"github.com/google/uuid"
)

// EventType names something that happened to a file or view.
type EventType string

const (
	EventDatasetLoaded  EventType = "dataset.loaded"
	EventFiltersApplied EventType = "filters.applied"
	EventFileUploaded   EventType = "file.uploaded"
	EventPathRenamed    EventType = "path.renamed"
	EventPathDeleted    EventType = "path.deleted"
	EventFolderCreated  EventType = "folder.created"
	EventSessionExpired EventType = "session.expired"
)

// Event is published on the service bus after each operation succeeds.
type Event struct {
	Type      EventType
	SessionID uuid.UUID
	Path      string
	NewPath   string
	Rows      int
	Matched   int
	Bytes     int64
	Schema    Schema
	Duration  time.Duration
	IPAddress string
	UserAgent string
	At        time.Time
}

// EventHandler receives bus events.
type EventHandler func(ctx context.Context, ev Event) error

// historyActions maps the events that are persisted to their history action.
var historyActions = map[EventType]history.Action{
	EventDatasetLoaded: history.ActionLoad,
	EventFileUploaded:  history.ActionUpload,
	EventPathRenamed:   history.ActionRename,
	EventPathDeleted:   history.ActionDelete,
	EventFolderCreated: history.ActionMkdir,
}

// Subscribe registers fn for events of type t and returns an unsubscribe
// function.
func (s *Service) Subscribe(t EventType, fn EventHandler) func() {
	return s.bus.Subscribe(string(t), func(ctx context.Context, ev Event) error {
		return fn(ctx, ev)
	})
}

// publish stamps ev with the caller's client details and emits it.
func (s *Service) publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if ev.IPAddress == "" {
		ev.IPAddress = GetIPAddressFromContext(ctx)
	}
	if ev.UserAgent == "" {
		ev.UserAgent = GetUserAgentFromContext(ctx)
	}
	s.bus.Emit(string(ev.Type), ev)
}

// subscribeHistory wires every persisted event type to the history store.
func (s *Service) subscribeHistory() {
	for t := range historyActions {
		s.unsubscribe = append(s.unsubscribe, s.Subscribe(t, s.recordHistory))
	}
}

func (s *Service) recordHistory(ctx context.Context, ev Event) error {
	action, ok := historyActions[ev.Type]
	if !ok || s.history == nil {
		return nil
	}

	entry := history.Entry{
		Action:     action,
		Path:       ev.Path,
		NewPath:    ev.NewPath,
		Rows:       ev.Rows,
		Columns:    len(ev.Schema),
		DurationMS: ev.Duration.Milliseconds(),
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
		CreatedAt:  ev.At,
	}
	if len(ev.Schema) > 0 {
		if raw, err := json.Marshal(ev.Schema); err == nil {
			entry.Schema = raw
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.history.Record(ctx, entry); err != nil {
		slog.Error("failed to record history", "action", action, "path", ev.Path, "error", err)
		return err
	}
	return nil
}
