package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/csvinsight/internal/config"
	"github.com/JonMunkholm/csvinsight/internal/history"
	"github.com/JonMunkholm/csvinsight/internal/storage"
	events "github.com/asaidimu/go-events"
	"github.com/google/uuid"
)

// ErrMissingParameter is returned when a required argument is empty.
var ErrMissingParameter = errors.New("missing parameter")

// FileStore is the data directory the service browses and loads from.
type FileStore interface {
	Tree() ([]storage.Node, error)
	Open(rel string) (io.ReadCloser, int64, error)
	Write(rel string, r io.Reader) (int64, error)
	Delete(rel string) error
	Rename(oldRel, newRel string) error
	Mkdir(rel string) error
}

// Service ties the engine to its collaborators: the file store, the history
// store, the view sessions and the event bus.
type Service struct {
	files    FileStore
	history  history.Store
	limiter  *LoadLimiter
	sessions *SessionStore
	bus      *events.TypedEventBus[Event]

	loadOpts    LoadOptions
	maxFileSize int64
	pageSize    int

	unsubscribe []func()
}

// NewService creates a Service. hist may be nil, which disables history.
func NewService(files FileStore, hist history.Store, cfg *config.Config) (*Service, error) {
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}

	s := &Service{
		files:    files,
		history:  hist,
		limiter:  NewLoadLimiter(cfg.Engine.MaxConcurrentLoads, cfg.Engine.MaxLoadWait),
		sessions: NewSessionStore(cfg.Engine.SessionTTL),
		bus:      bus,
		loadOpts: LoadOptions{
			SampleSize: cfg.Engine.SampleSize,
			Delimiter:  cfg.Engine.DelimiterRune(),
			MaxBytes:   cfg.Storage.MaxFileSize,
		},
		maxFileSize: cfg.Storage.MaxFileSize,
		pageSize:    cfg.Engine.PageSize,
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}

	s.subscribeHistory()
	return s, nil
}

// Close detaches the service's bus subscriptions.
func (s *Service) Close() {
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
}

// View is the result of loading a file: the session that now holds it, the
// inferred schema and the first page of rows.
type View struct {
	SessionID   uuid.UUID  `json:"sessionId"`
	Columns     Schema     `json:"columns"`
	Rows        []TypedRow `json:"rows"`
	FileName    string     `json:"fileName"`
	Path        string     `json:"path"`
	TotalRows   int        `json:"totalRows"`
	SkippedRows int        `json:"skippedRows"`
	PageSize    int        `json:"pageSize"`
}

// LoadView loads the file at rel into a view session. When sessionID names
// a live session the dataset replaces its snapshot and clears its filters;
// otherwise a new session is created.
func (s *Service) LoadView(ctx context.Context, rel, sessionID string) (*View, error) {
	if strings.TrimSpace(rel) == "" {
		return nil, fmt.Errorf("%w: path", ErrMissingParameter)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()

	rc, size, err := s.files.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rel, err)
	}
	defer rc.Close()

	if s.maxFileSize > 0 && size > s.maxFileSize {
		return nil, fmt.Errorf("open %s: %w", rel, ErrFileTooLarge)
	}

	ds, err := Load(&contextReader{ctx: ctx, r: rc}, rel, s.loadOpts)
	if err != nil {
		return nil, err
	}

	sess := s.attach(sessionID, ds)
	duration := time.Since(start)

	s.publish(ctx, Event{
		Type:      EventDatasetLoaded,
		SessionID: sess.ID,
		Path:      rel,
		Rows:      len(ds.Rows),
		Schema:    ds.Schema,
		Duration:  duration,
	})

	slog.Info("dataset loaded",
		"path", rel,
		"session", sess.ID.String(),
		"rows", len(ds.Rows),
		"columns", len(ds.Schema),
		"skipped", ds.Skipped,
		"duration_ms", duration.Milliseconds(),
	)

	first := Paginate(ds.Rows, 1, s.pageSize)
	return &View{
		SessionID:   sess.ID,
		Columns:     ds.Schema,
		Rows:        first.Rows,
		FileName:    ds.FileName,
		Path:        ds.Path,
		TotalRows:   len(ds.Rows),
		SkippedRows: ds.Skipped,
		PageSize:    first.PageSize,
	}, nil
}

func (s *Service) attach(sessionID string, ds *Dataset) *Session {
	if id, err := uuid.Parse(sessionID); err == nil {
		if sess, err := s.sessions.Replace(id, ds); err == nil {
			return sess
		}
	}
	return s.sessions.Create(ds)
}

// Session looks up a live session by its string ID.
func (s *Service) Session(id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return s.sessions.Get(parsed)
}

// CloseSession discards a session.
func (s *Service) CloseSession(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrSessionNotFound
	}
	if !s.sessions.Remove(parsed) {
		return ErrSessionNotFound
	}
	return nil
}

// WaitForLoads blocks until in-flight loads finish or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
