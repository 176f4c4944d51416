// Package logging configures the process-wide structured logger and hands out
// component-scoped loggers built on log/slog.
//
// The terminal belongs to the interactive shell, so log records go to a file
// (or any io.Writer) and never to stdout. Every user action carries an action
// id, attached to the context with WithActionID, so the statements issued on
// its behalf can be correlated:
//
//	ctx = logging.WithActionID(ctx, logging.NewActionID())
//	logging.For("store").DebugContext(ctx, "insert", "table", "users")
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// componentKey is the attribute naming the component that logged a record.
const componentKey = "component"

// actionKey is the attribute carrying the action id.
const actionKey = "action_id"

var (
	mu   sync.RWMutex
	root = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// ParseLevel converts a config level name to a slog.Level. Unknown names
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing text records at or above level to w. Action
// ids found in the context are added to every record.
func New(w io.Writer, level string) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(&actionHandler{Handler: h})
}

// SetRoot replaces the logger that For derives component loggers from.
func SetRoot(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
}

// For returns a logger scoped to component. Loggers obtained before Setup
// or SetRoot discard their output.
func For(component string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With(componentKey, component)
}

// Setup opens (or creates) the log file at path, installs a root logger at
// level writing to it, and returns the file so the caller can close it on
// exit.
func Setup(path, level string) (io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetRoot(New(f, level))
	return f, nil
}

type actionContextKey struct{}

// WithActionID returns a context carrying id.
func WithActionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actionContextKey{}, id)
}

// ActionID returns the action id carried by ctx, or "".
func ActionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(actionContextKey{}).(string)
	return id
}

// NewActionID returns a time-ordered id for one user action.
func NewActionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// actionHandler adds the context's action id to each record.
type actionHandler struct {
	slog.Handler
}

func (h *actionHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := ActionID(ctx); id != "" {
		r.AddAttrs(slog.String(actionKey, id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *actionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &actionHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *actionHandler) WithGroup(name string) slog.Handler {
	return &actionHandler{Handler: h.Handler.WithGroup(name)}
}
