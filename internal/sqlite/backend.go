package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/storeadmin/internal/logging"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// pragmas are applied to every connection through the DSN.
var pragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Backend implements types.RecordStore over one SQLite database file. All
// table and column identifiers come from the EntitySchema passed to each
// call; every value is bound as a parameter.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *slog.Logger
}

var _ types.RecordStore = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to open the database.
func NewBackend() *Backend {
	return &Backend{log: logging.For("store")}
}

// Attach opens the database named by config, creating the file and its parent
// directory if needed, enables foreign-key enforcement, and creates any
// missing tables. Existing data is preserved.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if dir := filepath.Dir(config.Database); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(config.Database))
	if err != nil {
		return fmt.Errorf("open %s: %w: %v", config.Database, types.ErrStorage, err)
	}
	// One connection for the life of the process.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("open %s: %w: %v", config.Database, types.ErrStorage, err)
	}
	if err := bootstrap(ctx, db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	b.log = logging.For("store")
	b.log.Info("database attached", "path", config.Database)
	return nil
}

// Detach closes the database connection. After Detach, all operations return
// ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	db := b.db
	b.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	b.log.Info("database detached", "path", b.config.Database)
	return nil
}

// Path returns the database file of the attached store, or "".
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return b.config.Database
}

// conn returns the open handle, or ErrDetached. The caller must hold b.mu.
func (b *Backend) conn() (*sql.DB, error) {
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.db, nil
}

// bootstrap creates every table that does not yet exist.
func bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w: %v", types.ErrStorage, err)
		}
	}
	return nil
}

func dsn(path string) string {
	params := make([]string, len(pragmas))
	for i, p := range pragmas {
		params[i] = "_pragma=" + p
	}
	return path + "?" + strings.Join(params, "&")
}
