package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/finconnect/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// dbFile is the name of the database inside the data directory.
const dbFile = "modules.db"

// Ensure Store implements the interface.
var _ driven.ModuleCache = (*Store)(nil)

// Store is the SQLite-backed module cache. Every installed module is a row
// holding its manifest as TOML text.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	dir  string
	path string
}

// NewStore creates a module cache in the specified data directory.
// If dataDir is empty, defaults to ~/.finconnect/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".finconnect", "data")
	}

	s := &Store{
		dir:  dataDir,
		path: filepath.Join(dataDir, dbFile),
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) open() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// WAL and a busy timeout let concurrent invocations share the cache.
	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	s.db = db
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_modules.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, fmt.Errorf("module cache %s is closed", s.path)
	}
	return s.db, nil
}

// Get returns an installed module.
func (s *Store) Get(ctx context.Context, id string) (*domain.InstalledModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, version, manifest, installed_at
		FROM modules WHERE id = ?
	`, id)
	m, err := scanModule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Install records a module and its manifest, replacing any previous version.
func (s *Store) Install(ctx context.Context, manifest domain.ModuleManifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}
	text, err := toml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO modules (id, version, driver, manifest, installed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			driver = excluded.driver,
			manifest = excluded.manifest,
			installed_at = excluded.installed_at
	`, manifest.ID, manifest.Version, manifest.Driver, string(text), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving module: %w", err)
	}
	return nil
}

// List returns all installed modules sorted by id.
func (s *Store) List(ctx context.Context) ([]domain.InstalledModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, version, manifest, installed_at
		FROM modules ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying modules: %w", err)
	}
	defer rows.Close()

	var modules []domain.InstalledModule //nolint:prealloc // size unknown from query
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}
	return modules, nil
}

// Reset closes the database, wipes the data directory, and recreates an
// empty cache in place.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		s.db = nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("removing data directory: %w", err)
	}
	return s.open()
}

// Ping checks the database answers and the data directory is writable.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM modules").Scan(&n); err != nil {
		return fmt.Errorf("querying modules: %w", err)
	}

	f, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModule(row scanner) (*domain.InstalledModule, error) {
	var m domain.InstalledModule
	var text string
	var installedAt sql.NullTime
	if err := row.Scan(&m.ID, &m.Version, &text, &installedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning module: %w", err)
	}
	if err := toml.Unmarshal([]byte(text), &m.Manifest); err != nil {
		return nil, fmt.Errorf("unmarshalling manifest of %s: %w", m.ID, err)
	}
	if installedAt.Valid {
		m.InstalledAt = installedAt.Time
	}
	return &m, nil
}
