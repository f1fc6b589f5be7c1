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
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// DatabaseName is the catalog file name inside the data directory.
const DatabaseName = "catalog.db"

// Store is the SQLite catalog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the catalog in dataDir and migrates it.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: data directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ManifestStore returns a ManifestStore backed by this catalog.
func (s *Store) ManifestStore() *ManifestStore {
	return &ManifestStore{store: s}
}

// migrate applies every NNN_*.up.sql newer than the recorded version, each
// in its own transaction together with its schema_migrations row.
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

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
		logger.Debug("Applied migration %s", name)
	}
	return nil
}

// ==================== Manifest Store ====================

// ManifestStore implements driven.ManifestStore on the catalog.
type ManifestStore struct {
	store *Store
}

var _ driven.ManifestStore = (*ManifestStore)(nil)

const manifestColumns = `doc_id, filename, num_pages, indexed, created_at, indexed_at,
	sha256, index_backend, embedder`

// Load returns the manifest of id. Query failures are reported as absent.
func (m *ManifestStore) Load(ctx context.Context, id string) (*domain.Manifest, bool) {
	row := m.store.db.QueryRowContext(ctx,
		"SELECT "+manifestColumns+" FROM manifests WHERE doc_id = ?", id)
	manifest, err := scanManifest(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warnw("unreadable manifest row", "doc", id, "err", err)
		}
		return nil, false
	}
	return manifest, true
}

// Save upserts the whole record.
func (m *ManifestStore) Save(ctx context.Context, manifest *domain.Manifest) error {
	var indexedAt sql.NullInt64
	if manifest.IndexedAt != nil {
		indexedAt = sql.NullInt64{Int64: manifest.IndexedAt.UnixNano(), Valid: true}
	}
	_, err := m.store.db.ExecContext(ctx, `
		INSERT INTO manifests (`+manifestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			filename = excluded.filename,
			num_pages = excluded.num_pages,
			indexed = excluded.indexed,
			created_at = excluded.created_at,
			indexed_at = excluded.indexed_at,
			sha256 = excluded.sha256,
			index_backend = excluded.index_backend,
			embedder = excluded.embedder
	`,
		manifest.DocID,
		manifest.Filename,
		manifest.NumPages,
		boolToInt(manifest.Indexed),
		manifest.CreatedAt.UnixNano(),
		indexedAt,
		manifest.SHA256,
		manifest.IndexBackend,
		manifest.Embedder,
	)
	if err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}
	return nil
}

// List returns every manifest ordered by doc_id.
func (m *ManifestStore) List(ctx context.Context) ([]*domain.Manifest, error) {
	rows, err := m.store.db.QueryContext(ctx,
		"SELECT "+manifestColumns+" FROM manifests ORDER BY doc_id")
	if err != nil {
		return nil, fmt.Errorf("listing manifests: %w", err)
	}
	defer rows.Close()

	var out []*domain.Manifest
	for rows.Next() {
		manifest, err := scanManifest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning manifest: %w", err)
		}
		out = append(out, manifest)
	}
	return out, rows.Err()
}

// Close closes the underlying catalog.
func (m *ManifestStore) Close() error {
	return m.store.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanManifest(row scanner) (*domain.Manifest, error) {
	var (
		manifest  domain.Manifest
		indexed   int
		createdAt int64
		indexedAt sql.NullInt64
	)
	err := row.Scan(
		&manifest.DocID,
		&manifest.Filename,
		&manifest.NumPages,
		&indexed,
		&createdAt,
		&indexedAt,
		&manifest.SHA256,
		&manifest.IndexBackend,
		&manifest.Embedder,
	)
	if err != nil {
		return nil, err
	}
	manifest.Indexed = indexed != 0
	manifest.CreatedAt = time.Unix(0, createdAt).UTC()
	if indexedAt.Valid {
		at := time.Unix(0, indexedAt.Int64).UTC()
		manifest.IndexedAt = &at
	}
	return &manifest, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
