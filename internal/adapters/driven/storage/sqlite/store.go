package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/semindex-cli/internal/core/domain"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all repository interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.semindex/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".semindex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// SourceRepository returns a SourceRepository backed by this store.
func (s *Store) SourceRepository() driven.SourceRepository {
	return &sourceStore{store: s}
}

// EmbeddingRepository returns an EmbeddingRepository backed by this store.
func (s *Store) EmbeddingRepository() driven.EmbeddingRepository {
	return &embeddingStore{store: s}
}

// RegistryRepository returns a RegistryRepository backed by this store.
func (s *Store) RegistryRepository() driven.RegistryRepository {
	return &registryStore{store: s}
}

// TagRepository returns a TagRepository backed by this store.
func (s *Store) TagRepository() driven.TagRepository {
	return &tagStore{store: s}
}

func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Repository ====================

// sourceStore implements driven.SourceRepository.
type sourceStore struct {
	store *Store
}

var _ driven.SourceRepository = (*sourceStore)(nil)

const sourceColumns = `id, uri, source_handler_id, source_type_id, resolved_to, title,
	obj_created, obj_modified, last_checked, last_processed, error, error_message`

// List returns all sources, newest-modified first when requested.
func (s *sourceStore) List(ctx context.Context, orderByModified bool) ([]domain.Source, error) {
	query := "SELECT " + sourceColumns + " FROM sources"
	if orderByModified {
		query += " ORDER BY obj_modified DESC"
	}

	rows, err := s.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	if err := s.attachTags(ctx, sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// Get retrieves a source by id.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	return s.getWhere(ctx, "id = ?", id)
}

// GetByURI retrieves a source by its unique URI.
func (s *sourceStore) GetByURI(ctx context.Context, uri string) (*domain.Source, error) {
	return s.getWhere(ctx, "uri = ?", uri)
}

func (s *sourceStore) getWhere(ctx context.Context, where string, arg any) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM sources WHERE "+where, arg)

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sources := []domain.Source{*source}
	if err := s.attachTags(ctx, sources); err != nil {
		return nil, err
	}
	return &sources[0], nil
}

// UpsertMany inserts or refreshes drafts keyed by URI in one transaction.
// Refreshing touches the ingestion-owned columns only; the sticky error
// flag is cleared when the draft's ObjModified advances past the stored
// one, so an operator-driven re-crawl can resurrect a failed source.
func (s *sourceStore) UpsertMany(ctx context.Context, drafts []domain.Source) (int, int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	var updated, inserted int
	for i := range drafts {
		draft := &drafts[i]

		var existingID string
		var existingModified time.Time
		err := tx.QueryRowContext(ctx,
			"SELECT id, obj_modified FROM sources WHERE uri = ?", draft.URI,
		).Scan(&existingID, &existingModified)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			id := draft.ID
			if id == "" {
				id = uuid.New().String()
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO sources (id, uri, source_handler_id, source_type_id, resolved_to,
					title, obj_created, obj_modified, last_checked, last_processed, error, error_message)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, 0, NULL)`,
				id, draft.URI, draft.SourceHandlerID, draft.SourceTypeID, draft.ResolvedTo,
				draft.Title, draft.ObjCreated.UTC(), draft.ObjModified.UTC(), time.Now().UTC(),
			)
			if err != nil {
				return updated, inserted, fmt.Errorf("inserting source %s: %w", draft.URI, err)
			}
			inserted++
			existingID = id

		case err != nil:
			return updated, inserted, fmt.Errorf("looking up source %s: %w", draft.URI, err)

		default:
			clearError := draft.ObjModified.After(existingModified)
			_, err := tx.ExecContext(ctx, `
				UPDATE sources
				SET obj_created = ?, obj_modified = ?, resolved_to = ?, title = ?, last_checked = ?,
					error = CASE WHEN ? THEN 0 ELSE error END,
					error_message = CASE WHEN ? THEN NULL ELSE error_message END
				WHERE id = ?`,
				draft.ObjCreated.UTC(), draft.ObjModified.UTC(), draft.ResolvedTo, draft.Title,
				time.Now().UTC(), clearError, clearError, existingID,
			)
			if err != nil {
				return updated, inserted, fmt.Errorf("updating source %s: %w", draft.URI, err)
			}
			updated++
		}

		if err := replaceTagLinks(ctx, tx, existingID, draft.Tags); err != nil {
			return updated, inserted, err
		}
	}

	if err := tx.Commit(); err != nil {
		return updated, inserted, fmt.Errorf("committing upsert: %w", err)
	}
	return updated, inserted, nil
}

// UpdateStatus persists only the processing-owned columns.
func (s *sourceStore) UpdateStatus(ctx context.Context, source *domain.Source) error {
	var lastProcessed any
	if source.LastProcessed != nil {
		lastProcessed = source.LastProcessed.UTC()
	}
	var errorMessage any
	if source.ErrorMessage != "" {
		errorMessage = source.ErrorMessage
	}

	result, err := s.store.db.ExecContext(ctx, `
		UPDATE sources
		SET last_processed = ?, error = ?, error_message = ?, last_checked = ?
		WHERE id = ?`,
		lastProcessed, source.Error, errorMessage, source.LastChecked.UTC(), source.ID,
	)
	if err != nil {
		return fmt.Errorf("updating source status %s: %w", source.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating source status %s: %w", source.ID, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// attachTags loads the tag sets for the given sources in one query.
func (s *sourceStore) attachTags(ctx context.Context, sources []domain.Source) error {
	if len(sources) == 0 {
		return nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT st.source_id, t.id, t.name
		FROM source_tags st
		JOIN tags t ON t.id = st.tag_id
		ORDER BY t.name`)
	if err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}
	defer rows.Close()

	bySource := make(map[string][]domain.Tag)
	for rows.Next() {
		var sourceID string
		var tag domain.Tag
		if err := rows.Scan(&sourceID, &tag.ID, &tag.Name); err != nil {
			return fmt.Errorf("scanning tag: %w", err)
		}
		bySource[sourceID] = append(bySource[sourceID], tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating tags: %w", err)
	}

	for i := range sources {
		sources[i].Tags = bySource[sources[i].ID]
	}
	return nil
}

func replaceTagLinks(ctx context.Context, tx *sql.Tx, sourceID string, tags []domain.Tag) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM source_tags WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("clearing tags for %s: %w", sourceID, err)
	}
	for _, tag := range tags {
		if tag.ID == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO source_tags (source_id, tag_id) VALUES (?, ?)", sourceID, tag.ID)
		if err != nil {
			return fmt.Errorf("tagging %s with %s: %w", sourceID, tag.Name, err)
		}
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var lastProcessed sql.NullTime
	var errorMessage sql.NullString

	err := row.Scan(
		&source.ID, &source.URI, &source.SourceHandlerID, &source.SourceTypeID,
		&source.ResolvedTo, &source.Title, &source.ObjCreated, &source.ObjModified,
		&source.LastChecked, &lastProcessed, &source.Error, &errorMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if lastProcessed.Valid {
		t := lastProcessed.Time
		source.LastProcessed = &t
	}
	source.ErrorMessage = errorMessage.String
	return &source, nil
}

// ==================== Embedding Repository ====================

// embeddingStore implements driven.EmbeddingRepository.
type embeddingStore struct {
	store *Store
}

var _ driven.EmbeddingRepository = (*embeddingStore)(nil)

const embeddingColumns = "id, source_id, vector, chunk_idx, chunk_size, chunk_overlap"

// List returns all embeddings.
func (s *embeddingStore) List(ctx context.Context) ([]domain.Embedding, error) {
	return s.query(ctx, "SELECT "+embeddingColumns+" FROM embeddings")
}

// ListBySourceID returns a source's embeddings ordered by chunk index.
func (s *embeddingStore) ListBySourceID(ctx context.Context, sourceID string) ([]domain.Embedding, error) {
	return s.query(ctx,
		"SELECT "+embeddingColumns+" FROM embeddings WHERE source_id = ? ORDER BY chunk_idx", sourceID)
}

// ListFiltered returns the embeddings whose source passes the date bounds
// and, when tagIDs is non-nil, holds at least one listed tag.
func (s *embeddingStore) ListFiltered(ctx context.Context, dates domain.DateFilter, tagIDs []string) ([]domain.Embedding, error) {
	if dates.Empty() && tagIDs == nil {
		return s.List(ctx)
	}

	var sb strings.Builder
	sb.WriteString("SELECT DISTINCT e.id, e.source_id, e.vector, e.chunk_idx, e.chunk_size, e.chunk_overlap")
	sb.WriteString(" FROM embeddings e JOIN sources s ON s.id = e.source_id")

	var args []any
	var wheres []string

	if tagIDs != nil {
		if len(tagIDs) == 0 {
			// An empty (non-nil) tag filter matches nothing.
			return []domain.Embedding{}, nil
		}
		sb.WriteString(" JOIN source_tags st ON st.source_id = s.id")
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tagIDs)), ",")
		wheres = append(wheres, "st.tag_id IN ("+placeholders+")")
		for _, id := range tagIDs {
			args = append(args, id)
		}
	}
	if dates.CreatedStart != nil {
		wheres = append(wheres, "s.obj_created >= ?")
		args = append(args, dates.CreatedStart.UTC())
	}
	if dates.CreatedEnd != nil {
		wheres = append(wheres, "s.obj_created <= ?")
		args = append(args, dates.CreatedEnd.UTC())
	}
	if dates.ModifiedStart != nil {
		wheres = append(wheres, "s.obj_modified >= ?")
		args = append(args, dates.ModifiedStart.UTC())
	}
	if dates.ModifiedEnd != nil {
		wheres = append(wheres, "s.obj_modified <= ?")
		args = append(args, dates.ModifiedEnd.UTC())
	}

	if len(wheres) > 0 {
		sb.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	return s.query(ctx, sb.String(), args...)
}

// Get retrieves an embedding by id.
func (s *embeddingStore) Get(ctx context.Context, id string) (*domain.Embedding, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+embeddingColumns+" FROM embeddings WHERE id = ?", id)

	embedding, err := scanEmbedding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return embedding, err
}

// CreateMany stores a batch of embeddings in one transaction.
func (s *embeddingStore) CreateMany(ctx context.Context, embeddings []domain.Embedding) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning embedding insert: %w", err)
	}
	defer tx.Rollback()

	for i := range embeddings {
		e := &embeddings[i]
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO embeddings (id, source_id, vector, chunk_idx, chunk_size, chunk_overlap)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, e.SourceID, float32SliceToBytes(e.Vector), e.ChunkIdx, e.ChunkSize, e.ChunkOverlap,
		)
		if err != nil {
			return fmt.Errorf("inserting embedding %d for %s: %w", e.ChunkIdx, e.SourceID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embeddings: %w", err)
	}
	return nil
}

// DeleteBySourceID removes all embeddings owned by a source.
func (s *embeddingStore) DeleteBySourceID(ctx context.Context, sourceID string) (int, error) {
	result, err := s.store.db.ExecContext(ctx,
		"DELETE FROM embeddings WHERE source_id = ?", sourceID)
	if err != nil {
		return 0, fmt.Errorf("deleting embeddings for %s: %w", sourceID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting embeddings for %s: %w", sourceID, err)
	}
	return int(affected), nil
}

func (s *embeddingStore) query(ctx context.Context, query string, args ...any) ([]domain.Embedding, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing embeddings: %w", err)
	}
	defer rows.Close()

	embeddings := make([]domain.Embedding, 0)
	for rows.Next() {
		embedding, err := scanEmbedding(rows)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, *embedding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	return embeddings, nil
}

func scanEmbedding(row rowScanner) (*domain.Embedding, error) {
	var embedding domain.Embedding
	var vector []byte

	err := row.Scan(&embedding.ID, &embedding.SourceID, &vector,
		&embedding.ChunkIdx, &embedding.ChunkSize, &embedding.ChunkOverlap)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning embedding: %w", err)
	}

	embedding.Vector = bytesToFloat32Slice(vector)
	return &embedding, nil
}

// ==================== Registry Repository ====================

// registryStore implements driven.RegistryRepository.
type registryStore struct {
	store *Store
}

var _ driven.RegistryRepository = (*registryStore)(nil)

// GetOrCreateHandler returns the handler record by name, creating it if
// absent. Registration runs single-threaded at startup.
func (s *registryStore) GetOrCreateHandler(ctx context.Context, name string) (*domain.HandlerRecord, error) {
	var record domain.HandlerRecord
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id, name FROM source_handlers WHERE name = ?", name,
	).Scan(&record.ID, &record.Name)
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up handler %q: %w", name, err)
	}

	record = domain.HandlerRecord{ID: uuid.New().String(), Name: name}
	if _, err := s.store.db.ExecContext(ctx,
		"INSERT INTO source_handlers (id, name) VALUES (?, ?)", record.ID, record.Name); err != nil {
		return nil, fmt.Errorf("creating handler %q: %w", name, err)
	}
	return &record, nil
}

// GetOrCreateType returns the source-type record scoped to a handler,
// creating it if absent.
func (s *registryStore) GetOrCreateType(ctx context.Context, name, handlerID string) (*domain.SourceTypeRecord, error) {
	var record domain.SourceTypeRecord
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id, name, source_handler_id FROM source_types WHERE name = ? AND source_handler_id = ?",
		name, handlerID,
	).Scan(&record.ID, &record.Name, &record.SourceHandlerID)
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up type %q: %w", name, err)
	}

	record = domain.SourceTypeRecord{ID: uuid.New().String(), Name: name, SourceHandlerID: handlerID}
	if _, err := s.store.db.ExecContext(ctx,
		"INSERT INTO source_types (id, name, source_handler_id) VALUES (?, ?, ?)",
		record.ID, record.Name, record.SourceHandlerID); err != nil {
		return nil, fmt.Errorf("creating type %q: %w", name, err)
	}
	return &record, nil
}

// ListTypeCounts returns every source type with its distinct embedded
// source count, ordered by name.
func (s *registryStore) ListTypeCounts(ctx context.Context) ([]domain.TypeCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.source_handler_id, COUNT(DISTINCT e.source_id)
		FROM source_types t
		LEFT JOIN sources s ON s.source_type_id = t.id
		LEFT JOIN embeddings e ON e.source_id = s.id
		GROUP BY t.id
		ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("counting types: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.TypeCount, 0)
	for rows.Next() {
		var tc domain.TypeCount
		if err := rows.Scan(&tc.Type.ID, &tc.Type.Name, &tc.Type.SourceHandlerID, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning type count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating type counts: %w", err)
	}
	return counts, nil
}

// ==================== Tag Repository ====================

// tagStore implements driven.TagRepository.
type tagStore struct {
	store *Store
}

var _ driven.TagRepository = (*tagStore)(nil)

// GetOrCreate returns the tag by name, creating it if absent.
func (s *tagStore) GetOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id, name FROM tags WHERE name = ?", name,
	).Scan(&tag.ID, &tag.Name)
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up tag %q: %w", name, err)
	}

	tag = domain.Tag{ID: uuid.New().String(), Name: name}
	if _, err := s.store.db.ExecContext(ctx,
		"INSERT INTO tags (id, name) VALUES (?, ?)", tag.ID, tag.Name); err != nil {
		return nil, fmt.Errorf("creating tag %q: %w", name, err)
	}
	return &tag, nil
}

// List returns all tags ordered by name.
func (s *tagStore) List(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	tags := make([]domain.Tag, 0)
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

// ListCounted returns tags on embedded sources with distinct source counts,
// most used first.
func (s *tagStore) ListCounted(ctx context.Context) ([]domain.TagCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.id, t.name, COUNT(DISTINCT s.id) AS uses
		FROM tags t
		JOIN source_tags st ON st.tag_id = t.id
		JOIN sources s ON s.id = st.source_id
		JOIN embeddings e ON e.source_id = s.id
		GROUP BY t.id
		ORDER BY uses DESC, t.name`)
	if err != nil {
		return nil, fmt.Errorf("counting tags: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.TagCount, 0)
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Tag.ID, &tc.Tag.Name, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning tag count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag counts: %w", err)
	}
	return counts, nil
}

// ==================== Vector codec ====================

// float32SliceToBytes converts a float32 slice to little-endian bytes for
// BLOB storage.
func float32SliceToBytes(floats []float32) []byte {
	bytes := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(bytes[i*4:], math.Float32bits(f))
	}
	return bytes
}

// bytesToFloat32Slice converts little-endian bytes back to a float32 slice.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
