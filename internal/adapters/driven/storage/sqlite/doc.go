// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple repository interfaces
// through a single database connection:
//
//   - SourceRepository: source records and processing state
//   - EmbeddingRepository: chunk embedding vectors
//   - RegistryRepository: handler and source-type identity records
//   - TagRepository: tags and their source links
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory, applied in filename order on open.
//
// # Data Location
//
// By default, the database is stored at ~/.semindex/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
