// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceHandler: Crawls a root for draft sources and reads their content
//   - SourceRepository: Source persistence
//   - EmbeddingRepository: Embedding persistence
//   - RegistryRepository: Handler and source-type registry persistence
//   - TagRepository: Tag persistence
//   - EmbeddingProvider: Generates vector embeddings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
