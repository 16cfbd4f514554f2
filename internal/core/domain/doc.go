// Package domain defines the core business entities for semindex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: An addressable piece of content plus its processing state
//   - Embedding: A stored vector for one chunk of a source's content
//   - HandlerRecord / SourceTypeRecord / Tag: Registry metadata
//   - SearchFilter / SearchResult / HistogramBucket: Query types
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
