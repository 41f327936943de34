// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded window of a document's normalised text
//   - ChunkMetadata: The typed metadata stored with every indexed chunk
//   - QueryResult: Ranked matches returned by the vector index
//   - ConversationState: A caller-owned, append-only chat transcript
//   - AnswerRecord: A validated answer plus its evidence bundle
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
