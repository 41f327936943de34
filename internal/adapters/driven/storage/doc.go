// Package storage selects and opens the configured persistence adapters.
//
// Adapters live in subpackages:
//   - sqlite: persistent vector index (default)
//   - postgres: pgvector-backed vector index
//   - memory: ephemeral adapters for tests and dry runs
//   - filesystem: uploaded document storage
package storage
