// Package sqlite provides the persistent, file-backed vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A Store owns the database connection;
// each named collection is exposed as a driven.VectorIndex.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. A collection row records its distance metric (fixed
// at creation) and its dimension (fixed by the first upsert). Entries hold the
// chunk text, its typed metadata and the embedding as a little-endian float32 blob.
//
// # Search
//
// Queries scan the collection and rank by exact distance. Collections are
// expected to hold thousands, not millions, of chunks.
//
// # Data Location
//
// The database is stored at <index dir>/index.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
