// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentParser: Turns an uploaded file into normalised text
//   - DocumentStorage: Persists uploaded files on disk
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores chunks with vectors and answers similarity queries
//   - LLMService: Produces chat completions
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Pings configured providers
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
