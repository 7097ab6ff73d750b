// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Pulls text and page images out of an uploaded file
//   - ExtractorRegistry: Selects the extractor for a file type
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Exact nearest-neighbour index over chunk embeddings
//   - SnapshotStore: Atomic persistence of the vector store triple
//   - SourceStore: Registry of ingested documents and their fingerprints
//   - BlobStore: Raw document and image bytes
//   - ConfigStore: Application configuration
//   - ChatHistoryStore: Append-only session history
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, ask/summarize/quiz are disabled.
//   - LanguageDetector: Without it, every text is treated as the pivot language.
//   - Translator: Without it, texts pass through untranslated.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
