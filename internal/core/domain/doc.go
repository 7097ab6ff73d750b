// Package domain defines the core business entities for Athena.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Document: extracted text of an uploaded file, before chunking
//   - Chunk: a searchable window of normalised document text
//   - SourceDocument: the registry record of an ingested upload
//   - VectorSnapshot: the persisted embeddings/texts/sources triple
//   - ChatTurn: one question and answer in the session history
//   - Generation: a model result, either complete text or a stream
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, golang.org/x/text
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
