package domain

import "time"

// RawDocument is an uploaded file before extraction.
type RawDocument struct {
	// Filename is the upload name. It doubles as the source identifier.
	Filename string

	// Path is where the raw bytes were persisted.
	Path string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Document is the extracted text of an upload, fed through the
// post-processor pipeline to produce chunks.
type Document struct {
	// ID is the source identifier (the upload filename).
	ID string

	// Path is the location of the persisted raw bytes.
	Path string

	// MIMEType is the content type the text was extracted from.
	MIMEType string

	// Content is the extracted text.
	// Pipeline stages may rewrite it (e.g. display-script normalisation).
	Content string
}

// Chunk is a contiguous window of normalised document text,
// the unit of embedding and retrieval.
// Chunks are immutable once added to the vector store.
type Chunk struct {
	// ID is the index position assigned by the vector store.
	// It is -1 until the chunk is stored.
	ID int

	// SourceID is the document the chunk was cut from.
	SourceID string

	// Text is the chunk content.
	Text string

	// Position is the ordinal of the chunk within its document.
	Position int

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// ChunkInput is a chunk awaiting an id: the unit passed to VectorStore.Add.
type ChunkInput struct {
	Text      string
	Embedding []float32
}

// ImageRef points at an image extracted from a document page.
type ImageRef struct {
	// Path is an opaque handle to the stored image.
	Path string

	// PageIndex is the zero-based page the image was found on.
	PageIndex int

	// Ordinal is the image's position within its page.
	Ordinal int
}

// ExtractedImage is one image produced by an image extractor.
type ExtractedImage struct {
	PageIndex int
	Ordinal   int
	Data      []byte
	Ext       string
}

// SourceDocument is the registry record of an ingested upload.
type SourceDocument struct {
	// ID is the filename, unique per upload session.
	ID string

	// Fingerprint is the hex sha256 of the raw bytes.
	// Re-ingesting identical bytes is a no-op.
	Fingerprint string

	// ChunkIDs are the live chunk ids in document order.
	ChunkIDs []int

	// RetiredChunkIDs are ids superseded by a changed-content re-ingest.
	// They stay in the append-only index but are excluded from retrieval.
	RetiredChunkIDs []int

	// Images are the extracted images in page order.
	Images []ImageRef

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the record last changed.
	UpdatedAt time.Time
}

// IngestReport summarises a completed ingestion.
type IngestReport struct {
	// SourceID is the ingested document name.
	SourceID string

	// ChunksAdded is the number of new chunks indexed.
	ChunksAdded int

	// ImagesFound is the number of images extracted successfully.
	ImagesFound int

	// Skipped is true when the content was unchanged and nothing was done.
	Skipped bool

	// Replaced is true when a changed document superseded an earlier version.
	Replaced bool
}
