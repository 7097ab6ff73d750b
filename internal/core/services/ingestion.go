package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/logger"
	"github.com/custodia-labs/athena/internal/metrics"
	"github.com/custodia-labs/athena/internal/workerpool"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService stores uploads, indexes their text and extracts their
// page images. Text and image work run as independent tasks on a shared pool.
type IngestionService struct {
	blobs      driven.BlobStore
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	vectors    driven.VectorStore
	sources    driven.SourceStore
	pool       *workerpool.Pool

	// timeout bounds one ingestion when the caller sets no deadline (0 = none).
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestionService creates a new ingestion service.
// The embedder may be nil, in which case every ingestion fails with
// domain.ErrEmbeddingUnavailable.
func NewIngestionService(
	blobs driven.BlobStore,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	sources driven.SourceStore,
	pool *workerpool.Pool,
) *IngestionService {
	return &IngestionService{
		blobs:      blobs,
		extractors: extractors,
		pipeline:   pipeline,
		embedder:   embedder,
		vectors:    vectors,
		sources:    sources,
		pool:       pool,
		locks:      make(map[string]*sync.Mutex),
	}
}

// SetTimeout sets the deadline applied to ingestions whose context has none.
func (s *IngestionService) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Ingest stores data under filename and indexes it.
func (s *IngestionService) Ingest(ctx context.Context, data []byte, filename string) (*domain.IngestReport, error) {
	name := sourceName(filename)
	if name == "" {
		return nil, fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, &domain.IngestError{SourceID: name, Err: domain.ErrEmbeddingUnavailable}
	}

	// Same-name ingestions are serialised so the fingerprint check cannot race.
	unlock := s.lockSource(name)

	logger.Section("Ingest " + name)
	start := time.Now()
	defer metrics.ObserveSince(metrics.IngestDuration, start)

	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, pending, err := s.ingest(ctx, data, name)
	if pending != nil {
		// The text task outlived the deadline; the name stays locked until it
		// has registered its chunks.
		go func() {
			<-pending.Done()
			unlock()
		}()
	} else {
		unlock()
	}

	switch {
	case errors.Is(err, domain.ErrIngestTimeout):
		metrics.DocumentsIngested.WithLabelValues(metrics.OutcomeTimeout).Inc()
	case err != nil:
		metrics.DocumentsIngested.WithLabelValues(metrics.OutcomeFailed).Inc()
	case report.Skipped:
		metrics.DocumentsIngested.WithLabelValues(metrics.OutcomeSkipped).Inc()
	case report.Replaced:
		metrics.DocumentsIngested.WithLabelValues(metrics.OutcomeReplaced).Inc()
	default:
		metrics.DocumentsIngested.WithLabelValues(metrics.OutcomeIndexed).Inc()
	}
	if err != nil {
		logger.Warn("Ingestion of %s failed: %v", name, err)
		return nil, err
	}
	return report, nil
}

// ingest runs one ingestion. When it gives up on the deadline while the text
// task is still running, it returns that task's handle as pending.
func (s *IngestionService) ingest(
	ctx context.Context, data []byte, name string,
) (*domain.IngestReport, *workerpool.Handle, error) {
	sum := sha256.Sum256(data)
	fingerprint := hex.EncodeToString(sum[:])

	prev, err := s.sources.Get(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, &domain.IngestError{SourceID: name, Err: fmt.Errorf("look up source: %w", err)}
	}
	if prev != nil && prev.Fingerprint == fingerprint {
		logger.Debug("%s unchanged (%s), skipping", name, fingerprint[:12])
		return &domain.IngestReport{SourceID: name, ImagesFound: len(prev.Images), Skipped: true}, nil, nil
	}

	path, err := s.blobs.SaveDocument(ctx, name, data)
	if err != nil {
		return nil, nil, &domain.IngestError{SourceID: name, Err: fmt.Errorf("save document: %w", err)}
	}

	mimeType := mime.TypeByExtension(filepath.Ext(name))
	extractor, err := s.extractors.Resolve(mimeType, name)
	if err != nil {
		return nil, nil, &domain.IngestError{SourceID: name, Err: err}
	}
	logger.Debug("Using extractor %s for %s", extractor.Name(), name)

	doc := &domain.Document{ID: name, Path: path, MIMEType: mimeType}

	// The text task registers the source as soon as its chunks are in the
	// index, so an expired deadline cannot leave them unrecorded.
	var record domain.SourceDocument
	textTask, err := s.pool.Submit(ctx, func(ctx context.Context) error {
		ids, err := s.indexText(ctx, extractor, doc)
		if err != nil {
			return err
		}
		record = newSourceRecord(name, fingerprint, ids, prev)
		return s.register(context.WithoutCancel(ctx), record, prev)
	})
	if err != nil {
		return nil, nil, s.submitError(ctx, name, err)
	}

	pages, err := extractor.PageCount(ctx, path)
	if err != nil {
		logger.Warn("Counting pages of %s: %v", name, err)
		pages = 0
	}

	pageImages := make([][]domain.ImageRef, pages)
	pageTasks := make([]*workerpool.Handle, 0, pages)
	for page := range pages {
		h, err := s.pool.Submit(ctx, func(ctx context.Context) error {
			pageImages[page] = s.extractPage(ctx, extractor, name, path, page)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, textTask, s.deadlineError(ctx, name)
			}
			logger.Warn("Scheduling image pages of %s: %v", name, err)
			break
		}
		pageTasks = append(pageTasks, h)
	}

	textErr := textTask.Wait(ctx)
	if ctx.Err() != nil {
		return nil, textTask, s.deadlineError(ctx, name)
	}
	if err := workerpool.WaitAll(ctx, pageTasks...); err != nil {
		if ctx.Err() != nil {
			return nil, textTask, s.deadlineError(ctx, name)
		}
		// A panicking page is reported by the pool; its images count as zero.
		metrics.PageFailures.Inc()
		logger.Warn("Image extraction for %s: %v", name, err)
	}

	if textErr != nil {
		return nil, nil, &domain.IngestError{SourceID: name, Err: textErr}
	}

	var images []domain.ImageRef
	for _, refs := range pageImages {
		images = append(images, refs...)
	}
	if len(images) > 0 {
		if err := s.sources.AppendImages(ctx, name, images); err != nil {
			logger.Warn("Recording images of %s: %v", name, err)
			images = nil
		}
	}

	report := &domain.IngestReport{
		SourceID:    name,
		ChunksAdded: len(record.ChunkIDs),
		ImagesFound: len(images),
		Replaced:    prev != nil,
	}
	metrics.ChunksAdded.Add(float64(report.ChunksAdded))
	metrics.ImagesExtracted.Add(float64(report.ImagesFound))
	logger.Info("Ingested %s: %d chunks, %d images", name, report.ChunksAdded, report.ImagesFound)
	return report, nil, nil
}

// newSourceRecord describes freshly indexed content. Chunks of a previous
// version stay in the append-only index but leave retrieval.
func newSourceRecord(name, fingerprint string, ids []int, prev *domain.SourceDocument) domain.SourceDocument {
	now := time.Now().UTC()
	record := domain.SourceDocument{
		ID:          name,
		Fingerprint: fingerprint,
		ChunkIDs:    ids,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prev != nil {
		record.CreatedAt = prev.CreatedAt
		record.RetiredChunkIDs = append(slices.Clone(prev.RetiredChunkIDs), prev.ChunkIDs...)
	}
	return record
}

// register saves record. If that fails the new chunks are already in the
// index, so a fallback record without a fingerprint retires them; the next
// ingestion of the name then indexes again instead of duplicating.
func (s *IngestionService) register(ctx context.Context, record domain.SourceDocument, prev *domain.SourceDocument) error {
	err := s.sources.Save(ctx, record)
	if err == nil {
		return nil
	}

	fallback := domain.SourceDocument{
		ID:              record.ID,
		RetiredChunkIDs: record.ChunkIDs,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
	if prev != nil {
		fallback.ChunkIDs = prev.ChunkIDs
		fallback.Images = prev.Images
		fallback.RetiredChunkIDs = append(slices.Clone(prev.RetiredChunkIDs), record.ChunkIDs...)
	}
	if ferr := s.sources.Save(ctx, fallback); ferr != nil {
		logger.Error("Chunks %v of %s are unregistered: %v", record.ChunkIDs, record.ID, ferr)
	}
	return fmt.Errorf("register source: %w", err)
}

// indexText runs extract -> pipeline -> embed -> add for one document.
func (s *IngestionService) indexText(ctx context.Context, extractor driven.Extractor, doc *domain.Document) ([]int, error) {
	text, err := extractor.ExtractText(ctx, doc.Path)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrNoText
	}
	doc.Content = text

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("process document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoText
	}
	logger.Debug("%s: %d chunks", doc.ID, len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(texts))
	}

	inputs := make([]domain.ChunkInput, len(texts))
	for i := range texts {
		inputs[i] = domain.ChunkInput{Text: texts[i], Embedding: embeddings[i]}
	}

	ids, err := s.vectors.Add(ctx, inputs, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("add chunks: %w", err)
	}
	return ids, nil
}

// extractPage saves the images of one page. Any failure counts the page as
// having no images.
func (s *IngestionService) extractPage(
	ctx context.Context, extractor driven.Extractor, sourceID, path string, page int,
) []domain.ImageRef {
	images, err := extractor.ExtractPageImages(ctx, path, page)
	if err != nil {
		metrics.PageFailures.Inc()
		logger.Warn("Extracting images from %s page %d: %v", sourceID, page+1, err)
		return nil
	}

	refs := make([]domain.ImageRef, 0, len(images))
	for _, img := range images {
		img.PageIndex = page
		handle, err := s.blobs.SaveImage(ctx, sourceID, img)
		if err != nil {
			metrics.PageFailures.Inc()
			logger.Warn("Saving image %d of %s page %d: %v", img.Ordinal, sourceID, page+1, err)
			return nil
		}
		refs = append(refs, domain.ImageRef{Path: handle, PageIndex: page, Ordinal: img.Ordinal})
	}
	return refs
}

// IngestFile reads a file from disk and ingests it under its base name.
func (s *IngestionService) IngestFile(ctx context.Context, path string) (*domain.IngestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return s.Ingest(ctx, data, filepath.Base(path))
}

// SupportedExtensions returns the file extensions that can be ingested.
func (s *IngestionService) SupportedExtensions() []string {
	return s.extractors.SupportedExtensions()
}

// Shutdown waits for in-flight tasks and closes the worker pool.
func (s *IngestionService) Shutdown(ctx context.Context) error {
	return s.pool.Shutdown(ctx)
}

func (s *IngestionService) lockSource(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// submitError maps a failed pool submission to the ingestion error taxonomy.
func (s *IngestionService) submitError(ctx context.Context, name string, err error) error {
	if ctx.Err() != nil {
		return s.deadlineError(ctx, name)
	}
	return &domain.IngestError{SourceID: name, Err: err}
}

// deadlineError reports an expired join. Chunks added before expiry stay valid.
func (s *IngestionService) deadlineError(ctx context.Context, name string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domain.ErrIngestTimeout, name, ctx.Err())
	}
	return &domain.IngestError{SourceID: name, Err: ctx.Err()}
}

// sourceName reduces an upload name to the identifier used for the document.
func sourceName(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" || name == string(filepath.Separator) {
		return ""
	}
	return name
}
