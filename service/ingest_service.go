package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nyayamitra-backend/chunker"
	"nyayamitra-backend/llm"
	"nyayamitra-backend/logger"
	"nyayamitra-backend/models"
)

var ErrIngestInProgress = errors.New("an ingestion run is already in progress")

const (
	defaultBatchSize      = 50
	defaultBatchDelay     = 100 * time.Millisecond
	defaultChunkMaxChars  = 1000
	defaultUploadMaxChars = 2000
	metadataTextRunes     = 1000
)

// IngestOptions control a single bulk run.
type IngestOptions struct {
	ClearExisting bool
}

// IngestService loads the corpus, chunks it, embeds the chunks in batches,
// and upserts them into the vector index. Only one run executes at a time.
type IngestService struct {
	mu             sync.Mutex
	index          VectorIndex
	embedder       llm.Embedder
	loader         CorpusLoader
	journal        RunJournal
	batchSize      int
	chunkMaxChars  int
	uploadMaxChars int
	dimension      int
	batchDelay     time.Duration
	log            *logger.Logger
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithVectorIndex sets the vector index
func IngestWithVectorIndex(index VectorIndex) IngestServiceOption {
	return func(s *IngestService) {
		s.index = index
	}
}

// IngestWithEmbedder sets the embedding client
func IngestWithEmbedder(embedder llm.Embedder) IngestServiceOption {
	return func(s *IngestService) {
		s.embedder = embedder
	}
}

// IngestWithLoader sets the corpus loader
func IngestWithLoader(loader CorpusLoader) IngestServiceOption {
	return func(s *IngestService) {
		s.loader = loader
	}
}

// IngestWithJournal sets the optional run journal
func IngestWithJournal(journal RunJournal) IngestServiceOption {
	return func(s *IngestService) {
		s.journal = journal
	}
}

// IngestWithBatchSize sets how many chunks are embedded and upserted per batch
func IngestWithBatchSize(n int) IngestServiceOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// IngestWithChunkSize sets the chunk budgets for corpus and uploaded text
func IngestWithChunkSize(corpusMax, uploadMax int) IngestServiceOption {
	return func(s *IngestService) {
		if corpusMax > 0 {
			s.chunkMaxChars = corpusMax
		}
		if uploadMax > 0 {
			s.uploadMaxChars = uploadMax
		}
	}
}

// IngestWithBatchDelay sets the pause between batches
func IngestWithBatchDelay(d time.Duration) IngestServiceOption {
	return func(s *IngestService) {
		if d > 0 {
			s.batchDelay = d
		}
	}
}

// IngestWithDimension sets the expected embedding dimension for sanity checks
func IngestWithDimension(d int) IngestServiceOption {
	return func(s *IngestService) {
		if d > 0 {
			s.dimension = d
		}
	}
}

// IngestWithLogger sets the logger
func IngestWithLogger(log *logger.Logger) IngestServiceOption {
	return func(s *IngestService) {
		if log != nil {
			s.log = log
		}
	}
}

// NewIngestService creates a new IngestService with options
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{
		batchSize:      defaultBatchSize,
		chunkMaxChars:  defaultChunkMaxChars,
		uploadMaxChars: defaultUploadMaxChars,
		batchDelay:     defaultBatchDelay,
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one bulk ingestion. Failed batches are recorded in the report
// and the run continues; only precondition failures (unreachable index,
// failed clear, broken corpus directory) abort it.
func (s *IngestService) Run(ctx context.Context, opts IngestOptions) (*models.IngestReport, error) {
	if err := s.checkClients(); err != nil {
		return nil, err
	}
	if s.loader == nil {
		return nil, errors.New("corpus loader not configured")
	}

	if !s.mu.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer s.mu.Unlock()

	if s.journal != nil {
		release, ok, err := s.journal.AcquireLock(ctx)
		switch {
		case err != nil:
			s.log.Warn("advisory lock unavailable, relying on in-process lock", "error", err)
		case !ok:
			return nil, ErrIngestInProgress
		default:
			defer release()
		}
	}

	// Probe the index before touching anything.
	if _, err := s.index.DescribeStats(ctx); err != nil {
		return nil, fmt.Errorf("vector index unreachable: %w", err)
	}

	run := s.journalStart(ctx, opts.ClearExisting)
	report := &models.IngestReport{}

	if opts.ClearExisting {
		if err := s.index.DeleteAll(ctx); err != nil {
			err = fmt.Errorf("failed to clear existing vectors: %w", err)
			s.journalFail(ctx, run, err)
			return nil, err
		}
		report.Cleared = true
		s.log.Info("cleared existing vectors")
	}

	sections, warnings, err := s.loader.Load(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load corpus: %w", err)
		s.journalFail(ctx, run, err)
		return nil, err
	}
	report.Warnings = append(report.Warnings, warnings...)
	report.TotalDocuments = len(sections)

	now := time.Now().UTC()
	var chunks []models.Chunk
	for _, sec := range sections {
		chunks = append(chunks, chunker.ChunkSection(sec, s.chunkMaxChars, now)...)
	}
	report.TotalChunks = len(chunks)
	s.log.Info("corpus chunked", "documents", report.TotalDocuments, "chunks", report.TotalChunks)

	s.indexChunks(ctx, chunks, report)
	s.finishReport(ctx, report)
	s.journalComplete(ctx, run, report)

	s.log.Info("ingestion finished",
		"documents", report.TotalDocuments,
		"chunks", report.TotalChunks,
		"indexed", report.TotalIndexed,
		"failed_batches", len(report.Errors),
		"vector_count", report.VectorCount)
	return report, nil
}

// IngestUpload indexes a single uploaded document with fixed-window chunks.
// It shares the single-flight lock with bulk runs.
func (s *IngestService) IngestUpload(ctx context.Context, filename, text string) (*models.IngestReport, error) {
	if err := s.checkClients(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("document contains no text")
	}

	if !s.mu.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer s.mu.Unlock()

	if _, err := s.index.DescribeStats(ctx); err != nil {
		return nil, fmt.Errorf("vector index unreachable: %w", err)
	}

	chunks := chunker.ChunkUpload(filename, text, s.uploadMaxChars, time.Now().UTC())
	report := &models.IngestReport{TotalDocuments: 1, TotalChunks: len(chunks)}
	s.indexChunks(ctx, chunks, report)
	s.finishReport(ctx, report)

	s.log.Info("document ingested", "file", filename, "chunks", report.TotalChunks, "indexed", report.TotalIndexed)
	return report, nil
}

// IndexStats exposes the index state for the admin surface.
func (s *IngestService) IndexStats(ctx context.Context) (*models.IndexStats, error) {
	if s.index == nil {
		return nil, errors.New("vector index not configured")
	}
	return s.index.DescribeStats(ctx)
}

func (s *IngestService) checkClients() error {
	if s.index == nil {
		return errors.New("vector index not configured")
	}
	if s.embedder == nil {
		return errors.New("embedding client not configured")
	}
	return nil
}

// indexChunks processes batches strictly in order with a pause between them.
// Each batch is one embedding call and one upsert; a failed batch is recorded
// and the next batch still runs.
func (s *IngestService) indexChunks(ctx context.Context, chunks []models.Chunk, report *models.IngestReport) {
	batchNum := 0
	for start := 0; start < len(chunks); start += s.batchSize {
		batchNum++
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		s.indexBatch(ctx, batchNum, chunks[start:end], report)

		if end < len(chunks) {
			select {
			case <-ctx.Done():
				report.Warnings = append(report.Warnings, fmt.Sprintf("ingestion interrupted: %v", ctx.Err()))
				return
			case <-time.After(s.batchDelay):
			}
		}
	}
}

func (s *IngestService) indexBatch(ctx context.Context, batchNum int, batch []models.Chunk, report *models.IngestReport) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		s.log.Warn("batch embedding failed", "batch", batchNum, "error", err)
		report.Errors = append(report.Errors, models.BatchError{Batch: batchNum, Stage: "embed", Message: err.Error()})
		return
	}
	if len(embeddings) != len(batch) {
		msg := fmt.Sprintf("got %d embeddings for %d chunks", len(embeddings), len(batch))
		s.log.Warn("batch embedding mismatch", "batch", batchNum, "detail", msg)
		report.Errors = append(report.Errors, models.BatchError{Batch: batchNum, Stage: "embed", Message: msg})
		return
	}

	records := make([]models.VectorRecord, len(batch))
	for i, c := range batch {
		records[i] = models.VectorRecord{
			ID:       c.ID,
			Values:   embeddings[i],
			Metadata: c.Metadata(metadataTextRunes),
		}
	}

	if err := s.index.Upsert(ctx, records); err != nil {
		s.log.Warn("batch upsert failed", "batch", batchNum, "error", err)
		report.Errors = append(report.Errors, models.BatchError{Batch: batchNum, Stage: "upsert", Message: err.Error()})
		return
	}

	report.TotalIndexed += len(batch)
	s.log.Debug("indexed batch", "batch", batchNum, "chunks", len(batch))
}

// finishReport fetches the live vector count so the report reflects the
// index, not arithmetic. A failed probe leaves the count at -1.
func (s *IngestService) finishReport(ctx context.Context, report *models.IngestReport) {
	stats, err := s.index.DescribeStats(ctx)
	if err != nil {
		s.log.Warn("could not fetch index stats after run", "error", err)
		report.VectorCount = -1
		report.Warnings = append(report.Warnings, fmt.Sprintf("vector count unavailable: %v", err))
		return
	}
	report.VectorCount = stats.TotalRecordCount
	if s.dimension > 0 && stats.Dimension > 0 && stats.Dimension != s.dimension {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"index dimension %d does not match configured dimension %d", stats.Dimension, s.dimension))
	}
}

func (s *IngestService) journalStart(ctx context.Context, clear bool) *models.IngestRun {
	if s.journal == nil {
		return nil
	}
	run := &models.IngestRun{
		ID:            uuid.New(),
		Status:        models.IngestRunStatusRunning,
		ClearExisting: clear,
		StartedAt:     time.Now().UTC(),
	}
	if err := s.journal.Create(ctx, run); err != nil {
		s.log.Warn("could not record ingest run", "error", err)
		return nil
	}
	return run
}

func (s *IngestService) journalComplete(ctx context.Context, run *models.IngestRun, report *models.IngestReport) {
	if run == nil {
		return
	}
	if err := s.journal.Complete(ctx, run.ID, report); err != nil {
		s.log.Warn("could not finalize ingest run record", "error", err)
	}
}

func (s *IngestService) journalFail(ctx context.Context, run *models.IngestRun, runErr error) {
	if run == nil {
		return
	}
	if err := s.journal.Fail(ctx, run.ID, runErr.Error()); err != nil {
		s.log.Warn("could not mark ingest run failed", "error", err)
	}
}
