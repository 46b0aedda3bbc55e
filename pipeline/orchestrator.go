package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/summarit/chunker"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/index"
	"github.com/poiesic/summarit/storage"
	"github.com/poiesic/summarit/synth"
)

// Orchestrator runs the multi-pass summarization pipeline: chunk the
// document, index the chunks, then retrieve and synthesize each template
// section.
type Orchestrator struct {
	indexer     *index.Indexer
	searcher    *index.Searcher
	synthesizer *synth.Synthesizer
	results     storage.ResultRepository
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for section synthesis.
// The default of 1 keeps sections sequential; completion providers rarely
// reward concurrency and rate limits punish it.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	indexer *index.Indexer,
	searcher *index.Searcher,
	synthesizer *synth.Synthesizer,
	results storage.ResultRepository,
	opts ...Option,
) (*Orchestrator, error) {
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		indexer:     indexer,
		searcher:    searcher,
		synthesizer: synthesizer,
		results:     results,
		pool:        pool,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	return o, nil
}

// Release releases the worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// RunRequest holds the inputs of one pipeline run.
type RunRequest struct {
	DocumentID core.ID
	JobID      core.ID
	Extraction core.Extraction
	Template   core.Template
	Progress   ProgressFunc
}

// ResultID derives the deterministic result ID for a run: one result per
// (document, template, job) triple.
func ResultID(documentID core.ID, templateName string, jobID core.ID) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d:%s:%d", documentID, templateName, jobID))
}

// Run executes the full pipeline for one document and template. The result
// record is created in the processing state up front and finalized exactly
// once, as completed or failed. The returned result reflects the final
// state even when an error is also returned.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*core.PipelineResult, error) {
	if err := core.ValidateTemplate(&req.Template); err != nil {
		return nil, err
	}
	if req.Extraction.TotalWords == 0 {
		return nil, core.ErrEmptyDocument
	}

	startedAt := time.Now().UTC()
	progress := newReporter(req.Progress)

	result := &core.PipelineResult{
		Id:           ResultID(req.DocumentID, req.Template.Name, req.JobID),
		DocumentID:   req.DocumentID,
		TemplateName: req.Template.Name,
		JobID:        req.JobID,
		Status:       core.ResultProcessing,
		StartedAt:    startedAt,
	}
	if err := o.results.PutResult(ctx, result); err != nil {
		return nil, fmt.Errorf("create result: %w", err)
	}

	o.logger.Info("pipeline run started",
		"document_id", req.DocumentID,
		"template", req.Template.Name,
		"pages", req.Extraction.TotalPages,
		"words", req.Extraction.TotalWords)

	// Pass 1: chunk
	chunks, err := chunker.Chunk(req.Extraction, req.Template.Strategy)
	if err != nil {
		return o.fail(ctx, result, fmt.Errorf("chunk document: %w", err))
	}
	progress.report(progressChunked, fmt.Sprintf("Split document into %d chunks", len(chunks)))

	// Pass 2: embed and index
	embeddingCount, err := o.indexer.IndexChunks(ctx, req.DocumentID, chunks, req.Template.Strategy)
	if err != nil {
		return o.fail(ctx, result, fmt.Errorf("index document: %w", err))
	}
	progress.report(progressIndexed, fmt.Sprintf("Indexed %d chunks", embeddingCount))

	// Pass 3: retrieve and synthesize each section
	sections, err := o.synthesizeSections(ctx, req, progress)
	if err != nil {
		return o.fail(ctx, result, err)
	}

	result.Sections = sections
	result.Metadata = core.ResultMetadata{
		TotalPages:      req.Extraction.TotalPages,
		TotalWords:      req.Extraction.TotalWords,
		TotalChunks:     len(chunks),
		EmbeddingCount:  embeddingCount,
		DurationSeconds: time.Since(startedAt).Seconds(),
	}
	result.Status = core.ResultCompleted
	result.CompletedAt = time.Now().UTC()
	if err := o.results.PutResult(ctx, result); err != nil {
		return nil, fmt.Errorf("finalize result: %w", err)
	}

	progress.report(progressComplete, "Summary complete")
	o.logger.Info("pipeline run completed",
		"document_id", req.DocumentID,
		"sections", len(sections),
		"duration_seconds", result.Metadata.DurationSeconds)

	return result, nil
}

// synthesizeSections processes every template section, possibly in parallel,
// and returns them ordered by section order. The assembled output is
// deterministic regardless of pool size.
func (o *Orchestrator) synthesizeSections(ctx context.Context, req RunRequest, progress *reporter) ([]core.SynthesizedSection, error) {
	ordered := slices.Clone(req.Template.Sections)
	slices.SortStableFunc(ordered, func(a, b core.TemplateSection) int {
		return a.Order - b.Order
	})

	sections := make([]core.SynthesizedSection, len(ordered))
	errs := make([]error, len(ordered))
	done := 0

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, section := range ordered {
		wg.Add(1)
		if err := o.pool.Submit(func() {
			defer wg.Done()
			synthesized, err := o.ProcessSection(ctx, req.DocumentID, req.Template, section)

			mu.Lock()
			defer mu.Unlock()
			sections[i] = synthesized
			errs[i] = err
			if err == nil {
				done++
				progress.report(sectionProgress(done, len(ordered)),
					fmt.Sprintf("Synthesized section: %s", section.Title))
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			errs[i] = err
			mu.Unlock()
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return sections, nil
}

// Reindex rebuilds a document's embedding index from a fresh extraction,
// using the template's chunking strategy. Used when a section must be
// regenerated after the original embeddings were deleted.
func (o *Orchestrator) Reindex(ctx context.Context, documentID core.ID, extraction core.Extraction, template core.Template) error {
	if extraction.TotalWords == 0 {
		return core.ErrEmptyDocument
	}
	chunks, err := chunker.Chunk(extraction, template.Strategy)
	if err != nil {
		return fmt.Errorf("chunk document: %w", err)
	}
	count, err := o.indexer.IndexChunks(ctx, documentID, chunks, template.Strategy)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	o.logger.Info("reindexed document", "document_id", documentID, "embeddings", count)
	return nil
}

// ProcessSection retrieves the chunks relevant to one section and
// synthesizes its content. The section's guidance prompt doubles as the
// retrieval query.
func (o *Orchestrator) ProcessSection(ctx context.Context, documentID core.ID, template core.Template, section core.TemplateSection) (core.SynthesizedSection, error) {
	hits, err := o.searcher.Search(ctx, index.Query{
		DocumentID: documentID,
		Text:       section.GuidancePrompt,
	})
	if err != nil {
		return core.SynthesizedSection{}, fmt.Errorf("retrieve chunks for section %q: %w", section.Title, err)
	}

	o.logger.Debug("section retrieval", "section", section.Title, "hits", len(hits))

	return o.synthesizer.Synthesize(ctx, template, section, hits)
}

// fail finalizes the result record as failed and returns the original error.
func (o *Orchestrator) fail(ctx context.Context, result *core.PipelineResult, cause error) (*core.PipelineResult, error) {
	result.Status = core.ResultFailed
	result.ErrorMessage = cause.Error()
	result.CompletedAt = time.Now().UTC()
	if err := o.results.PutResult(ctx, result); err != nil {
		o.logger.Error("failed to persist failed result", "result_id", result.Id, "err", err)
	}
	return result, cause
}
