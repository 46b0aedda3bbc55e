// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package summarit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/ai/openai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/document"
	"github.com/poiesic/summarit/index"
	"github.com/poiesic/summarit/monitor"
	"github.com/poiesic/summarit/pipeline"
	"github.com/poiesic/summarit/storage"
	badgerstore "github.com/poiesic/summarit/storage/badger"
	"github.com/poiesic/summarit/synth"
)

// Engine wires storage, the AI provider, and the pipeline into a single
// entry point for document summarization.
type Engine struct {
	repos        *badgerstore.Repositories
	provider     ai.Provider
	searcher     *index.Searcher
	orchestrator *pipeline.Orchestrator
	monitor      *monitor.Monitor
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	poolSize     int
	sweepTimeout time.Duration
}

// WithAIConfig sets the configuration used to construct the OpenAI provider.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built AI provider instead of constructing one
// from configuration. The engine takes ownership and closes it on Close.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithPoolSize sets how many template sections are synthesized concurrently.
func WithPoolSize(size int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = size
	}
}

// WithSweepTimeout overrides the staleness window for stuck-job sweeps.
func WithSweepTimeout(timeout time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.sweepTimeout = timeout
	}
}

// NewEngine opens the storage backend at filePath and wires the pipeline.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		poolSize: 1,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend and repositories
	repos, err := badgerstore.NewRepositories(filePath)
	if err != nil {
		return nil, err
	}

	// Create AI provider with configured settings unless one was injected
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	engine, err := newEngine(repos, provider, options)
	if err != nil {
		provider.Close()
		repos.Close()
		return nil, err
	}
	return engine, nil
}

func newEngine(repos *badgerstore.Repositories, provider ai.Provider, options *engineOptions) (*Engine, error) {
	indexer, err := index.NewIndexer(provider.Embedder(), repos.Embeddings)
	if err != nil {
		return nil, err
	}
	searcher := index.NewSearcher(provider.Embedder(), repos.Embeddings)

	synthesizer, err := synth.NewSynthesizer(provider.Completer())
	if err != nil {
		return nil, err
	}

	orchestrator, err := pipeline.NewOrchestrator(indexer, searcher, synthesizer, repos.Results,
		pipeline.WithPoolSize(options.poolSize))
	if err != nil {
		return nil, err
	}

	monitorOpts := []monitor.Option{}
	if options.sweepTimeout > 0 {
		monitorOpts = append(monitorOpts, monitor.WithTimeout(options.sweepTimeout))
	}
	jobMonitor, err := monitor.NewMonitor(repos.Jobs, repos.Results, monitorOpts...)
	if err != nil {
		orchestrator.Release()
		return nil, err
	}

	return &Engine{
		repos:        repos,
		provider:     provider,
		searcher:     searcher,
		orchestrator: orchestrator,
		monitor:      jobMonitor,
		logger:       slog.Default(),
	}, nil
}

// Close releases the AI provider, the worker pool, and the storage backend.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	e.orchestrator.Release()

	if err := e.repos.Close(); err != nil {
		e.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

// JobRepository exposes job tracking records.
func (e *Engine) JobRepository() storage.JobRepository {
	return e.repos.Jobs
}

// ResultRepository exposes pipeline result records.
func (e *Engine) ResultRepository() storage.ResultRepository {
	return e.repos.Results
}

// Summarize extracts the document at path and runs the full pipeline with
// the given template. A job record tracks progress throughout the run; its
// terminal status reflects the outcome. The document's identity is derived
// from its extracted text, so re-processing the same file reuses its ID.
func (e *Engine) Summarize(ctx context.Context, path string, template core.Template) (*core.PipelineResult, error) {
	extraction, err := document.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	documentID := core.IDFromContent(extraction.FullText)

	jobs, err := e.repos.Jobs.AddJobs(ctx, &core.Job{
		DocumentID: documentID,
		Status:     core.JobPending,
		Message:    "Queued",
	})
	if err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	job := jobs[0]

	if err := e.repos.Jobs.UpdateStatus(ctx, job.Id, core.JobRunning, ""); err != nil {
		return nil, fmt.Errorf("starting job %d: %w", job.Id, err)
	}

	e.logger.Info("starting summarization",
		"path", path,
		"document_id", documentID,
		"job_id", job.Id,
		"template", template.Name)

	result, runErr := e.orchestrator.Run(ctx, pipeline.RunRequest{
		DocumentID: documentID,
		JobID:      job.Id,
		Extraction: extraction,
		Template:   template,
		Progress: func(progress int, message string) {
			if err := e.repos.Jobs.UpdateProgress(ctx, job.Id, progress, message); err != nil {
				e.logger.Warn("progress update failed", "job_id", job.Id, "err", err)
			}
		},
	})
	if runErr != nil {
		if err := e.repos.Jobs.UpdateStatus(ctx, job.Id, core.JobFailed, runErr.Error()); err != nil {
			e.logger.Error("failed to mark job failed", "job_id", job.Id, "err", err)
		}
		return result, runErr
	}

	if err := e.repos.Jobs.UpdateStatus(ctx, job.Id, core.JobCompleted, ""); err != nil {
		e.logger.Error("failed to mark job completed", "job_id", job.Id, "err", err)
	}
	return result, nil
}

// RegenerateSection recomputes a single section of an existing result using
// the same retrieval and synthesis path as a full run, then swaps it into
// the stored result. If the document's embeddings were deleted, the index is
// rebuilt from the file at path first.
func (e *Engine) RegenerateSection(ctx context.Context, resultID core.ID, sectionTitle string, template core.Template, path string) (*core.SynthesizedSection, error) {
	result, err := e.repos.Results.GetResult(ctx, resultID)
	if err != nil {
		return nil, err
	}

	var section *core.TemplateSection
	for i := range template.Sections {
		if template.Sections[i].Title == sectionTitle {
			section = &template.Sections[i]
			break
		}
	}
	if section == nil {
		return nil, fmt.Errorf("%w: template %q has no section %q", core.ErrInvalidSection, template.Name, sectionTitle)
	}

	count, err := e.repos.Embeddings.CountEmbeddings(ctx, result.DocumentID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if path == "" {
			return nil, fmt.Errorf("document %d has no embeddings and no source path was given", result.DocumentID)
		}
		e.logger.Info("rebuilding embedding index", "document_id", result.DocumentID, "path", path)
		extraction, err := document.ExtractFile(path)
		if err != nil {
			return nil, err
		}
		if err := e.orchestrator.Reindex(ctx, result.DocumentID, extraction, template); err != nil {
			return nil, err
		}
	}

	synthesized, err := e.orchestrator.ProcessSection(ctx, result.DocumentID, template, *section)
	if err != nil {
		return nil, err
	}

	if err := e.repos.Results.ReplaceSection(ctx, resultID, synthesized); err != nil {
		return nil, err
	}
	return &synthesized, nil
}

// Search runs a similarity query against a document's embedding index.
func (e *Engine) Search(ctx context.Context, query index.Query) ([]core.SearchHit, error) {
	return e.searcher.Search(ctx, query)
}

// SweepStuckJobs fails jobs with no progress update inside the timeout
// window and propagates the failure to linked results. Returns the number
// of jobs failed.
func (e *Engine) SweepStuckJobs(ctx context.Context) (int, error) {
	return e.monitor.Sweep(ctx)
}

// DeleteDocument removes all stored embeddings for a document.
// Returns the number of records deleted.
func (e *Engine) DeleteDocument(ctx context.Context, documentID core.ID) (int, error) {
	return e.repos.Embeddings.DeleteEmbeddings(ctx, documentID)
}
