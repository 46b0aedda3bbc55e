package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PageText holds the extracted text of a single document page.
type PageText struct {
	Number int // 1-indexed page number
	Text   string
}

// Extraction is the result of extracting text from a document.
// FullText is the cleaned page texts joined by a blank line.
type Extraction struct {
	FullText   string
	Pages      []PageText
	TotalPages int
	TotalWords int
	TotalChars int
}

// Chunk is a contiguous, overlapping word-window slice of document text
// with provenance metadata. Chunks are immutable after creation and belong
// to the pipeline run that created them.
//
// StartOffset and EndOffset are approximate character offsets derived from
// a fixed average-chars-per-word constant. They are monotonic and mutually
// comparable but are NOT exact substring bounds into the full text.
type Chunk struct {
	Index          int
	Text           string
	PageNumber     int // 1-indexed, clamped to [1, TotalPages]
	StartOffset    int
	EndOffset      int
	SectionHeading string // nearest preceding heading, empty if none
	WordCount      int
}

// ProcessingStrategy controls chunking and model parameters for a pipeline run.
type ProcessingStrategy struct {
	ChunkSizeWords  int
	OverlapWords    int
	MinChunkWords   int
	EmbeddingModel  string
	CompletionModel string
	MaxOutputTokens int
	Temperature     float64
}

// DefaultStrategy returns the processing strategy used when a template
// does not specify one.
func DefaultStrategy() ProcessingStrategy {
	return ProcessingStrategy{
		ChunkSizeWords:  500,
		OverlapWords:    50,
		MinChunkWords:   100,
		EmbeddingModel:  "text-embedding-3-small",
		CompletionModel: "gpt-4o-mini",
		MaxOutputTokens: 1000,
		Temperature:     0.3,
	}
}

// TemplateSection defines one section of a templated summary.
// The GuidancePrompt doubles as the retrieval query for the section.
type TemplateSection struct {
	Title          string
	GuidancePrompt string
	Order          int
	Required       bool
}

// Template defines the structure of a generated summary.
type Template struct {
	Name         string
	SystemPrompt string
	Sections     []TemplateSection
	Strategy     ProcessingStrategy
}

// EmbeddingRecord is a persisted chunk vector with a back-reference to its
// source chunk and document. Records are created in batches during the
// indexing pass, never mutated, and deleted only with the owning document.
type EmbeddingRecord struct {
	DocumentID     ID
	ChunkIndex     int
	ChunkText      string
	Vector         []float32
	PageNumber     int
	SectionHeading string
	WordCount      int
	StartOffset    int
	EndOffset      int
	Model          string
}

// SearchHit is a transient similarity-search result. Not persisted.
type SearchHit struct {
	ChunkIndex     int
	ChunkText      string
	PageNumber     int
	SectionHeading string
	WordCount      int
	Similarity     float32 // cosine similarity clamped to [0, 1]
}

// SynthesizedSection is the synthesized content for one template section.
type SynthesizedSection struct {
	Title            string
	Order            int
	Content          string
	SourceChunkCount int
	PagesReferenced  []int // deduplicated, ascending
	WordCount        int
	GeneratedAt      time.Time
}

// ResultStatus is the lifecycle state of a PipelineResult.
type ResultStatus int

const (
	// ResultProcessing indicates a run is in progress.
	ResultProcessing ResultStatus = iota + 1
	// ResultCompleted indicates the run finished and all sections are present.
	ResultCompleted
	// ResultFailed indicates the run aborted; ErrorMessage explains why.
	ResultFailed
)

// String returns the lowercase name of the status.
func (s ResultStatus) String() string {
	switch s {
	case ResultProcessing:
		return "processing"
	case ResultCompleted:
		return "completed"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ResultMetadata aggregates counters from the indexing pass plus run duration.
type ResultMetadata struct {
	TotalPages      int
	TotalWords      int
	TotalChunks     int
	EmbeddingCount  int
	DurationSeconds float64
}

// PipelineResult is the assembled output of a pipeline run. It is created
// in the processing state when the run starts, mutated as sections complete,
// and finalized exactly once.
type PipelineResult struct {
	Id           ID
	DocumentID   ID
	TemplateName string
	JobID        ID
	Status       ResultStatus
	Sections     []SynthesizedSection
	Metadata     ResultMetadata
	ErrorMessage string
	StartedAt    time.Time
	CompletedAt  time.Time
	UpdatedAt    time.Time
}

// JobStatus is the lifecycle state of a tracked job.
type JobStatus int

const (
	// JobPending indicates the job is queued but not yet running.
	JobPending JobStatus = iota + 1
	// JobRunning indicates the job is executing.
	JobRunning
	// JobCompleted indicates the job finished successfully.
	JobCompleted
	// JobFailed indicates the job aborted or timed out.
	JobFailed
	// JobCancelled indicates the job was revoked externally.
	JobCancelled
)

// String returns the lowercase name of the status.
func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	case JobCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Active reports whether the job is still in a non-terminal state.
// Only active jobs are eligible for the staleness sweep.
func (s JobStatus) Active() bool {
	return s == JobPending || s == JobRunning
}

// Job tracks the progress of one pipeline run.
//
// Invariant: UpdatedAt advances monotonically whenever Progress or Status
// changes. The stuck-job sweep relies on this to detect staleness.
type Job struct {
	Id           ID
	DocumentID   ID
	Status       JobStatus
	Progress     int // 0-100
	Message      string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  time.Time
}
