package synth

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
)

const (
	// defaultMaxAttempts bounds completion retries per section.
	defaultMaxAttempts = 3
	// defaultBaseDelay is the backoff unit between retries.
	defaultBaseDelay = 2 * time.Second
	// contextChunkLimit caps how many hits go into the completion prompt.
	// Retrieval may return more; beyond this the marginal context stops
	// paying for its token cost.
	contextChunkLimit = 15
)

// SynthesisError reports a section synthesis that failed after retries.
type SynthesisError struct {
	Section  string
	Kind     ai.FailureKind
	Attempts int
	Err      error
}

func (e *SynthesisError) Error() string {
	switch e.Kind {
	case ai.FailureTimeout:
		return fmt.Sprintf("completion timeout after %d attempts for section %q", e.Attempts, e.Section)
	case ai.FailureRateLimit:
		return fmt.Sprintf("rate limit exceeded after %d attempts for section %q", e.Attempts, e.Section)
	default:
		return fmt.Sprintf("completion failed after %d attempts for section %q: %v", e.Attempts, e.Section, e.Err)
	}
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// Synthesizer produces section content from retrieved chunks using a
// completion provider.
type Synthesizer struct {
	completer   ai.Completer
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer) error

// WithMaxAttempts overrides the retry budget per section.
func WithMaxAttempts(n int) Option {
	return func(s *Synthesizer) error {
		if n <= 0 {
			return ErrInvalidMaxAttempts
		}
		s.maxAttempts = n
		return nil
	}
}

// WithBaseDelay overrides the backoff unit. Mainly useful in tests.
func WithBaseDelay(d time.Duration) Option {
	return func(s *Synthesizer) error {
		if d <= 0 {
			return fmt.Errorf("base delay must be positive, got %v", d)
		}
		s.baseDelay = d
		return nil
	}
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(completer ai.Completer, opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{
		completer:   completer,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "synthesizer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Synthesize generates the content for one template section from its
// retrieved chunks. With no hits it returns a fixed fallback section without
// calling the provider. Hits are assumed ordered by similarity descending.
func (s *Synthesizer) Synthesize(ctx context.Context, template core.Template, section core.TemplateSection, hits []core.SearchHit) (core.SynthesizedSection, error) {
	if err := core.ValidateSection(section); err != nil {
		return core.SynthesizedSection{}, err
	}

	if len(hits) == 0 {
		s.logger.Info("no relevant chunks for section", "section", section.Title)
		content := fmt.Sprintf("No relevant content found for section: %s", section.Title)
		return core.SynthesizedSection{
			Title:       section.Title,
			Order:       section.Order,
			Content:     content,
			WordCount:   len(strings.Fields(content)),
			GeneratedAt: time.Now().UTC(),
		}, nil
	}

	prompt := buildPrompt(section, hits)
	strategy := template.Strategy

	var content string
	err := retryWithBackoff(ctx, func() error {
		response, err := s.completer.Complete(ctx, ai.CompletionRequest{
			SystemPrompt: template.SystemPrompt,
			UserPrompt:   prompt,
			Model:        strategy.CompletionModel,
			MaxTokens:    strategy.MaxOutputTokens,
			Temperature:  strategy.Temperature,
		})
		if err != nil {
			return err
		}
		content = response
		return nil
	}, s.maxAttempts, s.baseDelay)
	if err != nil {
		return core.SynthesizedSection{}, &SynthesisError{
			Section:  section.Title,
			Kind:     ai.KindOf(err),
			Attempts: s.maxAttempts,
			Err:      err,
		}
	}

	return core.SynthesizedSection{
		Title:            section.Title,
		Order:            section.Order,
		Content:          content,
		SourceChunkCount: len(hits),
		PagesReferenced:  pagesReferenced(hits),
		WordCount:        len(strings.Fields(content)),
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

// buildPrompt assembles the synthesis prompt: the section's guidance plus the
// top hits annotated with page and similarity so the model can cite pages.
func buildPrompt(section core.TemplateSection, hits []core.SearchHit) string {
	limit := min(len(hits), contextChunkLimit)

	var contextParts []string
	for i, hit := range hits[:limit] {
		contextParts = append(contextParts, fmt.Sprintf(
			"[Chunk %d - Page %d, Similarity: %.2f]\n%s\n",
			i+1, hit.PageNumber, hit.Similarity, hit.ChunkText,
		))
	}
	contextText := strings.Join(contextParts, "\n---\n")

	return fmt.Sprintf(`You are tasked with synthesizing a section for a document summary.

**Section Title:** %s

**Guidance:** %s

**Source Material:**
%s

**Instructions:**
- Create a comprehensive summary for the "%s" section
- Follow the guidance instructions carefully
- Use information from the provided chunks
- Include specific details, figures, and references when available
- Reference page numbers when citing specific information
- Maintain a professional, technical tone
- Keep the summary focused and relevant to the section title
- If the chunks contain tables or figures, describe them or reference them by their numbers

Write the section content now:`, section.Title, section.GuidancePrompt, contextText, section.Title)
}

// pagesReferenced collects the distinct pages across all hits, ascending.
func pagesReferenced(hits []core.SearchHit) []int {
	seen := make(map[int]bool, len(hits))
	var pages []int
	for _, hit := range hits {
		if !seen[hit.PageNumber] {
			seen[hit.PageNumber] = true
			pages = append(pages, hit.PageNumber)
		}
	}
	slices.Sort(pages)
	return pages
}
