package core

import "fmt"

// ValidateStrategy validates a ProcessingStrategy according to domain rules.
//
// Validation rules:
//   - ChunkSizeWords must be positive
//   - OverlapWords must be non-negative and smaller than ChunkSizeWords
//   - MinChunkWords must be non-negative and no larger than ChunkSizeWords
//   - Temperature must be within [0, 2]
//
// NOT validated:
//   - Model identifiers (provider-specific, checked by the provider)
func ValidateStrategy(s ProcessingStrategy) error {
	if s.ChunkSizeWords <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidStrategy, s.ChunkSizeWords)
	}
	if s.OverlapWords < 0 || s.OverlapWords >= s.ChunkSizeWords {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidStrategy, s.OverlapWords, s.ChunkSizeWords)
	}
	if s.MinChunkWords < 0 || s.MinChunkWords > s.ChunkSizeWords {
		return fmt.Errorf("%w: min chunk size %d must be in [0, %d]", ErrInvalidStrategy, s.MinChunkWords, s.ChunkSizeWords)
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("%w: temperature %g out of range", ErrInvalidStrategy, s.Temperature)
	}
	return nil
}

// ValidateSection validates a TemplateSection according to domain rules.
func ValidateSection(section TemplateSection) error {
	if section.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyTitle)
	}
	if section.GuidancePrompt == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyGuidance)
	}
	return nil
}

// ValidateTemplate validates a Template and all of its sections.
//
// Validation rules:
//   - Name must not be empty
//   - At least one section must be present
//   - Every section must pass ValidateSection
//   - The strategy must pass ValidateStrategy
func ValidateTemplate(template *Template) error {
	if template == nil {
		return fmt.Errorf("%w: template is nil", ErrInvalidTemplate)
	}
	if template.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidTemplate)
	}
	if len(template.Sections) == 0 {
		return fmt.Errorf("%w: at least one section required", ErrInvalidTemplate)
	}
	for _, section := range template.Sections {
		if err := ValidateSection(section); err != nil {
			return fmt.Errorf("%w: section %q: %w", ErrInvalidTemplate, section.Title, err)
		}
	}
	if err := ValidateStrategy(template.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return nil
}

// ValidateProgress validates a job progress percentage.
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidProgress, progress)
	}
	return nil
}

// ValidateJobStatus validates a JobStatus value.
func ValidateJobStatus(status JobStatus) error {
	switch status {
	case JobPending, JobRunning, JobCompleted, JobFailed, JobCancelled:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidJobStatus, status)
	}
}
