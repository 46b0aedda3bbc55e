package main

import (
	"fmt"
	"os"

	"github.com/poiesic/summarit/core"
	"gopkg.in/yaml.v3"
)

type strategyFile struct {
	ChunkSizeWords  int     `yaml:"chunk_size_words"`
	OverlapWords    int     `yaml:"overlap_words"`
	MinChunkWords   int     `yaml:"min_chunk_words"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	CompletionModel string  `yaml:"completion_model"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`
}

type sectionFile struct {
	Title          string `yaml:"title"`
	GuidancePrompt string `yaml:"guidance_prompt"`
	Order          int    `yaml:"order"`
	Required       bool   `yaml:"required"`
}

type templateFile struct {
	Name         string        `yaml:"name"`
	SystemPrompt string        `yaml:"system_prompt"`
	Sections     []sectionFile `yaml:"sections"`
	Strategy     *strategyFile `yaml:"strategy"`
}

// loadTemplate reads a summary template from a YAML file. Strategy fields
// left unset fall back to the defaults; sections without an explicit order
// keep their file position.
func loadTemplate(path string) (core.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Template{}, fmt.Errorf("reading template: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return core.Template{}, fmt.Errorf("parsing template %s: %w", path, err)
	}

	template := core.Template{
		Name:         file.Name,
		SystemPrompt: file.SystemPrompt,
		Strategy:     mergeStrategy(file.Strategy),
	}
	for i, section := range file.Sections {
		order := section.Order
		if order == 0 {
			order = i + 1
		}
		template.Sections = append(template.Sections, core.TemplateSection{
			Title:          section.Title,
			GuidancePrompt: section.GuidancePrompt,
			Order:          order,
			Required:       section.Required,
		})
	}

	if err := core.ValidateTemplate(&template); err != nil {
		return core.Template{}, err
	}
	return template, nil
}

func mergeStrategy(file *strategyFile) core.ProcessingStrategy {
	strategy := core.DefaultStrategy()
	if file == nil {
		return strategy
	}
	if file.ChunkSizeWords > 0 {
		strategy.ChunkSizeWords = file.ChunkSizeWords
	}
	if file.OverlapWords > 0 {
		strategy.OverlapWords = file.OverlapWords
	}
	if file.MinChunkWords > 0 {
		strategy.MinChunkWords = file.MinChunkWords
	}
	if file.EmbeddingModel != "" {
		strategy.EmbeddingModel = file.EmbeddingModel
	}
	if file.CompletionModel != "" {
		strategy.CompletionModel = file.CompletionModel
	}
	if file.MaxOutputTokens > 0 {
		strategy.MaxOutputTokens = file.MaxOutputTokens
	}
	if file.Temperature > 0 {
		strategy.Temperature = file.Temperature
	}
	return strategy
}
