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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/summarit"
	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/index"
	"github.com/poiesic/summarit/monitor"
	"github.com/poiesic/summarit/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "summarit",
		Usage: "Template-driven document summarization with semantic retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "summarize",
				Usage:  "Summarize a document using a template",
				Action: summarizeCommand,
				Flags: append(providerFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the document (pdf, txt, or md)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "template",
						Aliases:  []string{"t"},
						Usage:    "Path to the YAML summary template",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of sections synthesized concurrently",
						Value: 1,
					},
				),
			},
			{
				Name:   "regenerate",
				Usage:  "Regenerate a single section of an existing summary",
				Action: regenerateCommand,
				Flags: append(providerFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "result",
						Usage:    "Result ID of the summary to modify",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "section",
						Aliases:  []string{"s"},
						Usage:    "Title of the section to regenerate",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "template",
						Aliases:  []string{"t"},
						Usage:    "Path to the YAML summary template",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Source document, used to rebuild the index if needed",
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Run a similarity query against a document's index",
				Action: searchCommand,
				Flags: append(providerFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "document",
						Usage:    "Document ID to search within",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of hits",
						Value: index.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum cosine similarity for a hit",
						Value: float64(index.DefaultMinSimilarity),
					},
				),
			},
			{
				Name:   "sweep",
				Usage:  "Fail jobs stuck without a progress update",
				Action: sweepCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Staleness window for stuck jobs",
						Value: monitor.DefaultTimeout,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// providerFlags are shared by every command that talks to the AI services.
func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Bearer token for the AI services",
			EnvVars: []string{"SUMMARIT_API_KEY", "OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "completion-model",
			Usage: "Completion model name",
		},
	}
}

// aiConfigFromFlags builds the provider configuration from CLI flags,
// falling back to defaults for anything unset.
func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	opts := []ai.ConfigOption{ai.WithHost(c.String("host"))}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("completion-model"); model != "" {
		opts = append(opts, ai.WithCompletionModel(model))
	}

	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func summarizeCommand(c *cli.Context) error {
	ctx := context.Background()

	template, err := loadTemplate(c.String("template"))
	if err != nil {
		return err
	}

	config, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := summarit.NewEngine(c.String("db"),
		summarit.WithAIConfig(config),
		summarit.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Document: %s\n", c.String("file"))
	fmt.Fprintf(os.Stderr, "Template: %s\n", template.Name)
	fmt.Fprintln(os.Stderr)

	result, err := engine.Summarize(ctx, c.String("file"), template)
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	printResult(result)
	return nil
}

func regenerateCommand(c *cli.Context) error {
	ctx := context.Background()

	resultID, err := parseID(c.String("result"))
	if err != nil {
		return fmt.Errorf("invalid result ID: %w", err)
	}

	template, err := loadTemplate(c.String("template"))
	if err != nil {
		return err
	}

	config, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := summarit.NewEngine(c.String("db"), summarit.WithAIConfig(config))
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	section, err := engine.RegenerateSection(ctx, resultID, c.String("section"), template, c.String("file"))
	if err != nil {
		return fmt.Errorf("regeneration failed: %w", err)
	}

	fmt.Printf("## %s\n\n%s\n", section.Title, section.Content)
	fmt.Fprintf(os.Stderr, "\n%d source chunks, pages %v, %d words\n",
		section.SourceChunkCount, section.PagesReferenced, section.WordCount)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	documentID, err := parseID(c.String("document"))
	if err != nil {
		return fmt.Errorf("invalid document ID: %w", err)
	}

	config, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := summarit.NewEngine(c.String("db"), summarit.WithAIConfig(config))
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	minSimilarity := float32(c.Float64("min-similarity"))
	hits, err := engine.Search(ctx, index.Query{
		DocumentID:    documentID,
		Text:          c.String("query"),
		TopK:          c.Int("top-k"),
		MinSimilarity: &minSimilarity,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(hits) == 0 {
		fmt.Println("No matching chunks.")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("[chunk %d, page %d, similarity %.3f]", hit.ChunkIndex, hit.PageNumber, hit.Similarity)
		if hit.SectionHeading != "" {
			fmt.Printf(" %s", hit.SectionHeading)
		}
		fmt.Printf("\n%s\n\n", hit.ChunkText)
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	ctx := context.Background()

	// The sweep only touches storage; no AI provider is needed.
	repos, err := badger.NewRepositories(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repos.Close()

	jobMonitor, err := monitor.NewMonitor(repos.Jobs, repos.Results,
		monitor.WithTimeout(c.Duration("timeout")))
	if err != nil {
		return err
	}

	count, err := jobMonitor.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Failed %d stuck job(s)\n", count)
	return nil
}

func printResult(result *core.PipelineResult) {
	fmt.Printf("# Summary (result %d)\n\n", result.Id)
	for _, section := range result.Sections {
		fmt.Printf("## %s\n\n%s\n\n", section.Title, section.Content)
	}
	fmt.Fprintf(os.Stderr, "%d pages, %d words, %d chunks, completed in %.1fs\n",
		result.Metadata.TotalPages,
		result.Metadata.TotalWords,
		result.Metadata.TotalChunks,
		result.Metadata.DurationSeconds)
}

func parseID(s string) (core.ID, error) {
	value, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return core.ID(value), nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
