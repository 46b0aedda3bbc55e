package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/summarit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplate(t *testing.T) {
	path := writeTemplate(t, `
name: executive-summary
system_prompt: You summarize documents.
strategy:
  chunk_size_words: 400
  overlap_words: 40
  embedding_model: text-embedding-3-small
sections:
  - title: Overview
    guidance_prompt: Summarize the purpose and scope
    required: true
  - title: Key Findings
    guidance_prompt: List the most important findings
    order: 5
`)

	template, err := loadTemplate(path)
	require.NoError(t, err)

	assert.Equal(t, "executive-summary", template.Name)
	require.Len(t, template.Sections, 2)
	assert.Equal(t, 1, template.Sections[0].Order) // file position when unset
	assert.Equal(t, 5, template.Sections[1].Order)
	assert.True(t, template.Sections[0].Required)

	// Explicit strategy values override defaults; the rest fall back
	assert.Equal(t, 400, template.Strategy.ChunkSizeWords)
	assert.Equal(t, 40, template.Strategy.OverlapWords)
	assert.Equal(t, "text-embedding-3-small", template.Strategy.EmbeddingModel)
	assert.Equal(t, core.DefaultStrategy().MinChunkWords, template.Strategy.MinChunkWords)
	assert.Equal(t, core.DefaultStrategy().CompletionModel, template.Strategy.CompletionModel)
}

func TestLoadTemplate_NoStrategy(t *testing.T) {
	path := writeTemplate(t, `
name: brief
sections:
  - title: Overview
    guidance_prompt: Summarize everything
`)

	template, err := loadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultStrategy(), template.Strategy)
}

func TestLoadTemplate_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := loadTemplate(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("no sections", func(t *testing.T) {
		path := writeTemplate(t, "name: empty\nsections: []\n")
		_, err := loadTemplate(path)
		assert.ErrorIs(t, err, core.ErrInvalidTemplate)
	})

	t.Run("section without guidance", func(t *testing.T) {
		path := writeTemplate(t, `
name: bad
sections:
  - title: Overview
`)
		_, err := loadTemplate(path)
		assert.ErrorIs(t, err, core.ErrInvalidTemplate)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeTemplate(t, "name: [unclosed")
		_, err := loadTemplate(path)
		assert.Error(t, err)
	})
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, core.ID(42), id)

	_, err = parseID("not-a-number")
	assert.Error(t, err)

	_, err = parseID("-1")
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	run := func(level string) error {
		app := &cli.App{
			Name: "summarit",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
		return app.Run([]string{"summarit", "--log-level", level})
	}

	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		assert.NoError(t, run(level), level)
	}
	assert.Error(t, run("verbose"))
}
