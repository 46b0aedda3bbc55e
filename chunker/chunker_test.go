package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/summarit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStrategy() core.ProcessingStrategy {
	s := core.DefaultStrategy()
	s.ChunkSizeWords = 50
	s.OverlapWords = 10
	s.MinChunkWords = 5
	return s
}

// words produces n space-separated distinct words.
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace runs", "too   many\t\tspaces", "too many spaces"},
		{"trims surrounding whitespace", "  padded  ", "padded"},
		{"strips bare page number line", "42", ""},
		{"empty input", "", ""},
		{"keeps ordinary text", "Plain sentence here.", "Plain sentence here."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestNewExtraction(t *testing.T) {
	extraction := NewExtraction([]core.PageText{
		{Number: 1, Text: "First page   text"},
		{Number: 2, Text: "   "},
		{Number: 3, Text: "Third page text"},
	})

	// The whitespace-only page is dropped; original numbering survives
	require.Len(t, extraction.Pages, 2)
	assert.Equal(t, 1, extraction.Pages[0].Number)
	assert.Equal(t, 3, extraction.Pages[1].Number)
	assert.Equal(t, 2, extraction.TotalPages)
	assert.Equal(t, "First page text\n\nThird page text", extraction.FullText)
	assert.Equal(t, 6, extraction.TotalWords)
	assert.Equal(t, len(extraction.FullText), extraction.TotalChars)
}

func TestNewExtraction_Empty(t *testing.T) {
	extraction := NewExtraction(nil)
	assert.Empty(t, extraction.Pages)
	assert.Zero(t, extraction.TotalPages)
	assert.Zero(t, extraction.TotalWords)
	assert.Empty(t, extraction.FullText)
}

func TestDetectHeadings(t *testing.T) {
	text := strings.Join([]string{
		"1. Introduction and Scope",
		"body text that is not a heading at all",
		"EXECUTIVE SUMMARY",
		"more body text follows here",
		"Key Findings Overview",
		"x",
	}, "\n")

	headings := detectHeadings(text)
	require.Len(t, headings, 3)
	assert.Equal(t, "1. Introduction and Scope", headings[0].text)
	assert.Equal(t, "EXECUTIVE SUMMARY", headings[1].text)
	assert.Equal(t, "Key Findings Overview", headings[2].text)

	// Positions ascend with the line offsets
	assert.Equal(t, 0, headings[0].pos)
	assert.Greater(t, headings[1].pos, headings[0].pos)
	assert.Greater(t, headings[2].pos, headings[1].pos)
}

func TestDetectHeadings_RejectsNonHeadings(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"lowercase line", "introduction to the topic"},
		{"too short all caps", "ABC"},
		{"single title word", "Introduction"},
		{"numbered but lowercase", "1. introduction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, detectHeadings(tt.line))
		})
	}
}

func TestHeadingAt(t *testing.T) {
	headings := []heading{
		{text: "First", pos: 0},
		{text: "Second", pos: 100},
		{text: "Third", pos: 200},
	}

	assert.Equal(t, "First", headingAt(0, headings))
	assert.Equal(t, "First", headingAt(99, headings))
	assert.Equal(t, "Second", headingAt(100, headings))
	assert.Equal(t, "Third", headingAt(5000, headings))
	assert.Equal(t, "", headingAt(10, nil))
}

func TestChunk_EmptyDocument(t *testing.T) {
	chunks, err := Chunk(core.Extraction{}, testStrategy())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_InvalidStrategy(t *testing.T) {
	strategy := testStrategy()
	strategy.OverlapWords = strategy.ChunkSizeWords // overlap must be < chunk size

	_, err := Chunk(NewExtraction([]core.PageText{{Number: 1, Text: words(100)}}), strategy)
	assert.ErrorIs(t, err, core.ErrInvalidStrategy)
}

func TestChunk_SingleShortPage(t *testing.T) {
	extraction := NewExtraction([]core.PageText{{Number: 1, Text: "just three words"}})

	chunks, err := Chunk(extraction, testStrategy())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "just three words", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 3, chunks[0].WordCount)
}

func TestChunk_Properties(t *testing.T) {
	extraction := NewExtraction([]core.PageText{
		{Number: 1, Text: words(120)},
		{Number: 2, Text: words(120)},
		{Number: 3, Text: words(60)},
	})
	strategy := testStrategy()

	chunks, err := Chunk(extraction, strategy)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		// Indices are dense from zero
		assert.Equal(t, i, chunk.Index)
		// Pages stay within the document
		assert.GreaterOrEqual(t, chunk.PageNumber, 1)
		assert.LessOrEqual(t, chunk.PageNumber, extraction.TotalPages)
		assert.Greater(t, chunk.WordCount, 0)
		assert.LessOrEqual(t, chunk.WordCount, strategy.ChunkSizeWords)
		assert.Equal(t, len(strings.Fields(chunk.Text)), chunk.WordCount)
		// Offsets are monotonic within a chunk
		assert.Greater(t, chunk.EndOffset, chunk.StartOffset)
	}

	// Page numbers never decrease across consecutive chunks
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i].PageNumber, chunks[i-1].PageNumber)
		assert.Greater(t, chunks[i].StartOffset, chunks[i-1].StartOffset)
	}
}

func TestChunk_OverlapCoverage(t *testing.T) {
	total := 120
	extraction := NewExtraction([]core.PageText{{Number: 1, Text: words(total)}})
	strategy := testStrategy() // 50-word chunks, 10-word overlap

	chunks, err := Chunk(extraction, strategy)
	require.NoError(t, err)
	// Windows start at words 0, 40, 80: three chunks, last covering 80..119
	require.Len(t, chunks, 3)
	assert.Equal(t, 50, chunks[0].WordCount)
	assert.Equal(t, 50, chunks[1].WordCount)
	assert.Equal(t, 40, chunks[2].WordCount)

	// Consecutive chunks share the overlap words
	firstWords := strings.Fields(chunks[0].Text)
	secondWords := strings.Fields(chunks[1].Text)
	assert.Equal(t, firstWords[40:], secondWords[:10])

	// Every source word appears in at least one chunk
	assert.Contains(t, chunks[2].Text, fmt.Sprintf("word%d", total-1))
}

func TestChunk_DropsShortTrailingWindow(t *testing.T) {
	// 52 words with a 50-word chunk and 10-word overlap: the second window
	// would hold only the 12 words from position 40, below MinChunkWords=20.
	extraction := NewExtraction([]core.PageText{{Number: 1, Text: words(52)}})
	strategy := testStrategy()
	strategy.MinChunkWords = 20

	chunks, err := Chunk(extraction, strategy)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 50, chunks[0].WordCount)
}

func TestChunk_HeadingProvenance(t *testing.T) {
	// A heading line at the very start of the document: the first chunk's
	// estimated offset lands at zero where the heading sits.
	page := "1. Introduction and Scope\n" + words(30)
	extraction := core.Extraction{
		FullText:   page,
		Pages:      []core.PageText{{Number: 1, Text: page}},
		TotalPages: 1,
		TotalWords: len(strings.Fields(page)),
		TotalChars: len(page),
	}

	chunks, err := Chunk(extraction, testStrategy())
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "1. Introduction and Scope", chunks[0].SectionHeading)
}

func TestPageAt(t *testing.T) {
	intervals := buildPageIntervals([]core.PageText{
		{Number: 1, Text: strings.Repeat("a", 98)}, // spans [0, 100)
		{Number: 2, Text: strings.Repeat("b", 98)}, // spans [100, 200)
	})

	assert.Equal(t, 1, pageAt(0, intervals))
	assert.Equal(t, 1, pageAt(99, intervals))
	assert.Equal(t, 2, pageAt(100, intervals))
	// Past the end resolves to the last page
	assert.Equal(t, 2, pageAt(10000, intervals))
	// No pages at all defaults to page 1
	assert.Equal(t, 1, pageAt(0, nil))
}
