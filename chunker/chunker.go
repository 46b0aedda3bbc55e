package chunker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/summarit/core"
)

// avgCharsPerWord approximates character positions from word indices.
// Average English word is ~5 chars plus one space. Positions derived from it
// are consistent across chunks, headings, and page intervals, which is all
// the provenance math requires.
const avgCharsPerWord = 6

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	numericLineRe  = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	blankLinesRe   = regexp.MustCompile(`\n{3,}`)
	numberedHeadRe = regexp.MustCompile(`^(\d+\.?\d*\.?\s+[A-Z][^\n]{5,60})$`)
	allCapsHeadRe  = regexp.MustCompile(`^([A-Z][A-Z\s]{5,60})$`)
	titleCaseRe    = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,8})$`)
)

// CleanText normalizes extracted page text: collapses runs of whitespace,
// strips bare page-number lines, and trims the result.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = numericLineRe.ReplaceAllString(text, "")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// NewExtraction cleans raw page texts and assembles them into an Extraction.
// Pages whose text is empty after cleaning are dropped; the remaining pages
// keep their original 1-indexed numbers. FullText joins the cleaned pages
// with a blank line.
func NewExtraction(rawPages []core.PageText) core.Extraction {
	var pages []core.PageText
	var parts []string

	for _, page := range rawPages {
		cleaned := CleanText(page.Text)
		if cleaned == "" {
			continue
		}
		pages = append(pages, core.PageText{Number: page.Number, Text: cleaned})
		parts = append(parts, cleaned)
	}

	fullText := strings.Join(parts, "\n\n")
	return core.Extraction{
		FullText:   fullText,
		Pages:      pages,
		TotalPages: len(pages),
		TotalWords: len(strings.Fields(fullText)),
		TotalChars: len(fullText),
	}
}

// heading is a detected section heading and its character position.
type heading struct {
	text string
	pos  int
}

// detectHeadings scans a document line by line for section headings.
// Three shapes are recognized: numbered ("1. Introduction", "2.1 Scope"),
// all-caps ("EXECUTIVE SUMMARY"), and title case ("Key Findings"). The first
// matching shape wins per line.
func detectHeadings(text string) []heading {
	var headings []heading
	patterns := []*regexp.Regexp{numberedHeadRe, allCapsHeadRe, titleCaseRe}

	charPos := 0
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		for _, pattern := range patterns {
			match := pattern.FindStringSubmatch(stripped)
			if match != nil {
				h := strings.TrimSpace(match[1])
				if len(h) >= 5 && len(h) <= 100 {
					headings = append(headings, heading{text: h, pos: charPos})
				}
				break
			}
		}
		charPos += len(line) + 1 // +1 for newline
	}

	return headings
}

// headingAt returns the nearest heading at or before position, or "".
// Headings are produced in ascending position order, so a binary search
// finds the first heading past the position.
func headingAt(position int, headings []heading) string {
	i := sort.Search(len(headings), func(i int) bool {
		return headings[i].pos > position
	})
	if i == 0 {
		return ""
	}
	return headings[i-1].text
}

// pageInterval is the half-open character range [start, end) of one page
// within the full text.
type pageInterval struct {
	number int
	start  int
	end    int
}

// buildPageIntervals maps character positions to page numbers. Each page
// spans its text length plus the two-character blank-line separator.
func buildPageIntervals(pages []core.PageText) []pageInterval {
	intervals := make([]pageInterval, 0, len(pages))
	charPos := 0
	for _, page := range pages {
		pageLen := len(page.Text) + 2
		intervals = append(intervals, pageInterval{
			number: page.Number,
			start:  charPos,
			end:    charPos + pageLen,
		})
		charPos += pageLen
	}
	return intervals
}

// pageAt returns the page number containing the given character position.
// Positions past the last page resolve to the last page.
func pageAt(position int, intervals []pageInterval) int {
	if len(intervals) == 0 {
		return 1
	}
	i := sort.Search(len(intervals), func(i int) bool {
		return intervals[i].end > position
	})
	if i == len(intervals) {
		return intervals[len(intervals)-1].number
	}
	return intervals[i].number
}

// Chunk splits an extraction into overlapping word windows with page and
// heading provenance. Returns an empty slice for an empty document. A
// trailing window shorter than MinChunkWords is dropped unless it is the
// only chunk.
func Chunk(extraction core.Extraction, strategy core.ProcessingStrategy) ([]core.Chunk, error) {
	if err := core.ValidateStrategy(strategy); err != nil {
		return nil, err
	}

	words := strings.Fields(extraction.FullText)
	totalWords := len(words)
	if totalWords == 0 {
		return nil, nil
	}

	headings := detectHeadings(extraction.FullText)
	intervals := buildPageIntervals(extraction.Pages)

	var chunks []core.Chunk
	chunkIndex := 0
	wordIndex := 0

	for wordIndex < totalWords {
		chunkEnd := min(wordIndex+strategy.ChunkSizeWords, totalWords)
		chunkWords := words[wordIndex:chunkEnd]

		// A short trailing window carries only words already covered by the
		// previous chunk's overlap.
		if len(chunkWords) < strategy.MinChunkWords && wordIndex > 0 {
			break
		}

		chunkText := strings.Join(chunkWords, " ")
		startOffset := wordIndex * avgCharsPerWord

		pageNumber := pageAt(startOffset, intervals)
		pageNumber = max(1, min(pageNumber, extraction.TotalPages))

		chunks = append(chunks, core.Chunk{
			Index:          chunkIndex,
			Text:           chunkText,
			PageNumber:     pageNumber,
			StartOffset:    startOffset,
			EndOffset:      startOffset + len(chunkText),
			SectionHeading: headingAt(startOffset, headings),
			WordCount:      len(chunkWords),
		})
		chunkIndex++

		if strategy.OverlapWords > 0 && wordIndex+strategy.ChunkSizeWords < totalWords {
			wordIndex += strategy.ChunkSizeWords - strategy.OverlapWords
		} else {
			wordIndex += strategy.ChunkSizeWords
		}
	}

	return chunks, nil
}
