package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/summarit/chunker"
	"github.com/poiesic/summarit/core"
)

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ExtractFile extracts page texts from a document on disk and assembles
// them into a cleaned Extraction. The extractor is picked by file
// extension: .pdf gets per-page PDF extraction, .txt and .md are read as
// a single page, everything else is rejected.
func ExtractFile(path string) (core.Extraction, error) {
	var (
		pages []core.PageText
		err   error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err = extractPDFPages(path)
	case ".txt", ".md":
		pages, err = extractTextPages(path)
	default:
		return core.Extraction{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return core.Extraction{}, err
	}

	extraction := chunker.NewExtraction(pages)
	if extraction.TotalWords == 0 {
		return core.Extraction{}, core.ErrEmptyDocument
	}
	return extraction, nil
}
