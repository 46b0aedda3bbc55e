package document

import (
	"fmt"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/poiesic/summarit/core"
)

// extractPDFPages pulls plain text from every page of a PDF.
// Pages that fail extraction are skipped rather than aborting the whole
// document; scanned or image-only pages commonly yield nothing.
func extractPDFPages(path string) ([]core.PageText, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []core.PageText
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, core.PageText{Number: i, Text: text})
	}

	return pages, nil
}
