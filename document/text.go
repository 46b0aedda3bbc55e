package document

import (
	"fmt"
	"os"

	"github.com/poiesic/summarit/core"
)

// extractTextPages reads a plain-text or markdown file as a single page.
func extractTextPages(path string) ([]core.PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return []core.PageText{{Number: 1, Text: string(data)}}, nil
}
