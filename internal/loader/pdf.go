package loader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dshills/docrag/pkg/types"
)

// PDFParser extracts text from PDF files, one Document per page. Page
// numbers are the 1-based positions in the original file; blank pages are
// dropped without disturbing the numbering of the rest.
type PDFParser struct{}

func (PDFParser) Parse(path string) ([]types.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	total := r.NumPage()
	docs := make([]types.Document, 0, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, types.Document{
			SourcePath: path,
			Text:       text,
			PageNumber: i,
		})
	}

	return docs, nil
}
