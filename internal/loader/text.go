package loader

import (
	"fmt"
	"os"

	"github.com/dshills/docrag/pkg/types"
)

// TextParser reads a file verbatim as a single Document.
type TextParser struct{}

func (TextParser) Parse(path string) ([]types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	return []types.Document{{SourcePath: path, Text: string(data)}}, nil
}
