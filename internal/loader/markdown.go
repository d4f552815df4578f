package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/docrag/pkg/types"
)

// MarkdownParser reads Markdown as plain text, stripping leading YAML
// front matter so metadata blocks do not pollute retrieval.
type MarkdownParser struct{}

func (MarkdownParser) Parse(path string) ([]types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	return []types.Document{{
		SourcePath: path,
		Text:       stripFrontMatter(string(data)),
	}}, nil
}

// stripFrontMatter removes a leading "---" delimited block. A block with no
// closing delimiter is kept as ordinary content.
func stripFrontMatter(text string) string {
	const delim = "---"

	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != delim {
		return text
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == delim {
			return strings.Join(lines[i+1:], "")
		}
	}

	return text
}
