package loader

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/docrag/pkg/types"
)

// DOCXParser extracts paragraph text from Office Open XML word documents.
// A .docx file is a zip archive; the document body lives in
// word/document.xml as w:p paragraphs of w:t text runs.
type DOCXParser struct{}

var errNoDocumentXML = errors.New("word/document.xml not found")

func (DOCXParser) Parse(path string) ([]types.Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return nil, errNoDocumentXML
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	text, err := extractDocumentText(rc)
	if err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}

	return []types.Document{{SourcePath: path, Text: text}}, nil
}

// extractDocumentText walks the WordprocessingML token stream collecting
// w:t run text, with paragraph ends and w:br as newlines and w:tab as tabs.
func extractDocumentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
