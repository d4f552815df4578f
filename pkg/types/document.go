package types

// Document is the parsed text of one input file, or of one page for
// paginated formats such as PDF. Created by the loader, immutable after
// creation.
type Document struct {
	SourcePath string
	Text       string

	// PageNumber is the 1-based page for paginated sources, 0 when the
	// source has no page structure.
	PageNumber int
}

// Paginated reports whether the document came from a page of a paginated
// source.
func (d Document) Paginated() bool {
	return d.PageNumber > 0
}
