// Package loader discovers and parses local documents for ingestion.
//
// The loader walks a directory tree, classifies files by extension, and
// turns each supported file into one or more plain-text Documents ready
// for chunking.
//
// # Supported Formats
//
// Format dispatch is a closed table keyed by extension:
//
//	.pdf              PDF, one Document per page (page numbers preserved)
//	.docx             Office Open XML word documents
//	.md, .markdown    Markdown (YAML front matter stripped)
//	.txt, .text       plain text
//
// Any other extension is skipped silently and counted in Stats. There is
// no content sniffing and no fallback parser; adding a format means adding
// a Kind, an extension mapping, and a Parser.
//
// # Basic Usage
//
//	l := loader.New(logger)
//	docs, stats, err := l.Load(ctx, "/home/dev/docs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("parsed %d files into %d documents (%d skipped, %d failed)\n",
//	    stats.FilesParsed, stats.Documents, stats.FilesSkipped, stats.FilesFailed)
//
// # Parse Failures
//
// A file that matches a supported extension but cannot be parsed (a
// corrupt PDF, a .docx that is not a zip) is wrapped in *types.ParseError,
// logged, and counted. The run continues with the remaining files; Load
// only returns an error for failures that invalidate the whole walk.
//
// # Concurrency
//
// Files parse in parallel through an errgroup-bounded worker pool sized to
// NumCPU. Results are slotted by discovery position, so the returned
// document order is deterministic for a given tree regardless of which
// worker finishes first.
package loader
