// Package chunker divides document text into overlapping windows for
// embedding and retrieval.
//
// The chunker is character-oriented, not structure-oriented: it slides a
// fixed-size window over the text in rune units, so multi-byte characters
// never split mid-rune and window geometry is independent of encoding.
//
// # Basic Usage
//
//	c, err := chunker.New(4000, 2000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	chunks := c.Split(doc)
//	for _, chunk := range chunks {
//	    fmt.Printf("chunk %d: %d runes from %s\n",
//	        chunk.ChunkIndex, len([]rune(chunk.Text)), chunk.SourceRef())
//	}
//
// # Window Geometry
//
// Windows are size runes long and each one starts size-overlap runes
// after the previous, so consecutive chunks share overlap runes of text.
// The final window may be shorter; it always ends exactly at the end of
// the text. A 9000-rune document at size 4000 / overlap 2000 yields four
// chunks:
//
//	[0, 4000)  [2000, 6000)  [4000, 8000)  [6000, 9000)
//
// Overlap exists so a statement falling on a window boundary is still
// seen whole by at least one chunk.
//
// # Validation
//
// New rejects size <= 0, negative overlap, and overlap >= size, all
// wrapping types.ErrInvalidConfig. The overlap bound is what guarantees
// the window sequence advances and terminates.
package chunker
