// Package prompt renders generation prompts from retrieved context.
//
// The assembler owns the context window arithmetic: prompt tokens are
// estimated at four bytes per token, and the configured answer
// reservation is subtracted from the window before any chunk is placed.
// Chunks are included in retrieval order until the budget runs out. When
// the best-ranked chunk alone overflows the budget it is truncated, not
// dropped, so a successful retrieval always grounds the answer.
//
//	asm, err := prompt.NewAssembler(4096, 512)
//	if err != nil {
//	    return err
//	}
//	p := asm.Assemble("What does the warranty cover?", results)
//
// Each chunk appears in the context block under its source reference
// ([manual.pdf#page=12]), which keeps the model's answers traceable to
// specific documents.
package prompt
