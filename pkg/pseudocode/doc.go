// Package pseudocode parses the Italian structured-programming dialect used
// for "carta strutturata" exercises into a tree of nested blocks.
//
// The dialect is line oriented. Blocks are opened and closed by keywords:
//
//	INIZIO ... FINE                          program/sequence block
//	SE <cond> / ALLORA ... ALTRIMENTI ... FINE-SE   conditional
//	RIPETI / FINCHE' <cond> ... FINE-RIPETI  loop
//
// [Build] turns the flat line sequence into a forest of [Node] values. Each
// node records how many grid rows it occupies once drawn, so the layout stage
// in package paper can place it without measuring again:
//
//	forest, err := pseudocode.Parse(code)
//	root := pseudocode.Root("Esercizio", forest)
//
// A conditional without an ALTRIMENTI branch gets a synthetic "OR" connector
// and an ALTRIMENTI block containing a single "SKIP" line, so every
// conditional is drawn with two branches.
//
// By default malformed input never fails: a block that is never closed is
// closed implicitly at the end of input. [WithStrict] reports unclosed
// blocks and dangling SE headers as coded errors instead.
package pseudocode
