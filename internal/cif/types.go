// Package cif implements a minimal mmCIF tokenizer and a
// domain-specific extraction pass that turns a parsed file into the
// cross-reference, diff-annotation and atom-site rows the ensemble
// engine's default StructureParser consumes. The tokenizer itself is
// adapted from the teacher's io/pdbx/cif package: same category/tag
// scanning and loop_ handling, narrowed to the categories this engine
// actually reads.
package cif

// Block is one data_ block of a CIF file: a flat set of single-valued
// data items plus loop_ categories, each loop category holding one
// []any slice per tag, row-major.
type Block struct {
	Name      string
	DataItems map[string]any
}

func newBlock(name string) Block {
	return Block{Name: name, DataItems: make(map[string]any)}
}

// File is a parsed CIF file: an unordered set of named data blocks.
// Structure files this engine reads always carry exactly one block,
// but the parser does not assume that.
type File struct {
	Blocks map[string]Block
}

func newFile() File {
	return File{Blocks: make(map[string]Block)}
}

// SpecialValue is a non-numeric, non-string CIF token.
type SpecialValue string

const (
	// Inapplicable marks a value explicitly not applicable (".").
	Inapplicable SpecialValue = "."
	// Unknown marks a value that is applicable but unrecorded ("?").
	Unknown SpecialValue = "?"
)
