package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

var oneToThree = map[rune]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
	'Q': "GLN", 'E': "GLU", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
	'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

// convertOneToThree maps a one-letter amino acid code to its
// three-letter PDB residue name, the same convention
// uniprot_data.py's sequence parsing relies on.
func convertOneToThree(r rune) string {
	if name, ok := oneToThree[r]; ok {
		return name
	}
	return "UNK"
}

// chainsPropertyPattern parses a UniProt "Chains" cross-reference
// property value such as "A=12-219" or "A/B=5-300" into the first
// chain ID and its 1-based inclusive residue span.
var chainsPropertyPattern = regexp.MustCompile(`([A-Za-z0-9]+)(?:/[A-Za-z0-9]+)*=(\d+)-(\d+)`)

func parseChainsProperty(value string) (chainID string, begin, end int) {
	m := chainsPropertyPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return "", 0, 0
	}
	b, _ := strconv.Atoi(m[2])
	e, _ := strconv.Atoi(m[3])
	return m[1], b, e
}
