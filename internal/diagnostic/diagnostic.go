// Package diagnostic turns a ResidueCountMismatch or
// InsufficientAlignment EngineError into a human-readable explanation
// of exactly which residue numbers differ between the structures
// involved, so a caller isn't left staring at a bare error string.
package diagnostic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/flexfold/ensemble/internal/ensemble"
)

// Explanation is a diagnostic rendering of a mismatch between two
// residue-number sequences: an inline character-level diff for quick
// reading, and a unified diff for line-oriented tooling/log output.
type Explanation struct {
	Inline string
	Unified string
}

// Explain builds an Explanation from the expected and observed
// residue-number sequences of the chain an EngineError names in its
// Context field. Residue numbers are rendered one per line, so the
// unified diff operates over whole numbers; the inline diff compares
// that text character by character.
func Explain(err *ensemble.EngineError, expected, observed []int) Explanation {
	a := joinNumbers(expected)
	b := joinNumbers(observed)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	inline := dmp.DiffPrettyText(diffs)

	unified := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "expected",
		ToFile:   "observed",
		Context:  2,
	}
	text, uerr := difflib.GetUnifiedDiffString(unified)
	if uerr != nil {
		text = fmt.Sprintf("(unified diff unavailable: %v)", uerr)
	}

	return Explanation{Inline: header(err) + inline, Unified: text}
}

func header(err *ensemble.EngineError) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s): ", err.Kind, err.Context)
}

func joinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "\n")
}
