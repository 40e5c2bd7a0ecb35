package ensemble

// discardedDetails are annotation details treated as non-differences
// for classification purposes (step 3). "microheterogeneity" resolves
// the Open Question in DESIGN.md: it is discarded here exactly as it
// is folded into "normal" downstream, so both routes agree.
var discardedDetails = map[string]bool{
	"expression tag":    true,
	"linker":            true,
	"conflict":          true,
	"microheterogeneity": true,
}

const detailEngineeredMutation = "engineered mutation"

// ClassifyStructure implements the Mutation Classifier (spec.md §4.B)
// for one structure. annotations holds every sequence-difference row
// parsed for the structure; crossRefChainIDs holds the chain
// identifiers that cross-reference the reference protein, with
// duplicates preserved (a repeated chain ID signals two reference
// segments folded into one chain, i.e. chimera).
//
// It also returns, per chain, the correction hints the aligner needs:
// deletion/insertion markers and delins duplicate-number positions.
func ClassifyStructure(annotations []AnnotationRow, crossRefChainIDs []string) (MutationClass, map[string]ChainCorrections) {
	crossRefSet := make(map[string]bool, len(crossRefChainIDs))
	seen := make(map[string]bool, len(crossRefChainIDs))
	duplicated := false
	for _, id := range crossRefChainIDs {
		crossRefSet[id] = true
		if seen[id] {
			duplicated = true
		}
		seen[id] = true
	}

	if len(crossRefSet) == 0 {
		return ClassMismatch, nil
	}
	if duplicated {
		return ClassChimera, nil
	}

	// Step 1: restrict to cross-referencing chains.
	restricted := make([]AnnotationRow, 0, len(annotations))
	for _, row := range annotations {
		if crossRefSet[row.ChainID] {
			restricted = append(restricted, row)
		}
	}

	corrections := buildCorrections(restricted)

	// Step 3: drop non-difference details.
	remaining := make([]AnnotationRow, 0, len(restricted))
	for _, row := range restricted {
		if discardedDetails[row.Detail] {
			continue
		}
		remaining = append(remaining, row)
	}

	if len(remaining) == 0 {
		return ClassNormal, corrections
	}

	class := ClassNormal
	for _, row := range remaining {
		if row.Detail == detailEngineeredMutation {
			class = ClassSubstitution
			break
		}
	}

	// Step 6: override to delins if any chain shows duplicate
	// structure-side or reference-side numbers.
	for _, c := range corrections {
		if len(c.DupSeqPositions) > 0 || len(c.DupDBPositions) > 0 {
			class = ClassDelins
			break
		}
	}

	return class, corrections
}

// buildCorrections groups annotation rows by chain and derives the
// deletion/insertion/duplicate hints the aligner consumes, from the
// full (pre-discard) restricted row set.
func buildCorrections(rows []AnnotationRow) map[string]ChainCorrections {
	byChain := make(map[string][]AnnotationRow)
	for _, row := range rows {
		byChain[row.ChainID] = append(byChain[row.ChainID], row)
	}

	result := make(map[string]ChainCorrections, len(byChain))
	for chainID, chainRows := range byChain {
		var c ChainCorrections

		seqCount := make(map[int]int)
		dbCount := make(map[int]int)

		for _, row := range chainRows {
			switch {
			case !row.SeqNumKnown:
				// structure-side "?": deletion at this reference position.
				c.Deletions = append(c.Deletions, row.DBNum)
			case !row.DBNumKnown:
				// reference-side "?": insertion at this structure position.
				c.Insertions = append(c.Insertions, row.SeqNum)
			default:
				seqCount[row.SeqNum]++
				dbCount[row.DBNum]++
			}
		}

		// Each position is appended (n-1) times: once per duplicate
		// beyond the first, so align.go can apply exactly that many
		// corrective inserts/removes without recomputing n.
		for pos, n := range seqCount {
			for i := 0; i < n-1; i++ {
				c.DupSeqPositions = append(c.DupSeqPositions, pos)
			}
		}
		for pos, n := range dbCount {
			for i := 0; i < n-1; i++ {
				c.DupDBPositions = append(c.DupDBPositions, pos)
			}
		}

		result[chainID] = c
	}
	return result
}
