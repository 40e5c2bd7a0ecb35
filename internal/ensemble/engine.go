package ensemble

import (
	"context"
	"log"
)

// State is one of the engine run's strictly-forward states (spec.md
// §4.I's state machine). Failed is reachable from any state.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateClassified
	StateAligned
	StateAssembled
	StateScored
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCollecting:
		return "Collecting"
	case StateClassified:
		return "Classified"
	case StateAligned:
		return "Aligned"
	case StateAssembled:
		return "Assembled"
	case StateScored:
		return "Scored"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// acceptedChain is a classified chain paired with the raw atom records
// its coordinate table will be built from.
type acceptedChain struct {
	chain   *Chain
	records []AtomRecord
}

// Run is the engine's single entry point (spec.md §6): given a
// reference identifier, configuration and collaborator set, it
// assembles, aligns, scores and packages one Result.
func Run(ctx context.Context, referenceID string, cfg Config, source EnsembleSource) (Result, error) {
	state := StateIdle

	// --- Idle -> Collecting: resolve identity and structure listing.
	state = StateCollecting
	meta, err := source.Metadata.Lookup(ctx, referenceID)
	if err != nil {
		return Result{}, newEngineError(ErrIdentifierUnresolved, referenceID, "metadata lookup failed", err)
	}

	crossRefs := make([]CrossRef, 0, len(meta.CrossRefs))
	for _, cr := range meta.CrossRefs {
		if cfg.MethodFilter.matches(cr.Method) {
			crossRefs = append(crossRefs, cr)
		}
	}
	if len(crossRefs) == 0 {
		state = StateFailed
		return Result{}, newEngineError(ErrNoStructures, referenceID, "no cross-references survive the method filter", nil)
	}
	if len(crossRefs) > cfg.MaxStructures {
		crossRefs = crossRefs[:cfg.MaxStructures]
	}

	ref := ReferenceSequence{ID: meta.PrimaryID, Tokens: meta.Sequence}

	var (
		accepted         []acceptedChain
		usedStructureIDs []string
		excludedIDs      []string
		distinctUsed     = map[string]bool{}
		resolutions      []float64
	)

	for _, cr := range crossRefs {
		filePath, derr := source.Downloader.Download(ctx, cr.StructureID)
		if derr != nil {
			excludedIDs = append(excludedIDs, cr.StructureID)
			continue
		}
		data, perr := source.Parser.Parse(filePath)
		if perr != nil {
			excludedIDs = append(excludedIDs, cr.StructureID)
			continue
		}

		class, corrections := ClassifyStructure(data.DiffAnnotationRows, data.CrossRefRows)
		if class == ClassMismatch {
			excludedIDs = append(excludedIDs, cr.StructureID)
			continue
		}

		chain := &Chain{
			StructureID: cr.StructureID,
			ChainID:     cr.ChainID,
			Method:      cr.Method,
			Resolution:  cr.Resolution,
			Begin:       cr.Begin,
			End:         cr.End,
			Class:       class,
			Residues:    residuesFromSpan(cr.Begin, cr.End),
			Corrections: corrections[cr.ChainID],
		}

		accepted = append(accepted, acceptedChain{chain: chain, records: data.AtomRecords})
		usedStructureIDs = append(usedStructureIDs, cr.StructureID)
		if !distinctUsed[cr.StructureID] {
			distinctUsed[cr.StructureID] = true
			if cr.Resolution != nil {
				resolutions = append(resolutions, *cr.Resolution)
			}
		}
	}

	// --- Collecting -> Classified.
	state = StateClassified
	if len(accepted) < 2 {
		state = StateFailed
		return Result{}, newEngineError(ErrTooFewAcceptedStructures, referenceID,
			"fewer than two usable chains after classification", nil)
	}

	chains := make([]*Chain, len(accepted))
	for i, a := range accepted {
		chains[i] = a.chain
	}

	// coord_cache_dir is the primary coordinate source (spec.md §6):
	// one ReadCoords call per distinct structure, keyed by chain ID.
	// A structure absent from the cache (not yet pre-computed) falls
	// back to the atom-record route below.
	coordCache := make(map[string]map[string]ChainCoordTable, len(distinctUsed))
	if source.CoordCache != nil {
		for structureID := range distinctUsed {
			tables, cerr := source.CoordCache.ReadCoords(structureID)
			if cerr != nil {
				log.Printf("flexfold: coord cache miss for %s, falling back to atom records: %v", structureID, cerr)
				continue
			}
			coordCache[structureID] = tables
		}
	}

	// --- Classified -> Aligned, with the residue-count-mismatch
	// reconciliation loop: drop the offending chain and retry once the
	// coordinate table is built and found inconsistent with the
	// trimmed schema.
	var rct *RCT
	for {
		var aerr error
		rct, aerr = AlignAndTrim(ref, chains, cfg.SeqRatio)
		if aerr != nil {
			state = StateFailed
			return Result{}, aerr
		}

		coordTables, mismatchIdx := buildCoordTablesOrMismatch(rct, chains, accepted, coordCache)
		if mismatchIdx < 0 {
			state = StateAligned
			AssembleCoordinates(rct, coordTables)
			break
		}

		// Drop the offending chain and retry.
		offending := chains[mismatchIdx]
		excludedIDs = append(excludedIDs, offending.StructureID)
		usedStructureIDs = removeString(usedStructureIDs, offending.StructureID)
		chains = append(chains[:mismatchIdx], chains[mismatchIdx+1:]...)
		accepted = append(accepted[:mismatchIdx], accepted[mismatchIdx+1:]...)
		if len(chains) < 2 {
			state = StateFailed
			return Result{}, newEngineError(ErrResidueCountMismatch, referenceID,
				"residue-count mismatch reduced the accepted set below two chains", nil)
		}
	}

	// --- Aligned -> Assembled -> Scored.
	state = StateAssembled
	rows := ComputeDistances(rct)
	state = StateScored
	ScorePairs(rows, cfg.DDOF)

	umf, uerr := ComputeUMF(rows)
	if uerr != nil {
		state = StateFailed
		return Result{}, uerr
	}

	pairStats := ComputePairScoreStats(rows)
	perResidue := ComputePerResidueScores(rct, rows)
	heatmap := BuildHeatmap(rct.N(), rows)
	cisInfo := DetectCisPairs(rows, cfg.CisThreshold)
	samplePoints := SamplePoints(rows)

	var meanResolution MissingFloat
	if len(resolutions) == 0 {
		meanResolution = Absent()
	} else {
		meanResolution = Present(mean(resolutions))
	}

	resolvedID := referenceID
	if meta.PrimaryID != "" {
		resolvedID = meta.PrimaryID
	}

	result := AssembleResult(AssembleInput{
		Config:               cfg,
		ReferenceID:          referenceID,
		ResolvedID:           resolvedID,
		Reference:            ref,
		RCT:                  rct,
		PairRows:             rows,
		UMF:                  umf,
		PairScoreStats:       pairStats,
		PerResidueScores:     perResidue,
		Heatmap:              heatmap,
		CisInfo:              cisInfo,
		SamplePoints:         samplePoints,
		UsedStructureIDs:     usedStructureIDs,
		ExcludedStructureIDs: excludedIDs,
		MeanResolution:       meanResolution,
	})

	state = StateDone
	_ = state
	return result, nil
}

// residuesFromSpan synthesizes a chain's structure-numbered residue
// slots for [begin, end]; coordinate assembly resolves each slot's
// Cartesian position, and corrections (from classification) mark the
// slots that are actually gaps.
func residuesFromSpan(begin, end int) []Residue {
	out := make([]Residue, 0, end-begin+1)
	for n := begin; n <= end; n++ {
		out = append(out, Residue{Number: n})
	}
	return out
}

// buildCoordTablesOrMismatch builds one coordinate table per chain,
// preferring the coord_cache_dir lookup for the chain's structure
// (spec.md §6) and falling back to BuildCoordTable over the parsed
// atom records when the structure isn't cached or the chain's ID
// isn't present in it. It reports the index of the first chain whose
// coordinate table has no residue numbers at all overlapping the
// chain's declared span — the residue-count-mismatch condition
// spec.md §7 names — or -1 if none.
func buildCoordTablesOrMismatch(rct *RCT, chains []*Chain, accepted []acceptedChain, coordCache map[string]map[string]ChainCoordTable) ([]ChainCoordTable, int) {
	tables := make([]ChainCoordTable, len(chains))
	byStructure := make(map[string][]AtomRecord, len(accepted))
	for _, a := range accepted {
		byStructure[a.chain.StructureID+"/"+a.chain.ChainID] = a.records
	}
	for i, chain := range chains {
		table := coordCache[chain.StructureID][chain.ChainID]
		if len(table) == 0 {
			records := byStructure[chain.StructureID+"/"+chain.ChainID]
			table = BuildCoordTable(records)
		}
		tables[i] = table
		if chain.End >= chain.Begin {
			overlaps := false
			for n := range table {
				if n >= chain.Begin && n <= chain.End {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return tables, i
			}
		}
	}
	return tables, -1
}

func removeString(list []string, target string) []string {
	out := list[:0]
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
