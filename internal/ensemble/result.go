package ensemble

import "strconv"

// BuildPairScoreRecords converts the internal pair table into the
// reported {i,j,residue_pair,distance_mean,distance_std,score} rows
// (spec.md §6's result record field list).
func BuildPairScoreRecords(rows []PairRow) []PairScoreRecord {
	out := make([]PairScoreRecord, len(rows))
	for idx, row := range rows {
		out[idx] = PairScoreRecord{
			I:            row.I,
			J:            row.J,
			ResiduePair:  pairLabel(row.I, row.J),
			DistanceMean: row.Mean,
			DistanceStd:  row.Std,
			Score:        row.Score,
		}
	}
	return out
}

func pairLabel(i, j int) string {
	return strconv.Itoa(i+1) + ", " + strconv.Itoa(j+1)
}

// AssembleInput bundles everything the Result Assembler (spec.md §4.I)
// needs once every upstream component has run.
type AssembleInput struct {
	Config               Config
	ReferenceID          string
	ResolvedID           string
	Reference            ReferenceSequence
	RCT                  *RCT
	PairRows             []PairRow
	UMF                  float64
	PairScoreStats       PairScoreStats
	PerResidueScores     []PerResidueScore
	Heatmap              Heatmap
	CisInfo              CisInfo
	SamplePoints         []SamplePoint
	UsedStructureIDs     []string
	ExcludedStructureIDs []string
	MeanResolution       MissingFloat
}

// AssembleResult implements the Result Assembler (spec.md §4.I),
// packaging every upstream artefact into the one structured output
// record.
func AssembleResult(in AssembleInput) Result {
	n := in.RCT.N()
	l := len(in.Reference.Tokens)

	result := Result{
		ReferenceID:            in.ReferenceID,
		ResolvedID:             in.ResolvedID,
		NumStructures:          len(in.UsedStructureIDs),
		NumResidues:            n,
		FullSequenceLength:     l,
		ResidueCoveragePercent: 100 * float64(n) / float64(l),
		NumChains:              in.RCT.K(),
		UsedStructureIDs:       in.UsedStructureIDs,
		ExcludedStructureIDs:   in.ExcludedStructureIDs,
		SeqRatio:               in.Config.SeqRatio,
		Method:                 in.Config.MethodFilter.String(),
		MeanResolution:         in.MeanResolution,
		UMF:                    in.UMF,
		PairScoreStats:         in.PairScoreStats,
		PairScores:             BuildPairScoreRecords(in.PairRows),
		PerResidueScores:       in.PerResidueScores,
		Heatmap:                in.Heatmap,
		CisInfo:                in.CisInfo,
		SamplePoints:           in.SamplePoints,
	}
	result.Fingerprint = Fingerprint(result)
	return result
}
