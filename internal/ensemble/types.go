// Package ensemble implements the ensemble flexibility analysis engine:
// classification, alignment, coordinate assembly, pairwise distance and
// DSA scoring, aggregation and cis-pair detection over a set of
// structures of the same protein.
package ensemble

import "encoding/json"

// MissingFloat unifies the "missing value" sum type for scalar fields
// (distances, means, stddevs, scores) so a caller can never mistake a
// real zero for an absence. The source this engine is modeled on
// overloads NaN/None/sentinel strings for this; this type collapses
// all of that onto one explicit flag.
type MissingFloat struct {
	Value   float64
	Missing bool
}

// Present constructs a non-missing MissingFloat.
func Present(v float64) MissingFloat { return MissingFloat{Value: v} }

// Absent is the zero-value-free missing constructor.
func Absent() MissingFloat { return MissingFloat{Missing: true} }

// MarshalJSON renders a missing value as JSON null, matching
// heatmap_to_list's NaN-to-None convention for exported results.
func (m MissingFloat) MarshalJSON() ([]byte, error) {
	if m.Missing {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts either a JSON number or null.
func (m *MissingFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = MissingFloat{Missing: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MissingFloat{Value: v}
	return nil
}

// Residue is one slot of a chain column: either a structure-numbered
// residue token, or missing (unobserved, deleted, or outside the
// chain's aligned span).
type Residue struct {
	Token   string
	Number  int
	Missing bool
}

// MissingResidue is the zero value for an unobserved/padded slot.
var MissingResidue = Residue{Missing: true}

// Coord is a Cartesian triple, or missing when no atom record resolved
// for the corresponding residue slot.
type Coord struct {
	X, Y, Z float64
	Missing bool
}

// MissingCoord is the zero value for an unresolved coordinate.
var MissingCoord = Coord{Missing: true}

// MutationClass is the sum type a structure-chain is classified into
// relative to the reference sequence.
type MutationClass int

const (
	ClassNormal MutationClass = iota
	ClassSubstitution
	ClassChimera
	ClassDelins
	ClassMismatch
)

func (c MutationClass) String() string {
	switch c {
	case ClassNormal:
		return "normal"
	case ClassSubstitution:
		return "substitution"
	case ClassChimera:
		return "chimera"
	case ClassDelins:
		return "delins"
	case ClassMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// AnnotationRow is one sequence-difference annotation relative to the
// reference, as read from a structure file's cross-reference category.
type AnnotationRow struct {
	ChainID      string
	SeqNum       int  // structure-side residue number; see SeqNumKnown
	SeqNumKnown  bool // false when the source gave "?"
	DBNum        int  // reference-side residue number; see DBNumKnown
	DBNumKnown   bool
	Detail       string
}

// CrossRef names a chain identifier that cross-references the
// reference protein, with its structure/method/resolution metadata and
// the alignment span it claims into R.
type CrossRef struct {
	StructureID string
	ChainID     string
	Method      string
	Resolution  *float64
	Begin, End  int // 1-based inclusive
}

// AtomRecord is one atom-site row from a parsed structure. The parser
// passes every record through; BuildCoordTable applies the polymer,
// atom-name and alternate-location filtering.
type AtomRecord struct {
	StructureID   string
	ChainID       string
	ResidueNumber int
	AtomName      string
	AltCode       string // blank when none
	GroupTag      string // e.g. "ATOM" vs "HETATM"
	X, Y, Z       float64
}

// Chain is one polypeptide chain from one structure, embedded into the
// reference's coordinate system at [Begin-1, End).
type Chain struct {
	StructureID string
	ChainID     string
	Method      string
	Resolution  *float64
	Begin, End  int // 1-based inclusive span into R
	Class       MutationClass
	Residues    []Residue // length End-Begin+1, structure-assigned numbering

	// Corrections carries the annotation-derived hints the aligner
	// needs to place Residues into the full-length column; populated
	// by the classifier, consumed by the aligner.
	Corrections ChainCorrections
}

// ChainCorrections holds the per-chain correction hints the aligner
// applies in the fixed order spec'd order: deletion, insertion,
// delins-duplicate-structure-side, delins-duplicate-reference-side.
type ChainCorrections struct {
	Deletions       []int // reference-side (DB) positions with a "?" structure-side number
	Insertions      []int // structure-side positions with a "?" reference-side number
	DupSeqPositions []int // structure-side positions appearing more than once
	DupDBPositions  []int // reference-side positions appearing more than once
}

// ReferenceSequence is the canonical sequence R that every chain is
// aligned against.
type ReferenceSequence struct {
	ID     string
	Tokens []string // length L
}

// ChainColumn is one chain's contribution to the RCT: a residue label
// and a coordinate per surviving row, after trimming.
type ChainColumn struct {
	Chain     *Chain
	Residues  []Residue // length N, aligned to RCT rows
	Coords    []Coord   // length N, aligned to RCT rows
}

// RCT is the trimmed Residue Coordinate Table: the reference column
// plus K chain columns, N rows after trimming.
type RCT struct {
	ReferenceID string
	Reference   []string // length N, reference tokens for surviving rows
	// RowResidueNumber is the 1-based position each surviving row held
	// in the untrimmed, full-length column (i.e. its slot in R),
	// preserved for residue_number reporting after trimming removes rows.
	RowResidueNumber []int
	Chains           []ChainColumn // K columns
}

// N is the number of surviving residue rows.
func (r *RCT) N() int { return len(r.Reference) }

// K is the number of chain columns.
func (r *RCT) K() int { return len(r.Chains) }

// PairRow is one (i,j) entry of the pair table, i<j, carrying one
// distance cell per chain plus the DSA reduction over those cells.
type PairRow struct {
	I, J      int
	Distances []MissingFloat // length K
	Mean      MissingFloat
	Std       MissingFloat
	Score     MissingFloat
}

// Heatmap is the symmetric N×N score matrix with NaN (Missing) on the
// diagonal.
type Heatmap struct {
	Size   int
	Values [][]MissingFloat
}

// CisInfo summarizes the cis-pair detection pass.
type CisInfo struct {
	Threshold float64
	CisNum    int
	Mix       int
	DistMean  MissingFloat
	DistStd   MissingFloat
	ScoreMean MissingFloat
	Pairs     []int // eligible pair indices into the pair table
}

// PairScoreStats is the ensemble-wide mean/std of finite pair scores,
// std always computed with denominator n-1 regardless of Config.DDOF.
type PairScoreStats struct {
	Mean MissingFloat
	Std  MissingFloat
}

// PerResidueScore is one row of the per-residue reduction.
type PerResidueScore struct {
	Index         int // 0-based row index into the RCT
	ResidueNumber int
	ResidueName   string
	Score         MissingFloat
}

// PairScoreRecord is one reported pair-score entry in the final result.
type PairScoreRecord struct {
	I, J         int
	ResiduePair  string // "i, j" 1-based label
	DistanceMean MissingFloat
	DistanceStd  MissingFloat
	Score        MissingFloat
}

// SamplePoint is one (mean_distance, score) pair sampled for scatter
// plotting.
type SamplePoint struct {
	MeanDistance float64
	Score        float64
}

// Result is the single structured output of an engine run.
type Result struct {
	ReferenceID             string
	ResolvedID              string // equal to ReferenceID unless a redirect occurred
	NumStructures           int
	NumResidues             int // N
	FullSequenceLength      int // L
	ResidueCoveragePercent  float64
	NumChains               int // K
	UsedStructureIDs        []string
	ExcludedStructureIDs    []string
	SeqRatio                float64
	Method                  string
	MeanResolution          MissingFloat
	UMF                     float64
	PairScoreStats          PairScoreStats
	PairScores              []PairScoreRecord
	PerResidueScores        []PerResidueScore
	Heatmap                 Heatmap
	CisInfo                 CisInfo
	SamplePoints            []SamplePoint
	Fingerprint             string
}
