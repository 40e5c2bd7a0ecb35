package ensemble

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"lukechampine.com/blake3"
)

// Fingerprint implements the reproducibility fingerprint (SPEC_FULL.md
// §2/§9): a content-addressable hash of a Result's resolved reference
// identity, shape (K, N, L) and per-pair mean distances, adapted from the teacher's
// multi-algorithm sequence-hashing pattern in hash.go/seqhash (blake3
// only, version-tagged format) rather than carrying every
// crypto.Hash registration the teacher's generic hasher supports — this
// engine only ever needs one deterministic, fast hash.
func Fingerprint(r Result) string {
	var buf bytes.Buffer
	buf.WriteString(r.ResolvedID)
	buf.WriteByte(0)
	writeInt(&buf, r.NumChains)
	writeInt(&buf, r.NumResidues)
	writeInt(&buf, r.FullSequenceLength)

	for _, ps := range r.PairScores {
		if ps.DistanceMean.Missing {
			buf.WriteByte(0xff)
			continue
		}
		writeFloat(&buf, ps.DistanceMean.Value)
	}

	sum := blake3.Sum256(buf.Bytes())
	return fmt.Sprintf("flexfold1_%s", hex.EncodeToString(sum[:]))
}

func writeInt(buf *bytes.Buffer, v int) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func writeFloat(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}
