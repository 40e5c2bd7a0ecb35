package ensemble

import "context"

// MetadataRecord is the result of resolving a reference identifier:
// the primary (possibly redirected-to) ID, the reference sequence, and
// the cross-referenced structures known to the metadata service.
type MetadataRecord struct {
	PrimaryID string
	Sequence  []string // residue tokens, length L
	CrossRefs []CrossRef
}

// StructureData is everything the engine needs out of one parsed
// structure file (spec.md §6's structure_parser contract).
type StructureData struct {
	CrossRefRows      []string        // chain identifiers cross-referencing the reference
	DiffAnnotationRows []AnnotationRow
	AtomRecords       []AtomRecord
}

// ErrNotAvailable is returned by a StructureDownloader when a
// structure could not be retrieved (spec.md §7: "Downloader 404: drop
// the structure, continue").
var ErrNotAvailable = newEngineError(ErrCollaboratorFailure, "", "structure not available", nil)

// MetadataLookup resolves a reference identifier to its primary
// record, following redirect (merged/demerged-to) chains. Loop
// detection is the implementation's responsibility; it must return
// ErrIdentifierUnresolved-kinded errors on a detected loop or an
// unknown terminal record.
type MetadataLookup interface {
	Lookup(ctx context.Context, id string) (MetadataRecord, error)
}

// StructureDownloader retrieves the on-disk file for a structure ID.
// It returns ErrNotAvailable (wrapped or compared via errors.Is) when
// the structure cannot be retrieved; the engine drops the structure
// and continues.
type StructureDownloader interface {
	Download(ctx context.Context, structureID string) (filePath string, err error)
}

// StructureParser parses a downloaded structure file into the rows the
// Mutation Classifier and Coordinate Assembler consume.
type StructureParser interface {
	Parse(filePath string) (StructureData, error)
}

// CoordCacheReader reads the on-disk, read-only α-carbon coordinate
// cache for one structure (spec.md §6's coord_cache_dir contract).
type CoordCacheReader interface {
	ReadCoords(structureID string) (map[string]ChainCoordTable, error) // keyed by chain ID
}

// EnsembleSource bundles the four collaborator capabilities spec.md §6
// names, replacing the ad-hoc classes the source material uses (§9
// design note). Tests inject an in-memory source replaying fixture
// structures; production injects the network-backed implementations in
// internal/metadata, internal/cif and internal/coordcache.
type EnsembleSource struct {
	Metadata   MetadataLookup
	Downloader StructureDownloader
	Parser     StructureParser
	CoordCache CoordCacheReader
}
