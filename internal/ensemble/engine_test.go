package ensemble

import (
	"context"
	"testing"
)

type fakeMetadata struct {
	record MetadataRecord
	err    error
}

func (f fakeMetadata) Lookup(ctx context.Context, id string) (MetadataRecord, error) {
	return f.record, f.err
}

type fakeDownloader struct {
	available map[string]bool
}

func (f fakeDownloader) Download(ctx context.Context, structureID string) (string, error) {
	if !f.available[structureID] {
		return "", ErrNotAvailable
	}
	return structureID, nil
}

type fakeParser struct {
	data map[string]StructureData
}

func (f fakeParser) Parse(filePath string) (StructureData, error) {
	d, ok := f.data[filePath]
	if !ok {
		return StructureData{}, newEngineError(ErrCollaboratorFailure, filePath, "no fixture data", nil)
	}
	return d, nil
}

type fakeCoordCache struct {
	tables map[string]map[string]ChainCoordTable
	err    error
}

func (f fakeCoordCache) ReadCoords(structureID string) (map[string]ChainCoordTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tables[structureID]
	if !ok {
		return nil, ErrNotAvailable
	}
	return t, nil
}

func structureFixture(structureID string, coords [3]Coord) StructureData {
	records := make([]AtomRecord, 0, 3)
	for i, c := range coords {
		records = append(records, AtomRecord{
			StructureID: structureID, ChainID: "A", ResidueNumber: i + 1,
			AtomName: "CA", GroupTag: "ATOM", X: c.X, Y: c.Y, Z: c.Z,
		})
	}
	return StructureData{
		CrossRefRows:       []string{"A"},
		DiffAnnotationRows: nil,
		AtomRecords:        records,
	}
}

// TestRunHappyPathThreeIdenticalStructures exercises the full pipeline
// (spec.md §8 scenario S2 shape): three structurally identical
// 3-residue chains should yield std = 1e-4 everywhere and a UMF well
// above 3e4.
func TestRunHappyPathThreeIdenticalStructures(t *testing.T) {
	coords := [3]Coord{{X: 0, Y: 0, Z: 0}, {X: 3.8, Y: 0, Z: 0}, {X: 7.6, Y: 0, Z: 0}}

	crossRefs := []CrossRef{
		{StructureID: "S1", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
		{StructureID: "S2", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
		{StructureID: "S3", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
	}

	source := EnsembleSource{
		Metadata: fakeMetadata{record: MetadataRecord{
			PrimaryID: "REF1",
			Sequence:  []string{"ALA", "GLY", "SER"},
			CrossRefs: crossRefs,
		}},
		Downloader: fakeDownloader{available: map[string]bool{"S1": true, "S2": true, "S3": true}},
		Parser: fakeParser{data: map[string]StructureData{
			"S1": structureFixture("S1", coords),
			"S2": structureFixture("S2", coords),
			"S3": structureFixture("S3", coords),
		}},
	}

	result, err := Run(context.Background(), "REF1", NewConfig(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NumChains != 3 {
		t.Errorf("NumChains = %d, want 3", result.NumChains)
	}
	if result.NumResidues != 3 {
		t.Errorf("NumResidues = %d, want 3", result.NumResidues)
	}
	if result.UMF <= 3e4 {
		t.Errorf("UMF = %v, want > 3e4 for an identical triplicate ensemble", result.UMF)
	}
	if result.Fingerprint == "" {
		t.Errorf("expected a non-empty fingerprint")
	}
}

// TestRunScenarioS5IdentifierRedirect checks spec.md §8 scenario S5:
// the result records the resolved primary ID while using the input
// reference_id as ReferenceID.
func TestRunScenarioS5IdentifierRedirect(t *testing.T) {
	coords := [3]Coord{{X: 0, Y: 0, Z: 0}, {X: 3.8, Y: 0, Z: 0}, {X: 7.6, Y: 0, Z: 0}}
	crossRefs := []CrossRef{
		{StructureID: "S1", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
		{StructureID: "S2", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
		{StructureID: "S3", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
	}
	source := EnsembleSource{
		Metadata: fakeMetadata{record: MetadataRecord{
			PrimaryID: "NEW",
			Sequence:  []string{"ALA", "GLY", "SER"},
			CrossRefs: crossRefs,
		}},
		Downloader: fakeDownloader{available: map[string]bool{"S1": true, "S2": true, "S3": true}},
		Parser: fakeParser{data: map[string]StructureData{
			"S1": structureFixture("S1", coords),
			"S2": structureFixture("S2", coords),
			"S3": structureFixture("S3", coords),
		}},
	}

	result, err := Run(context.Background(), "OLD", NewConfig(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReferenceID != "OLD" {
		t.Errorf("ReferenceID = %q, want %q", result.ReferenceID, "OLD")
	}
	if result.ResolvedID != "NEW" {
		t.Errorf("ResolvedID = %q, want %q", result.ResolvedID, "NEW")
	}
}

// TestRunScenarioS6TooFewStructures checks spec.md §8 scenario S6: a
// single accepted chain fails with TooFewAcceptedStructures and no
// partial output.
func TestRunScenarioS6TooFewStructures(t *testing.T) {
	coords := [3]Coord{{X: 0, Y: 0, Z: 0}, {X: 3.8, Y: 0, Z: 0}, {X: 7.6, Y: 0, Z: 0}}
	crossRefs := []CrossRef{
		{StructureID: "S1", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
	}
	source := EnsembleSource{
		Metadata: fakeMetadata{record: MetadataRecord{
			PrimaryID: "REF1",
			Sequence:  []string{"ALA", "GLY", "SER"},
			CrossRefs: crossRefs,
		}},
		Downloader: fakeDownloader{available: map[string]bool{"S1": true}},
		Parser: fakeParser{data: map[string]StructureData{
			"S1": structureFixture("S1", coords),
		}},
	}

	result, err := Run(context.Background(), "REF1", NewConfig(), source)
	if err == nil {
		t.Fatalf("expected an error, got a result: %+v", result)
	}
	ee, ok := err.(*EngineError)
	if !ok || ee.Kind != ErrTooFewAcceptedStructures {
		t.Fatalf("expected ErrTooFewAcceptedStructures, got %v", err)
	}
}

// TestRunPrefersCoordCacheOverAtomRecords checks that Run consults
// source.CoordCache (spec.md §6's coord_cache_dir collaborator) ahead
// of the parser's AtomRecords: the fixture's atom records describe a
// degenerate (all-zero) chain whose distances would all be zero,
// giving a UMF of 0, but the coord cache supplies the real trace, so
// the run must report a UMF above 3e4 from the cached coordinates.
func TestRunPrefersCoordCacheOverAtomRecords(t *testing.T) {
	cached := [3]Coord{{X: 0, Y: 0, Z: 0}, {X: 3.8, Y: 0, Z: 0}, {X: 7.6, Y: 0, Z: 0}}
	degenerate := [3]Coord{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}

	crossRefs := []CrossRef{
		{StructureID: "S1", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
		{StructureID: "S2", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
		{StructureID: "S3", ChainID: "A", Method: "X-ray diffraction", Begin: 1, End: 3},
	}

	cacheTable := func(coords [3]Coord) map[string]ChainCoordTable {
		table := make(ChainCoordTable, len(coords))
		for i, c := range coords {
			table[i+1] = c
		}
		return map[string]ChainCoordTable{"A": table}
	}

	source := EnsembleSource{
		Metadata: fakeMetadata{record: MetadataRecord{
			PrimaryID: "REF1",
			Sequence:  []string{"ALA", "GLY", "SER"},
			CrossRefs: crossRefs,
		}},
		Downloader: fakeDownloader{available: map[string]bool{"S1": true, "S2": true, "S3": true}},
		Parser: fakeParser{data: map[string]StructureData{
			"S1": structureFixture("S1", degenerate),
			"S2": structureFixture("S2", degenerate),
			"S3": structureFixture("S3", degenerate),
		}},
		CoordCache: fakeCoordCache{tables: map[string]map[string]ChainCoordTable{
			"S1": cacheTable(cached),
			"S2": cacheTable(cached),
			"S3": cacheTable(cached),
		}},
	}

	result, err := Run(context.Background(), "REF1", NewConfig(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UMF <= 3e4 {
		t.Errorf("UMF = %v, want > 3e4 — coord cache trace should have been used, not the degenerate atom records", result.UMF)
	}
}

func TestRunNoStructuresAfterMethodFilter(t *testing.T) {
	source := EnsembleSource{
		Metadata: fakeMetadata{record: MetadataRecord{
			PrimaryID: "REF1",
			Sequence:  []string{"ALA", "GLY", "SER"},
			CrossRefs: []CrossRef{{StructureID: "S1", ChainID: "A", Method: "Solution NMR", Begin: 1, End: 3}},
		}},
	}
	_, err := Run(context.Background(), "REF1", NewConfig(), source)
	ee, ok := err.(*EngineError)
	if !ok || ee.Kind != ErrNoStructures {
		t.Fatalf("expected ErrNoStructures, got %v", err)
	}
}
