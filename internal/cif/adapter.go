package cif

import (
	"os"
	"strconv"

	"github.com/flexfold/ensemble/internal/ensemble"
)

// StructureParser is the default ensemble.StructureParser
// implementation (SPEC_FULL.md §4.K): it parses an mmCIF file and
// extracts the _struct_ref_seq, _struct_ref_seq_dif and _atom_site
// loops into the cross-reference, diff-annotation and atom-record
// shapes the engine consumes. It is a supplementary, swappable
// default — the engine itself only ever depends on the
// ensemble.StructureParser interface.
type StructureParser struct{}

func (StructureParser) Parse(filePath string) (ensemble.StructureData, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return ensemble.StructureData{}, err
	}
	defer f.Close()

	file, err := NewParser(f).Parse()
	if err != nil {
		return ensemble.StructureData{}, err
	}

	var data ensemble.StructureData
	for _, block := range file.Blocks {
		data.CrossRefRows = append(data.CrossRefRows, crossRefChainIDs(block)...)
		data.DiffAnnotationRows = append(data.DiffAnnotationRows, diffAnnotationRows(block)...)
		data.AtomRecords = append(data.AtomRecords, atomRecords(block)...)
	}
	return data, nil
}

// crossRefChainIDs reads _struct_ref_seq.pdbx_strand_id, with one
// entry per row (duplicates preserved — classify.go treats a repeated
// chain ID as a chimera signal).
func crossRefChainIDs(block Block) []string {
	col, ok := loopColumn(block, "_struct_ref_seq.pdbx_strand_id")
	if !ok {
		return nil
	}
	out := make([]string, len(col))
	for i, v := range col {
		out[i] = toString(v)
	}
	return out
}

// diffAnnotationRows reads _struct_ref_seq_dif's chain/seq_num/db_num/
// details columns into AnnotationRow values.
func diffAnnotationRows(block Block) []ensemble.AnnotationRow {
	chainCol, ok := loopColumn(block, "_struct_ref_seq_dif.pdbx_pdb_strand_id")
	if !ok {
		return nil
	}
	seqCol, _ := loopColumn(block, "_struct_ref_seq_dif.seq_num")
	dbCol, _ := loopColumn(block, "_struct_ref_seq_dif.pdbx_seq_db_seq_num")
	detailCol, _ := loopColumn(block, "_struct_ref_seq_dif.details")

	rows := make([]ensemble.AnnotationRow, len(chainCol))
	for i := range chainCol {
		row := ensemble.AnnotationRow{ChainID: toString(chainCol[i])}
		if n, ok := intAt(seqCol, i); ok {
			row.SeqNum, row.SeqNumKnown = n, true
		}
		if n, ok := intAt(dbCol, i); ok {
			row.DBNum, row.DBNumKnown = n, true
		}
		row.Detail = toString(valueAt(detailCol, i))
		rows[i] = row
	}
	return rows
}

// atomRecords reads _atom_site into AtomRecord, admitting every
// record; the domain-level polymer/alt-loc/atom-name filtering
// happens in ensemble.BuildCoordTable, not here.
func atomRecords(block Block) []ensemble.AtomRecord {
	groupCol, ok := loopColumn(block, "_atom_site.group_PDB")
	if !ok {
		return nil
	}
	chainCol, _ := loopColumn(block, "_atom_site.auth_asym_id")
	atomCol, _ := loopColumn(block, "_atom_site.label_atom_id")
	altCol, _ := loopColumn(block, "_atom_site.label_alt_id")
	resNumCol, _ := loopColumn(block, "_atom_site.auth_seq_id")
	xCol, _ := loopColumn(block, "_atom_site.Cartn_x")
	yCol, _ := loopColumn(block, "_atom_site.Cartn_y")
	zCol, _ := loopColumn(block, "_atom_site.Cartn_z")

	out := make([]ensemble.AtomRecord, len(groupCol))
	for i := range groupCol {
		alt := toString(valueAt(altCol, i))
		if alt == string(Inapplicable) || alt == string(Unknown) {
			alt = ""
		}
		resNum, _ := intAt(resNumCol, i)
		out[i] = ensemble.AtomRecord{
			ChainID:       toString(valueAt(chainCol, i)),
			ResidueNumber: resNum,
			AtomName:      toString(valueAt(atomCol, i)),
			AltCode:       alt,
			GroupTag:      toString(groupCol[i]),
			X:             floatAt(xCol, i),
			Y:             floatAt(yCol, i),
			Z:             floatAt(zCol, i),
		}
	}
	return out
}

func loopColumn(block Block, tag string) ([]any, bool) {
	v, ok := block.DataItems[tag]
	if !ok {
		return nil, false
	}
	col, ok := v.([]any)
	return col, ok
}

func valueAt(col []any, i int) any {
	if i < 0 || i >= len(col) {
		return nil
	}
	return col[i]
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case SpecialValue:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return ""
	}
}

func intAt(col []any, i int) (int, bool) {
	v := valueAt(col, i)
	switch t := v.(type) {
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

func floatAt(col []any, i int) float64 {
	v := valueAt(col, i)
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}
