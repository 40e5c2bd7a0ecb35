// Package coordcache reads the on-disk, read-only α-carbon coordinate
// cache (spec.md §6's coord_cache_dir collaborator): one CSV per
// structure, column-name pattern matched in priority order, grounded
// on sequence.py:_load_coord_table and the teacher's
// rbs_calculator/csv_helper.go directory-walking conventions.
package coordcache

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/flexfold/ensemble/internal/ensemble"
)

var csvSuffix = regexp.MustCompile(`\.csv$`)

// columnNamePriority lists the (x,y,z) column name triples tried in
// order, the first fully-present triple wins, mirroring
// sequence.py:_load_coord_table's fallback chain.
var columnNamePriority = [][3]string{
	{"Cartn_x", "Cartn_y", "Cartn_z"},
	{"x", "y", "z"},
	{"X", "Y", "Z"},
	{"coord_x", "coord_y", "coord_z"},
}

// Dir is a read-only handle on one coordinate-cache directory. The
// engine never writes here; this type only implements
// ensemble.CoordCacheReader's read path.
type Dir struct {
	Path string
}

// ReadCoords reads the <structureID>.csv file in the cache directory
// and returns one ChainCoordTable per chain ID found in it.
func (d Dir) ReadCoords(structureID string) (map[string]ensemble.ChainCoordTable, error) {
	path, err := d.findFile(structureID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	idx := columnIndexes(header)

	tables := make(map[string]ensemble.ChainCoordTable)
	for {
		row, rerr := r.Read()
		if rerr != nil {
			break
		}
		chainID := valueAt(row, idx.chain)
		resNum, ok := atoiAt(row, idx.residueNumber)
		if !ok {
			continue
		}
		if valueAt(row, idx.atomName) != "" && valueAt(row, idx.atomName) != "CA" {
			continue
		}
		if idx.groupTag >= 0 && valueAt(row, idx.groupTag) != "" && valueAt(row, idx.groupTag) != "ATOM" {
			continue
		}
		x, xok := floatAt(row, idx.x)
		y, yok := floatAt(row, idx.y)
		z, zok := floatAt(row, idx.z)
		if !xok || !yok || !zok {
			continue
		}
		table, ok := tables[chainID]
		if !ok {
			table = make(ensemble.ChainCoordTable)
			tables[chainID] = table
		}
		table[resNum] = ensemble.Coord{X: x, Y: y, Z: z}
	}
	return tables, nil
}

func (d Dir) findFile(structureID string) (string, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() || !csvSuffix.MatchString(e.Name()) {
			continue
		}
		if strings.EqualFold(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())), structureID) {
			return filepath.Join(d.Path, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}

type columnIndex struct {
	chain, residueNumber, atomName, altCode, groupTag, x, y, z int
}

func columnIndexes(header []string) columnIndex {
	find := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(h, name) {
				return i
			}
		}
		return -1
	}

	idx := columnIndex{
		chain:         find("chain_id"),
		residueNumber: find("residue_number"),
		atomName:      find("atom_name"),
		altCode:       find("alt_code"),
		groupTag:      find("group_tag"),
		x:             -1, y: -1, z: -1,
	}

	for _, triple := range columnNamePriority {
		xi, yi, zi := find(triple[0]), find(triple[1]), find(triple[2])
		if xi >= 0 && yi >= 0 && zi >= 0 {
			idx.x, idx.y, idx.z = xi, yi, zi
			break
		}
	}
	if idx.x < 0 {
		log.Printf("flexfold: coordcache: no recognized (x,y,z) columns in header %v, falling back to the first three columns", header)
		idx.x, idx.y, idx.z = 0, 1, 2
	}
	return idx
}

func valueAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func atoiAt(row []string, i int) (int, bool) {
	v := valueAt(row, i)
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return n, err == nil
}

func floatAt(row []string, i int) (float64, bool) {
	v := valueAt(row, i)
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f, err == nil
}
