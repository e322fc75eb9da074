package scan

import (
	"fmt"
	"sort"

	"github.com/nasa-jpl/golascan/util"
)

// Info is the computed result of a scan.  It is created fresh on every
// computation and never modified afterwards; consumers re-fetch it after a
// change rather than patching it.
type Info struct {
	// NSteps is the number of positions, 0 for scans computed during acquisition
	NSteps int `json:"n_steps"`

	// Positions holds one coordinate per axis for each step, in visiting order
	Positions [][]float64 `json:"positions"`

	// AxesUnique holds, per axis, the sorted distinct values visited
	AxesUnique [][]float64 `json:"axes_unique"`

	// AxesIndexes holds, per step and axis, the index into AxesUnique
	AxesIndexes [][]int `json:"axes_indexes"`
}

// EmptyInfo returns an Info with no steps and naxes empty unique arrays
func EmptyInfo(naxes int) Info {
	unique := make([][]float64, naxes)
	for i := range unique {
		unique[i] = []float64{}
	}
	return Info{
		Positions:   [][]float64{},
		AxesUnique:  unique,
		AxesIndexes: [][]int{},
	}
}

// InfoFromPositions builds an Info from an [N][Naxes] position list.  The
// per-axis unique values are sorted ascending and every position is
// converted to its rank on each axis.  Positions are copied.  Every position
// must have as many coordinates as the first, or ErrAxesMismatch is returned.
func InfoFromPositions(positions [][]float64) (Info, error) {
	if len(positions) == 0 {
		return EmptyInfo(0), nil
	}
	naxes := len(positions[0])
	cp := make([][]float64, len(positions))
	for i, p := range positions {
		if len(p) != naxes {
			return Info{}, fmt.Errorf("%w: position %d has %d coordinates, position 0 has %d",
				ErrAxesMismatch, i, len(p), naxes)
		}
		cp[i] = append([]float64(nil), p...)
	}

	unique := make([][]float64, naxes)
	col := make([]float64, len(cp))
	for ax := 0; ax < naxes; ax++ {
		for i, p := range cp {
			col[i] = p[ax]
		}
		unique[ax] = util.UniqueFloat64(col)
	}

	indexes := make([][]int, len(cp))
	for i, p := range cp {
		row := make([]int, naxes)
		for ax := 0; ax < naxes; ax++ {
			row[ax] = sort.SearchFloat64s(unique[ax], p[ax])
		}
		indexes[i] = row
	}
	return Info{
		NSteps:      len(cp),
		Positions:   cp,
		AxesUnique:  unique,
		AxesIndexes: indexes,
	}, nil
}

// Naxes returns the number of axes of the scan
func (i Info) Naxes() int {
	return len(i.AxesUnique)
}

// Empty is true when the scan has no precomputed steps
func (i Info) Empty() bool {
	return i.NSteps == 0
}

// Shape returns the number of unique values per axis, the shape of the N-D
// array a full acquisition fills
func (i Info) Shape() []int {
	out := make([]int, len(i.AxesUnique))
	for ax, u := range i.AxesUnique {
		out[ax] = len(u)
	}
	return out
}

// FlatIndex returns the row-major offset of step into an array of Shape()
func (i Info) FlatIndex(step int) int {
	idx := i.AxesIndexes[step]
	flat := 0
	for ax, u := range i.AxesUnique {
		flat = flat*len(u) + idx[ax]
	}
	return flat
}

// Position returns a copy of the coordinates of step
func (i Info) Position(step int) []float64 {
	return append([]float64(nil), i.Positions[step]...)
}
