package scan

import (
	"fmt"
	"math"

	"github.com/nasa-jpl/golascan/mathx"
)

// rings returns the number of whole rsteps that fit in rmax.  A small
// tolerance keeps 0.3/0.1 from truncating to 2.
func rings(rmax, rstep float64) int {
	return int(math.Floor(math.Abs(rmax/rstep) + 1e-9))
}

// SpiralGrid returns a square spiral centered on starts.  The spiral is built
// on integer indexes with runs of length 1, 1, 2, 2, 3, 3, ... alternating
// between the first and second axis, moving +1 on odd iterations and -1 on
// even ones, until the full (2N+1)^2 square is covered.  Positions are then
// index*rstep + start.
//
// N is trunc(rmax/rstep) on each axis unless nsteps overrides it, and must
// be the same on both axes.  N is reduced until the square fits in oversteps.
// A zero rmax or rstep collapses the scan to the single point starts.
func SpiralGrid(starts, rmaxs, rsteps []float64, nsteps []int, oversteps int) ([][]float64, error) {
	if err := check2(starts, rmaxs, rsteps); err != nil {
		return nil, err
	}
	for i := range starts {
		if rmaxs[i] == 0 || mathx.IsZero(rmaxs[i]) || mathx.IsZero(rsteps[i]) {
			return single(starts), nil
		}
	}
	var nlin [2]int
	if len(nsteps) == 2 {
		for i, n := range nsteps {
			if n < 0 {
				n = -n
			}
			nlin[i] = n
		}
	} else {
		for i := range nlin {
			nlin[i] = rings(rmaxs[i], rsteps[i])
		}
	}
	if nlin[0] != nlin[1] {
		return nil, fmt.Errorf("%w: %d != %d", ErrSpiralAxisMismatch, nlin[0], nlin[1])
	}
	n := nlin[0]
	if oversteps > 0 {
		for n > 0 && (2*n+1)*(2*n+1) > oversteps {
			n--
		}
	}
	total := (2*n + 1) * (2*n + 1)

	idx1 := make([]int, 1, mathx.Greater2n(total))
	idx2 := make([]int, 1, mathx.Greater2n(total))
	for ind := 0; len(idx1) < total; ind++ {
		step := -1
		if mathx.Odd(ind) {
			step = 1
		}
		for k := 0; k < ind && len(idx1) < total; k++ {
			idx1 = append(idx1, idx1[len(idx1)-1]+step)
			idx2 = append(idx2, idx2[len(idx2)-1])
		}
		for k := 0; k < ind && len(idx1) < total; k++ {
			idx1 = append(idx1, idx1[len(idx1)-1])
			idx2 = append(idx2, idx2[len(idx2)-1]+step)
		}
	}

	positions := make([][]float64, len(idx1))
	for i := range idx1 {
		positions[i] = []float64{
			float64(idx1[i])*rsteps[0] + starts[0],
			float64(idx2[i])*rsteps[1] + starts[1],
		}
	}
	return positions, nil
}
