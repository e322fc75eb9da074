package scan

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nasa-jpl/golascan/mathx"
)

// DefaultOversteps is the largest number of positions Linear, RandomOrder
// and Spiral will emit when no other budget is given
const DefaultOversteps = 10000

func degenerate(start, stop, step float64) bool {
	return mathx.IsZero(step) || mathx.Sign(stop-start) != mathx.Sign(step) || start == stop
}

// LinspaceStep returns start, start+step, ... up to and including stop when
// stop lands on the grid (within floating point tolerance).  Unlike a fixed
// count linspace, the step is exact and the count follows from it.
func LinspaceStep(start, stop, step float64) ([]float64, error) {
	if degenerate(start, stop, step) {
		return nil, fmt.Errorf("%w: start=%g stop=%g step=%g", ErrDegenerateAxis, start, stop, step)
	}
	n := int(math.Ceil((stop - start) / step))
	if math.Abs(start+float64(n)*step-stop) < mathx.Tol*math.Max(1, math.Abs(stop)) {
		n++
	}
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

func single(starts []float64) [][]float64 {
	return [][]float64{append([]float64(nil), starts...)}
}

func check2(arrs ...[]float64) error {
	for _, a := range arrs {
		if len(a) != 2 {
			return fmt.Errorf("%w: 2D scans need 2 values per array, got %d", ErrAxesMismatch, len(a))
		}
	}
	return nil
}

// LinearGrid returns a 2D raster over [starts, stops] with steps, the first axis
// being the outer loop.  When backAndForth is true the inner axis is
// traversed in reverse on every odd outer pass.
//
// If any axis is degenerate the scan collapses to the single point starts.
// If the grid would hold more than oversteps points, both steps are enlarged
// by the same factor so the sampled grid keeps its aspect ratio.
func LinearGrid(starts, stops, steps []float64, backAndForth bool, oversteps int) ([][]float64, error) {
	if err := check2(starts, stops, steps); err != nil {
		return nil, err
	}
	for i := range starts {
		if degenerate(starts[i], stops[i], steps[i]) {
			return single(starts), nil
		}
	}
	ax1, _ := LinspaceStep(starts[0], stops[0], steps[0])
	ax2, _ := LinspaceStep(starts[1], stops[1], steps[1])
	if oversteps > 0 && len(ax1)*len(ax2) > oversteps {
		ratio := math.Sqrt(float64(len(ax1)*len(ax2)) / float64(oversteps))
		for {
			ax1, _ = LinspaceStep(starts[0], stops[0], steps[0]*ratio)
			ax2, _ = LinspaceStep(starts[1], stops[1], steps[1]*ratio)
			if len(ax1)*len(ax2) <= oversteps {
				break
			}
			ratio *= 1.01
		}
	}

	positions := make([][]float64, 0, len(ax1)*len(ax2))
	n2 := len(ax2)
	for ix, p1 := range ax1 {
		for iy := range ax2 {
			p2 := ax2[iy]
			if backAndForth && mathx.Odd(ix) {
				p2 = ax2[n2-iy-1]
			}
			positions = append(positions, []float64{p1, p2})
		}
	}
	return positions, nil
}

// RandomOrder returns the positions of Linear (without back and forth) in
// shuffled order.  rng may be nil, in which case the process-wide source is
// used and the order is not reproducible.
func RandomOrder(starts, stops, steps []float64, oversteps int, rng *rand.Rand) ([][]float64, error) {
	positions, err := LinearGrid(starts, stops, steps, false, oversteps)
	if err != nil {
		return nil, err
	}
	shuffle(positions, rng)
	return positions, nil
}

func shuffle(positions [][]float64, rng *rand.Rand) {
	swap := func(i, j int) { positions[i], positions[j] = positions[j], positions[i] }
	if rng == nil {
		rand.Shuffle(len(positions), swap)
		return
	}
	rng.Shuffle(len(positions), swap)
}
