package scan

import (
	"fmt"
	"math"

	"github.com/nasa-jpl/golascan/mathx"
)

// SequentialGrid returns the nested loop traversal of starts..stops, the last
// axis varying fastest.  Incrementing an axis past its stop resets it to its
// start and carries into the next slower axis, like an odometer; the scan
// ends when the first axis overflows.
//
// Each axis is counted with an integer digit so accumulated floating point
// error never drops or repeats the final value.  An axis whose start equals
// its stop contributes one value.  A zero step, or a step pointing away from
// the stop, collapses the scan to the single point starts.
func SequentialGrid(starts, stops, steps []float64) ([][]float64, error) {
	n := len(starts)
	if n == 0 || len(stops) != n || len(steps) != n {
		return nil, fmt.Errorf("%w: starts=%d stops=%d steps=%d", ErrAxesMismatch, len(starts), len(stops), len(steps))
	}
	counts := make([]int, n)
	total := 1
	for i := range starts {
		span := stops[i] - starts[i]
		if mathx.IsZero(steps[i]) {
			return single(starts), nil
		}
		if s := mathx.Sign(span); s != 0 && s != mathx.Sign(steps[i]) {
			return single(starts), nil
		}
		counts[i] = int(math.Floor(span/steps[i]+1e-9)) + 1
		total *= counts[i]
	}

	positions := make([][]float64, 0, total)
	digits := make([]int, n)
	for {
		pos := make([]float64, n)
		for i, d := range digits {
			pos[i] = starts[i] + float64(d)*steps[i]
		}
		positions = append(positions, pos)

		i := n - 1
		for ; i >= 0; i-- {
			digits[i]++
			if digits[i] < counts[i] {
				break
			}
			digits[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return positions, nil
}
