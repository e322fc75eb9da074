package scan

import (
	"math"

	"github.com/nasa-jpl/golascan/mathx"
)

func init() {
	Register(Scan1D, Linear, scan1DLinear)
	Register(Scan1D, Adaptive, adaptiveInfo)
	Register(Scan1D, LinearBackToStart, scan1DBackToStart)
	Register(Scan1D, Random, scan1DRandom)

	Register(Scan2D, Spiral, scan2DSpiral)
	Register(Scan2D, Linear, scan2DLinear)
	Register(Scan2D, Adaptive, adaptiveInfo)
	Register(Scan2D, BackAndForth, scan2DBackAndForth)
	Register(Scan2D, Random, scan2DRandom)

	Register(Sequential, Linear, sequentialLinear)

	Register(Tabular, Linear, tabularLinear)
	Register(Tabular, Adaptive, adaptiveInfo)
}

func column(xs []float64) [][]float64 {
	out := make([][]float64, len(xs))
	for i, x := range xs {
		out[i] = []float64{x}
	}
	return out
}

func (p *Parameters) overLimit() bool {
	return p.EvaluateNSteps() > float64(p.StepsLimit)
}

// axis1D returns the linear grid of a 1D scan, or the start alone when the
// axis is degenerate
func (p *Parameters) axis1D() []float64 {
	xs, err := LinspaceStep(p.Starts[0], p.Stops[0], p.Steps[0])
	if err != nil {
		return []float64{p.Starts[0]}
	}
	return xs
}

func scan1DLinear(p *Parameters) (Info, error) {
	if p.overLimit() {
		return EmptyInfo(1), nil
	}
	return InfoFromPositions(column(p.axis1D()))
}

func scan1DBackToStart(p *Parameters) (Info, error) {
	if p.overLimit() {
		return EmptyInfo(1), nil
	}
	xs := p.axis1D()
	out := make([]float64, 0, 2*len(xs))
	for _, x := range xs {
		out = append(out, x, p.Starts[0])
	}
	return InfoFromPositions(column(out))
}

func scan1DRandom(p *Parameters) (Info, error) {
	if p.overLimit() {
		return EmptyInfo(1), nil
	}
	positions := column(p.axis1D())
	shuffle(positions, p.Rand)
	return InfoFromPositions(positions)
}

func adaptiveInfo(p *Parameters) (Info, error) {
	return EmptyInfo(p.Naxes()), nil
}

// over2DLimit applies the per-axis steps limit of 2D scans.  Degenerate
// axes are left to the generators, which reduce them to a single point.
func (p *Parameters) over2DLimit() bool {
	for i := 0; i < 2; i++ {
		if mathx.IsZero(p.Steps[i]) {
			continue
		}
		span := p.Stops[i] - p.Starts[i]
		if p.Subtype == Spiral {
			span = p.Stops[i]
		}
		if math.Abs(span/p.Steps[i]) > float64(p.StepsLimit) {
			return true
		}
	}
	return false
}

func scan2D(p *Parameters, gen func() ([][]float64, error)) (Info, error) {
	if p.over2DLimit() {
		return EmptyInfo(2), nil
	}
	positions, err := gen()
	if err != nil {
		return Info{}, err
	}
	return InfoFromPositions(positions)
}

func scan2DSpiral(p *Parameters) (Info, error) {
	return scan2D(p, func() ([][]float64, error) {
		return SpiralGrid(p.Starts, p.Stops, p.Steps, p.Rings, p.Oversteps)
	})
}

func scan2DLinear(p *Parameters) (Info, error) {
	return scan2D(p, func() ([][]float64, error) {
		return LinearGrid(p.Starts, p.Stops, p.Steps, false, p.Oversteps)
	})
}

func scan2DBackAndForth(p *Parameters) (Info, error) {
	return scan2D(p, func() ([][]float64, error) {
		return LinearGrid(p.Starts, p.Stops, p.Steps, true, p.Oversteps)
	})
}

func scan2DRandom(p *Parameters) (Info, error) {
	return scan2D(p, func() ([][]float64, error) {
		return RandomOrder(p.Starts, p.Stops, p.Steps, p.Oversteps, p.Rand)
	})
}

func sequentialLinear(p *Parameters) (Info, error) {
	if p.overLimit() {
		return EmptyInfo(len(p.Starts)), nil
	}
	positions, err := SequentialGrid(p.Starts, p.Stops, p.Steps)
	if err != nil {
		return Info{}, err
	}
	return InfoFromPositions(positions)
}

func tabularLinear(p *Parameters) (Info, error) {
	return InfoFromPositions(p.Positions)
}
