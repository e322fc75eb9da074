package scan

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nasa-jpl/golascan/adaptive"
	"github.com/nasa-jpl/golascan/mathx"
)

// DefaultStepsLimit is the largest estimated step count a scan may have
// before SetScan refuses to generate it
const DefaultStepsLimit = 10000

// Settings holds the inputs of NewParameters
type Settings struct {
	Type    Type
	Subtype Subtype

	// Starts, Stops, Steps are the per-axis bounds.  For Spiral scans Starts
	// are the center, Stops the radii and Steps the ring spacing.
	Starts []float64
	Stops  []float64
	Steps  []float64

	// Positions is the point list of Tabular scans
	Positions [][]float64

	// Rings optionally overrides the number of spiral rings per axis
	Rings []int

	// AdaptiveLoss names the loss function of Adaptive scans, empty for the default
	AdaptiveLoss string

	// StepsLimit caps the estimated step count, zero for DefaultStepsLimit
	StepsLimit int

	// Oversteps caps generated 2D grids, zero for DefaultOversteps
	Oversteps int

	// Rand seeds Random scans, nil for the process-wide source
	Rand *rand.Rand
}

// Parameters is a validated scan configuration.  It is not modified after
// NewParameters returns; SetScan may be called any number of times.
type Parameters struct {
	Type         Type
	Subtype      Subtype
	Starts       []float64
	Stops        []float64
	Steps        []float64
	Positions    [][]float64
	Rings        []int
	AdaptiveLoss string
	StepsLimit   int
	Oversteps    int
	Rand         *rand.Rand

	// Vectors and PathLength describe the polyline of Tabular Adaptive scans
	Vectors    []Vector
	PathLength float64
}

func copyF(f []float64) []float64 {
	if f == nil {
		return nil
	}
	return append([]float64(nil), f...)
}

// NewParameters validates s and returns the corresponding Parameters.  This
// is the only place a scan configuration is rejected: an unknown type, a
// subtype not allowed for the type, or arrays of the wrong length.
func NewParameters(s Settings) (*Parameters, error) {
	if err := Allowed(s.Type, s.Subtype); err != nil {
		return nil, err
	}
	p := &Parameters{
		Type:         s.Type,
		Subtype:      s.Subtype,
		Starts:       copyF(s.Starts),
		Stops:        copyF(s.Stops),
		Steps:        copyF(s.Steps),
		Rings:        append([]int(nil), s.Rings...),
		AdaptiveLoss: s.AdaptiveLoss,
		StepsLimit:   s.StepsLimit,
		Oversteps:    s.Oversteps,
		Rand:         s.Rand,
	}
	if p.StepsLimit <= 0 {
		p.StepsLimit = DefaultStepsLimit
	}
	if p.Oversteps <= 0 {
		p.Oversteps = DefaultOversteps
	}
	if p.Subtype == Adaptive {
		if err := adaptive.ValidLoss(AdaptiveDim(p.Type), p.AdaptiveLoss); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSubtype, err)
		}
	}

	switch p.Type {
	case Tabular:
		if err := p.setPositions(s.Positions); err != nil {
			return nil, err
		}
	default:
		if err := p.checkBounds(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Parameters) checkBounds() error {
	n := len(p.Starts)
	want := n
	switch p.Type {
	case Scan1D:
		want = 1
	case Scan2D:
		want = 2
	}
	if n == 0 || n != want || len(p.Stops) != n {
		return fmt.Errorf("%w: %s needs %d starts and stops, got %d and %d", ErrAxesMismatch, p.Type, want, n, len(p.Stops))
	}
	if p.Subtype != Adaptive && len(p.Steps) != n {
		return fmt.Errorf("%w: %s needs %d steps, got %d", ErrAxesMismatch, p.Type, n, len(p.Steps))
	}
	if len(p.Rings) != 0 && len(p.Rings) != n {
		return fmt.Errorf("%w: %d ring counts for %d axes", ErrAxesMismatch, len(p.Rings), n)
	}
	return nil
}

func (p *Parameters) setPositions(positions [][]float64) error {
	need := 1
	if p.Subtype == Adaptive {
		need = 2
	}
	if len(positions) < need {
		return fmt.Errorf("%w: %s/%s needs at least %d, got %d", ErrNoPositions, p.Type, p.Subtype, need, len(positions))
	}
	naxes := len(positions[0])
	if naxes == 0 {
		return fmt.Errorf("%w: positions have no axes", ErrAxesMismatch)
	}
	p.Positions = make([][]float64, len(positions))
	p.Starts = make([]float64, naxes)
	p.Stops = make([]float64, naxes)
	for ax := range p.Starts {
		p.Starts[ax] = math.Inf(1)
		p.Stops[ax] = math.Inf(-1)
	}
	for i, pos := range positions {
		if len(pos) != naxes {
			return fmt.Errorf("%w: position %d has %d axes, expected %d", ErrAxesMismatch, i, len(pos), naxes)
		}
		p.Positions[i] = copyF(pos)
		for ax, v := range pos {
			p.Starts[ax] = math.Min(p.Starts[ax], v)
			p.Stops[ax] = math.Max(p.Stops[ax], v)
		}
	}
	if p.Subtype == Adaptive {
		p.Vectors, p.PathLength = Vectors(p.Positions)
		if mathx.IsZero(p.PathLength) {
			return fmt.Errorf("%w: path has zero length", ErrNoPositions)
		}
	}
	return nil
}

// Naxes returns the number of actuators the scan moves
func (p *Parameters) Naxes() int {
	switch p.Type {
	case Scan1D:
		return 1
	case Scan2D:
		return 2
	}
	return len(p.Starts)
}

// SetScan computes a fresh Info from the parameters
func (p *Parameters) SetScan() (Info, error) {
	g, err := lookup(p.Type, p.Subtype)
	if err != nil {
		return Info{}, err
	}
	return g(p)
}

// EvaluateNSteps estimates the number of steps without generating them.
// It never undercounts, so it is safe to gate on: every axis contributes
// |(stop-start)/step|+1 (2|stop/step|+1 for Spiral), a degenerate axis
// contributes 1, and LinearBackToStart doubles the count.  Adaptive scans
// estimate 0 and Tabular scans the length of their position list.
func (p *Parameters) EvaluateNSteps() float64 {
	if p.Subtype == Adaptive {
		return 0
	}
	if p.Type == Tabular {
		return float64(len(p.Positions))
	}
	n := 1.
	for i := range p.Starts {
		if p.Subtype == Spiral {
			switch {
			case len(p.Rings) == len(p.Starts):
				n *= math.Abs(float64(2*p.Rings[i] + 1))
			case mathx.IsZero(p.Steps[i]) || mathx.IsZero(p.Stops[i]):
			default:
				n *= 2*math.Abs(p.Stops[i]/p.Steps[i]) + 1
			}
			continue
		}
		if degenerate(p.Starts[i], p.Stops[i], p.Steps[i]) {
			continue
		}
		n *= math.Abs((p.Stops[i]-p.Starts[i])/p.Steps[i]) + 1
	}
	if p.Subtype == LinearBackToStart {
		n *= 2
	}
	return n
}

// PointAlongPath returns the position at curvilinear abscissa s along the
// tabular path, clamped to [0, PathLength]
func (p *Parameters) PointAlongPath(s float64) []float64 {
	if len(p.Vectors) == 0 {
		if len(p.Positions) > 0 {
			return copyF(p.Positions[0])
		}
		return copyF(p.Starts)
	}
	return pointAlong(p.Vectors, p.PathLength, s)
}

// AdaptiveBounds returns the domain an adaptive learner samples: the
// starts/stops box for Scan1D and Scan2D, [0, PathLength] for Tabular
func (p *Parameters) AdaptiveBounds() []adaptive.Bounds {
	if p.Type == Tabular {
		return []adaptive.Bounds{{0, p.PathLength}}
	}
	out := make([]adaptive.Bounds, len(p.Starts))
	for i := range out {
		lo, hi := p.Starts[i], p.Stops[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		out[i] = adaptive.Bounds{lo, hi}
	}
	return out
}
