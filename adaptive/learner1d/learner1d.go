// Package learner1d is a one dimensional adaptive learner that refines the
// interval with the largest loss.  Importing it enables the Adaptive subtype
// for Scan1D and Tabular scans.
package learner1d

import (
	"math"
	"sort"

	"github.com/nasa-jpl/golascan/adaptive"
)

const (
	// LossDefault weighs interval width and value change equally, after normalization
	LossDefault = "default"

	// LossUniform refines the widest interval, ignoring the values
	LossUniform = "uniform"
)

func init() {
	adaptive.Register(1, []string{LossDefault, LossUniform}, func(b []adaptive.Bounds, loss string) (adaptive.Learner, error) {
		return New(b[0][0], b[0][1], loss), nil
	})
}

// Learner refines [Lo, Hi] by bisecting the interval of largest loss
type Learner struct {
	lo, hi  float64
	loss    string
	xs      []float64 // sorted, asked points (told or pending)
	ys      map[float64]float64
	pending map[float64]bool
}

// New returns a learner over [lo, hi]
func New(lo, hi float64, loss string) *Learner {
	if loss == "" {
		loss = LossDefault
	}
	return &Learner{
		lo:      lo,
		hi:      hi,
		loss:    loss,
		ys:      make(map[float64]float64),
		pending: make(map[float64]bool),
	}
}

func (l *Learner) insert(x float64) {
	i := sort.SearchFloat64s(l.xs, x)
	if i < len(l.xs) && l.xs[i] == x {
		return
	}
	l.xs = append(l.xs, 0)
	copy(l.xs[i+1:], l.xs[i:])
	l.xs[i] = x
}

func (l *Learner) has(x float64) bool {
	i := sort.SearchFloat64s(l.xs, x)
	return i < len(l.xs) && l.xs[i] == x
}

func (l *Learner) yRange() float64 {
	first := true
	var ymin, ymax float64
	for _, y := range l.ys {
		if first {
			ymin, ymax = y, y
			first = false
			continue
		}
		ymin = math.Min(ymin, y)
		ymax = math.Max(ymax, y)
	}
	return ymax - ymin
}

// intervalLoss returns the loss of [xs[i], xs[i+1]]
func (l *Learner) intervalLoss(i int, yr float64) float64 {
	a, b := l.xs[i], l.xs[i+1]
	dx := (b - a) / (l.hi - l.lo)
	if l.loss == LossUniform || l.pending[a] || l.pending[b] || yr == 0 {
		return dx
	}
	dy := (l.ys[b] - l.ys[a]) / yr
	return math.Hypot(dx, dy)
}

// Ask returns the bounds first, then the midpoint of the interval of largest
// loss whose ends are both known
func (l *Learner) Ask() ([]float64, bool) {
	for _, x := range []float64{l.lo, l.hi} {
		if !l.has(x) {
			l.insert(x)
			l.pending[x] = true
			return []float64{x}, true
		}
	}
	yr := l.yRange()
	best, bestLoss := -1, -1.
	for i := 0; i < len(l.xs)-1; i++ {
		if l.pending[l.xs[i]] && l.pending[l.xs[i+1]] {
			continue
		}
		loss := l.intervalLoss(i, yr)
		if loss > bestLoss {
			best, bestLoss = i, loss
		}
	}
	if best < 0 {
		return nil, false
	}
	x := (l.xs[best] + l.xs[best+1]) / 2
	if x == l.xs[best] || x == l.xs[best+1] {
		// interval collapsed to float resolution
		return nil, false
	}
	l.insert(x)
	l.pending[x] = true
	return []float64{x}, true
}

// Tell records y at x[0].  Points never asked are accepted as well.
func (l *Learner) Tell(x []float64, y float64) {
	if len(x) == 0 {
		return
	}
	l.insert(x[0])
	delete(l.pending, x[0])
	l.ys[x[0]] = y
}

// Loss returns the largest loss over intervals with both ends told
func (l *Learner) Loss() float64 {
	if len(l.ys) < 2 {
		return math.Inf(1)
	}
	yr := l.yRange()
	worst := 0.
	for i := 0; i < len(l.xs)-1; i++ {
		if l.pending[l.xs[i]] || l.pending[l.xs[i+1]] {
			continue
		}
		worst = math.Max(worst, l.intervalLoss(i, yr))
	}
	return worst
}

// NPoints returns the number of told points
func (l *Learner) NPoints() int {
	return len(l.ys)
}

// Data returns the told points in ascending x
func (l *Learner) Data() (xs, ys []float64) {
	for _, x := range l.xs {
		if y, ok := l.ys[x]; ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}
