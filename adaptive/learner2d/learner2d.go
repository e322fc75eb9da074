// Package learner2d is a two dimensional adaptive learner that refines a
// quadtree of rectangles.  Importing it enables the Adaptive subtype for
// Scan2D scans.
package learner2d

import (
	"math"

	"github.com/nasa-jpl/golascan/adaptive"
)

const (
	// LossDefault favours large rectangles whose corner values differ most
	LossDefault = "default"

	// LossUniform refines the largest rectangle, ignoring the values
	LossUniform = "uniform"
)

func init() {
	adaptive.Register(2, []string{LossDefault, LossUniform}, func(b []adaptive.Bounds, loss string) (adaptive.Learner, error) {
		return New(b[0], b[1], loss), nil
	})
}

type point [2]float64

type rect struct {
	x0, x1, y0, y1 float64
}

func (r rect) corners() [4]point {
	return [4]point{{r.x0, r.y0}, {r.x1, r.y0}, {r.x0, r.y1}, {r.x1, r.y1}}
}

func (r rect) center() point {
	return point{(r.x0 + r.x1) / 2, (r.y0 + r.y1) / 2}
}

func (r rect) split() [4]rect {
	c := r.center()
	return [4]rect{
		{r.x0, c[0], r.y0, c[1]},
		{c[0], r.x1, r.y0, c[1]},
		{r.x0, c[0], c[1], r.y1},
		{c[0], r.x1, c[1], r.y1},
	}
}

// Learner refines a rectangle by splitting the leaf with the largest loss
// into four quadrants
type Learner struct {
	bx, by  adaptive.Bounds
	loss    string
	leaves  []rect
	values  map[point]float64
	pending map[point]bool
	queue   []point
}

// New returns a learner over bx x by
func New(bx, by adaptive.Bounds, loss string) *Learner {
	if loss == "" {
		loss = LossDefault
	}
	l := &Learner{
		bx:      bx,
		by:      by,
		loss:    loss,
		values:  make(map[point]float64),
		pending: make(map[point]bool),
	}
	root := rect{bx[0], bx[1], by[0], by[1]}
	l.leaves = []rect{root}
	for _, c := range root.corners() {
		l.enqueue(c)
	}
	return l
}

func (l *Learner) known(p point) bool {
	_, ok := l.values[p]
	return ok
}

func (l *Learner) enqueue(p point) {
	if l.known(p) || l.pending[p] {
		return
	}
	for _, q := range l.queue {
		if q == p {
			return
		}
	}
	l.queue = append(l.queue, p)
}

func (l *Learner) area(r rect) float64 {
	return (r.x1 - r.x0) * (r.y1 - r.y0) / ((l.bx[1] - l.bx[0]) * (l.by[1] - l.by[0]))
}

func (l *Learner) valueRange() float64 {
	first := true
	var lo, hi float64
	for _, v := range l.values {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

// rectLoss returns the loss of r, or -1 if any corner is not yet known
func (l *Learner) rectLoss(r rect, vr float64) float64 {
	cs := r.corners()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range cs {
		v, ok := l.values[c]
		if !ok {
			return -1
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	a := l.area(r)
	if l.loss == LossUniform || vr == 0 {
		return a
	}
	spread := (hi - lo) / vr
	return math.Sqrt(a) * (spread + math.Sqrt(a))
}

// Ask returns the next queued point, splitting the worst leaf when the queue is empty
func (l *Learner) Ask() ([]float64, bool) {
	if len(l.queue) == 0 {
		vr := l.valueRange()
		best, bestLoss := -1, -1.
		for i, r := range l.leaves {
			loss := l.rectLoss(r, vr)
			if loss > bestLoss {
				best, bestLoss = i, loss
			}
		}
		if best < 0 || bestLoss < 0 {
			return nil, false
		}
		r := l.leaves[best]
		c := r.center()
		if c[0] == r.x0 || c[1] == r.y0 {
			return nil, false
		}
		quads := r.split()
		l.leaves = append(l.leaves[:best], l.leaves[best+1:]...)
		l.leaves = append(l.leaves, quads[:]...)
		for _, q := range quads {
			for _, p := range q.corners() {
				l.enqueue(p)
			}
		}
		if len(l.queue) == 0 {
			return nil, false
		}
	}
	p := l.queue[0]
	l.queue = l.queue[1:]
	l.pending[p] = true
	return []float64{p[0], p[1]}, true
}

// Tell records the value v at x
func (l *Learner) Tell(x []float64, v float64) {
	if len(x) < 2 {
		return
	}
	p := point{x[0], x[1]}
	delete(l.pending, p)
	l.values[p] = v
}

// Loss returns the largest loss over leaves with all corners known
func (l *Learner) Loss() float64 {
	if len(l.values) < 4 {
		return math.Inf(1)
	}
	vr := l.valueRange()
	worst := 0.
	for _, r := range l.leaves {
		worst = math.Max(worst, l.rectLoss(r, vr))
	}
	return worst
}

// NPoints returns the number of told points
func (l *Learner) NPoints() int {
	return len(l.values)
}

// Data returns the told points and their values in no particular order
func (l *Learner) Data() (xs [][]float64, vs []float64) {
	for p, v := range l.values {
		xs = append(xs, []float64{p[0], p[1]})
		vs = append(vs, v)
	}
	return xs, vs
}
