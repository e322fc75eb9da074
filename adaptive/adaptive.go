// Package adaptive defines the narrow interface between the scan engine and
// an incremental, value-driven point sampler.
//
// The scan engine never depends on a concrete sampler.  Implementations
// register themselves by dimension from an init func, in the same way
// database/sql drivers do, and the Adaptive scan subtype is only offered for
// dimensions that have at least one registered learner:
//
//	import _ "github.com/nasa-jpl/golascan/adaptive/learner1d"
package adaptive

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownLoss is returned when a loss name was not registered for a dimension
	ErrUnknownLoss = errors.New("unknown adaptive loss function")

	// ErrNoLearner is returned when no learner is registered for a dimension
	ErrNoLearner = errors.New("no adaptive learner registered for dimension")

	// ErrBadBounds is returned when the bounds do not match the dimension or are empty
	ErrBadBounds = errors.New("adaptive bounds invalid")
)

// Learner is an incremental sampler.  The acquisition loop pulls one point
// with Ask, measures there, and reports the value with Tell.
type Learner interface {
	// Ask returns the next point to sample.  ok is false when the learner
	// has nothing to propose until pending points are told.
	Ask() (x []float64, ok bool)

	// Tell reports the measured value y at x
	Tell(x []float64, y float64)

	// Loss is the largest remaining loss; +Inf until enough points are known
	Loss() float64

	// NPoints is the number of points told so far
	NPoints() int
}

// Bounds holds the [min, max] of one dimension
type Bounds [2]float64

// Factory builds a learner over bounds (one entry per dimension) using the named loss
type Factory func(bounds []Bounds, loss string) (Learner, error)

type entry struct {
	losses  []string
	factory Factory
}

var (
	mu       sync.RWMutex
	registry = map[int]entry{}
)

// Register makes a learner factory available for a dimension.  losses lists
// the loss names the factory understands; the first is the default.
// Registering the same dimension twice replaces the earlier entry.
func Register(dim int, losses []string, f Factory) {
	if f == nil {
		panic("adaptive: Register factory is nil")
	}
	if len(losses) == 0 {
		panic("adaptive: Register needs at least one loss")
	}
	mu.Lock()
	defer mu.Unlock()
	registry[dim] = entry{losses: append([]string(nil), losses...), factory: f}
}

// Available returns true if a learner is registered for dim
func Available(dim int) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[dim]
	return ok
}

// Losses returns the loss names registered for dim, default first
func Losses(dim int) []string {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[dim]
	if !ok {
		return nil
	}
	return append([]string(nil), e.losses...)
}

// ValidLoss returns nil if loss is registered for dim.  An empty loss is valid
// and selects the default.
func ValidLoss(dim int, loss string) error {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[dim]
	if !ok {
		return fmt.Errorf("%w %d", ErrNoLearner, dim)
	}
	if loss == "" {
		return nil
	}
	for _, l := range e.losses {
		if l == loss {
			return nil
		}
	}
	return fmt.Errorf("%w %q for dimension %d", ErrUnknownLoss, loss, dim)
}

// New builds a learner of dimension len(bounds) using the named loss
func New(loss string, bounds []Bounds) (Learner, error) {
	dim := len(bounds)
	if err := ValidLoss(dim, loss); err != nil {
		return nil, err
	}
	for _, b := range bounds {
		if !(b[1] > b[0]) {
			return nil, fmt.Errorf("%w: %v", ErrBadBounds, b)
		}
	}
	mu.RLock()
	e := registry[dim]
	mu.RUnlock()
	if loss == "" {
		loss = e.losses[0]
	}
	return e.factory(bounds, loss)
}
