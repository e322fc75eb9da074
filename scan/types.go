package scan

import (
	"fmt"
	"sync"

	"github.com/nasa-jpl/golascan/adaptive"
)

// Type is the topology of a scan
type Type string

// Subtype is the algorithm variant within a Type
type Subtype string

const (
	// Scan1D moves a single actuator
	Scan1D Type = "Scan1D"

	// Scan2D moves two actuators over a plane
	Scan2D Type = "Scan2D"

	// Sequential nests one loop per actuator, last actuator fastest
	Sequential Type = "Sequential"

	// Tabular visits an explicit list of positions
	Tabular Type = "Tabular"
)

const (
	// Linear is an ordered, evenly stepped traversal
	Linear Subtype = "Linear"

	// LinearBackToStart returns to the start position after every point
	LinearBackToStart Subtype = "Linear back to start"

	// Random visits the Linear positions in shuffled order
	Random Subtype = "Random"

	// Adaptive selects points during acquisition with an external learner
	Adaptive Subtype = "Adaptive"

	// Spiral is a square spiral from the center outward
	Spiral Subtype = "Spiral"

	// BackAndForth is a serpentine raster
	BackAndForth Subtype = "Back&Forth"
)

// Generator computes the Info of a validated Parameters
type Generator func(p *Parameters) (Info, error)

type key struct {
	t  Type
	st Subtype
}

var (
	regMu      sync.RWMutex
	generators = map[key]Generator{}
	subtypes   = map[Type][]Subtype{}
	types      []Type
)

// Register binds a generator to a (type, subtype) pair.  A new pair is
// appended to the allowed subtypes of t, an existing pair is replaced in place.
func Register(t Type, st Subtype, g Generator) {
	if g == nil {
		panic("scan: Register generator is nil")
	}
	regMu.Lock()
	defer regMu.Unlock()
	k := key{t, st}
	if _, ok := generators[k]; !ok {
		if _, ok := subtypes[t]; !ok {
			types = append(types, t)
		}
		subtypes[t] = append(subtypes[t], st)
	}
	generators[k] = g
}

// Types returns the registered scan types in registration order
func Types() []Type {
	regMu.RLock()
	defer regMu.RUnlock()
	return append([]Type(nil), types...)
}

// AdaptiveDim is the dimension of the learner an Adaptive scan of type t needs.
// Tabular scans are sampled along the curvilinear abscissa of their path.
func AdaptiveDim(t Type) int {
	if t == Scan2D {
		return 2
	}
	return 1
}

// AllowedSubtypes returns the subtypes registered for t.  Adaptive is left
// out when no learner of the needed dimension is available.
func AllowedSubtypes(t Type) []Subtype {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]Subtype, 0, len(subtypes[t]))
	for _, st := range subtypes[t] {
		if st == Adaptive && !adaptive.Available(AdaptiveDim(t)) {
			continue
		}
		out = append(out, st)
	}
	return out
}

// Allowed returns nil if (t, st) is a valid combination
func Allowed(t Type, st Subtype) error {
	regMu.RLock()
	_, typeOK := subtypes[t]
	_, pairOK := generators[key{t, st}]
	regMu.RUnlock()
	if !typeOK {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	if !pairOK {
		return fmt.Errorf("%w: %s/%s", ErrInvalidSubtype, t, st)
	}
	if st == Adaptive && !adaptive.Available(AdaptiveDim(t)) {
		return fmt.Errorf("%w: %s/%s: %w", ErrInvalidSubtype, t, st, ErrAdaptiveUnavailable)
	}
	return nil
}

func lookup(t Type, st Subtype) (Generator, error) {
	if err := Allowed(t, st); err != nil {
		return nil, err
	}
	regMu.RLock()
	defer regMu.RUnlock()
	return generators[key{t, st}], nil
}
