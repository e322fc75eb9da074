package motion

import (
	"fmt"

	"github.com/nasa-jpl/golascan/util"
)

// Limited wraps a Mover and refuses moves that would leave the software
// limits of an axis.  Axes without a limit are not restricted.
type Limited struct {
	Mover

	// Limits contains the software limits per axis
	Limits map[string]util.Limiter
}

// NewLimited returns m restricted to limits
func NewLimited(m Mover, limits map[string]util.Limiter) *Limited {
	return &Limited{Mover: m, Limits: limits}
}

// CheckTarget returns ErrClamped if pos violates the limits of axis
func (l *Limited) CheckTarget(axis string, pos float64) error {
	lim, ok := l.Limits[axis]
	if !ok || lim.Check(pos) {
		return nil
	}
	return fmt.Errorf("%w: %s to %g, limits [%g, %g]", ErrClamped, axis, pos, lim.Min, lim.Max)
}

// MoveAbs moves an axis to an absolute position within its limits
func (l *Limited) MoveAbs(axis string, pos float64) error {
	if err := l.CheckTarget(axis, pos); err != nil {
		return err
	}
	return l.Mover.MoveAbs(axis, pos)
}

// MoveRel moves an axis a relative amount, if the end position is within its limits
func (l *Limited) MoveRel(axis string, delta float64) error {
	if _, ok := l.Limits[axis]; ok {
		pos, err := l.Mover.GetPos(axis)
		if err != nil {
			return err
		}
		if err := l.CheckTarget(axis, pos+delta); err != nil {
			return err
		}
	}
	return l.Mover.MoveRel(axis, delta)
}
