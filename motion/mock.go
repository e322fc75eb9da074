package motion

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	mockServoPeriod = time.Millisecond
	floatCmpTol     = 1e-12
)

// MockController is a simulated multi-axis stage.  Axes start enabled and
// homed at zero.  With a zero velocity moves are instantaneous; otherwise
// MoveAbs blocks for the travel time at that velocity.
type MockController struct {
	sync.Mutex
	enabled map[string]bool
	moving  map[string]bool
	stop    map[string]bool
	pos     map[string]float64
	vel     map[string]float64
	faults  int
	moves   int
}

// NewMockController returns a mock controller with the given axes
func NewMockController(axes ...string) *MockController {
	c := &MockController{
		enabled: make(map[string]bool),
		moving:  make(map[string]bool),
		stop:    make(map[string]bool),
		pos:     make(map[string]float64),
		vel:     make(map[string]float64),
	}
	for _, a := range axes {
		c.enabled[a] = true
		c.pos[a] = 0
		c.vel[a] = 0
	}
	return c
}

func (c *MockController) check(axis string) error {
	if _, ok := c.enabled[axis]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownAxis, axis)
	}
	return nil
}

// FailMoves makes the next n moves return ErrNotReady
func (c *MockController) FailMoves(n int) {
	c.Lock()
	defer c.Unlock()
	c.faults = n
}

// Moves returns the number of moves that completed
func (c *MockController) Moves() int {
	c.Lock()
	defer c.Unlock()
	return c.moves
}

// Enable enables an axis
func (c *MockController) Enable(axis string) error {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return err
	}
	c.enabled[axis] = true
	return nil
}

// Disable disables an axis
func (c *MockController) Disable(axis string) error {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return err
	}
	if c.moving[axis] {
		return ErrMoving
	}
	c.enabled[axis] = false
	return nil
}

// GetEnabled returns true if the axis is enabled
func (c *MockController) GetEnabled(axis string) (bool, error) {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return false, err
	}
	return c.enabled[axis], nil
}

// GetPos returns the position of an axis
func (c *MockController) GetPos(axis string) (float64, error) {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return 0, err
	}
	return c.pos[axis], nil
}

// GetVelocity returns the velocity of an axis, 0 for instantaneous moves
func (c *MockController) GetVelocity(axis string) (float64, error) {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return 0, err
	}
	return c.vel[axis], nil
}

// SetVelocity sets the velocity of an axis
func (c *MockController) SetVelocity(axis string, v float64) error {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return err
	}
	if c.moving[axis] {
		return ErrMoving
	}
	c.vel[axis] = math.Abs(v)
	return nil
}

// GetInPosition returns true if the axis is not moving
func (c *MockController) GetInPosition(axis string) (bool, error) {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return false, err
	}
	return !c.moving[axis], nil
}

// Home moves an axis to zero
func (c *MockController) Home(axis string) error {
	return c.MoveAbs(axis, 0)
}

// MoveAbs moves an axis to pos, blocking until the move is over or stopped
func (c *MockController) MoveAbs(axis string, pos float64) error {
	c.Lock()
	if err := c.check(axis); err != nil {
		c.Unlock()
		return err
	}
	if c.faults > 0 {
		c.faults--
		c.Unlock()
		return fmt.Errorf("%w: move of %s to %g", ErrNotReady, axis, pos)
	}
	if !c.enabled[axis] {
		c.Unlock()
		return fmt.Errorf("%w: %s", ErrDisabled, axis)
	}
	if c.moving[axis] {
		c.Unlock()
		return fmt.Errorf("%w: %s", ErrMoving, axis)
	}
	c.moving[axis] = true
	c.stop[axis] = false
	v := c.vel[axis]
	c.Unlock()

	if v > 0 {
		c.travel(axis, pos, v)
	}

	c.Lock()
	defer c.Unlock()
	if !c.stop[axis] {
		c.pos[axis] = pos
		c.moves++
	}
	c.stop[axis] = false
	c.moving[axis] = false
	return nil
}

// travel advances the axis toward pos at v each servo period until it
// converges or is stopped
func (c *MockController) travel(axis string, pos, v float64) {
	tick := time.NewTicker(mockServoPeriod)
	defer tick.Stop()
	step := v * mockServoPeriod.Seconds()
	for range tick.C {
		c.Lock()
		if c.stop[axis] {
			c.Unlock()
			return
		}
		last := c.pos[axis]
		err := pos - last
		if math.Abs(err) <= step+floatCmpTol {
			c.Unlock()
			return
		}
		c.pos[axis] = last + math.Copysign(step, err)
		c.Unlock()
	}
}

// MoveRel moves an axis by dPos
func (c *MockController) MoveRel(axis string, dPos float64) error {
	pos, err := c.GetPos(axis)
	if err != nil {
		return err
	}
	return c.MoveAbs(axis, pos+dPos)
}

// Stop aborts the motion of an axis
func (c *MockController) Stop(axis string) error {
	c.Lock()
	defer c.Unlock()
	if err := c.check(axis); err != nil {
		return err
	}
	if c.moving[axis] {
		c.stop[axis] = true
	}
	return nil
}
