// Package storage holds the N-D arrays an acquisition fills and writes them
// out as FITS.
package storage

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/nasa-jpl/golascan/scan"
)

var (
	// ErrStep is returned when a step index is outside the scan
	ErrStep = errors.New("step out of range")

	// ErrValues is returned when the number of values does not match the detectors
	ErrValues = errors.New("wrong number of detector values")
)

// Cube holds one N-D array per detector, shaped like the scan's unique
// axis values.  Cells never visited stay NaN.
type Cube struct {
	mu     sync.RWMutex
	info   scan.Info
	names  []string
	data   [][]float64
	filled int
}

// NewCube returns a NaN-filled cube for info with one array per name
func NewCube(info scan.Info, names []string) *Cube {
	size := 1
	for _, s := range info.Shape() {
		size *= s
	}
	if info.Naxes() == 0 {
		size = 0
	}
	data := make([][]float64, len(names))
	for i := range data {
		d := make([]float64, size)
		for j := range d {
			d[j] = math.NaN()
		}
		data[i] = d
	}
	return &Cube{info: info, names: append([]string(nil), names...), data: data}
}

// Info returns the scan the cube is shaped on
func (c *Cube) Info() scan.Info {
	return c.info
}

// Names returns the detector names
func (c *Cube) Names() []string {
	return append([]string(nil), c.names...)
}

// Shape returns the shape of each array
func (c *Cube) Shape() []int {
	return c.info.Shape()
}

// Put stores the detector values measured at step
func (c *Cube) Put(step int, values []float64) error {
	if step < 0 || step >= len(c.info.AxesIndexes) {
		return fmt.Errorf("%w: %d of %d", ErrStep, step, len(c.info.AxesIndexes))
	}
	if len(values) != len(c.names) {
		return fmt.Errorf("%w: got %d, expected %d", ErrValues, len(values), len(c.names))
	}
	flat := c.info.FlatIndex(step)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range values {
		c.data[i][flat] = v
	}
	c.filled++
	return nil
}

// At returns the value of detector det at the N-D index idx
func (c *Cube) At(det int, idx ...int) float64 {
	shape := c.info.Shape()
	flat := 0
	for ax, i := range idx {
		flat = flat*shape[ax] + i
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[det][flat]
}

// Data returns a copy of the flat, row-major array of detector det
func (c *Cube) Data(det int) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]float64(nil), c.data[det]...)
}

// Filled is the number of Put calls so far
func (c *Cube) Filled() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filled
}
