// Package detector describes 0D detectors read once per scan step, and a
// simulated detector for tests and demonstrations.
package detector

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
)

// ErrNoPosition is returned by Gaussian when its position func is nil
var ErrNoPosition = errors.New("detector has no position source")

// Detector is a source of one scalar per scan step
type Detector interface {
	// Name identifies the detector, e.g. in storage and HTTP replies
	Name() string

	// Read acquires one value
	Read(ctx context.Context) (float64, error)
}

// PositionFunc returns the current coordinates of the actuators a simulated
// detector responds to
type PositionFunc func() ([]float64, error)

// Gaussian is a simulated detector whose signal is an isotropic Gaussian
// of the actuator positions, plus optional white noise
type Gaussian struct {
	name string

	// Center is the position of the peak
	Center []float64

	// Sigma is the standard deviation of the peak
	Sigma float64

	// Amplitude is the value at the peak
	Amplitude float64

	// Noise is the standard deviation of the additive noise
	Noise float64

	// Position reads the actuators
	Position PositionFunc

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGaussian returns a simulated detector.  seed feeds the noise generator.
func NewGaussian(name string, center []float64, sigma, amplitude float64, pos PositionFunc, seed int64) *Gaussian {
	return &Gaussian{
		name:      name,
		Center:    center,
		Sigma:     sigma,
		Amplitude: amplitude,
		Position:  pos,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Name returns the name of the detector
func (g *Gaussian) Name() string {
	return g.name
}

// Value is the noiseless signal at x.  Missing coordinates count as on-peak.
func (g *Gaussian) Value(x []float64) float64 {
	r2 := 0.
	for i, c := range g.Center {
		if i >= len(x) {
			break
		}
		d := x[i] - c
		r2 += d * d
	}
	if g.Sigma == 0 {
		if r2 == 0 {
			return g.Amplitude
		}
		return 0
	}
	return g.Amplitude * math.Exp(-r2/(2*g.Sigma*g.Sigma))
}

// Read samples the signal at the current actuator positions
func (g *Gaussian) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if g.Position == nil {
		return 0, ErrNoPosition
	}
	x, err := g.Position()
	if err != nil {
		return 0, err
	}
	v := g.Value(x)
	if g.Noise > 0 {
		g.mu.Lock()
		v += g.rng.NormFloat64() * g.Noise
		g.mu.Unlock()
	}
	return v, nil
}
