// Package acquire walks the actuators through a scan and reads the
// detectors at every step.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nasa-jpl/golascan/adaptive"
	"github.com/nasa-jpl/golascan/detector"
	"github.com/nasa-jpl/golascan/motion"
	"github.com/nasa-jpl/golascan/scan"
	"github.com/nasa-jpl/golascan/storage"
)

var (
	// ErrNoActuator is returned when a sequencer has no actuators, or fewer than the scan has axes
	ErrNoActuator = errors.New("no actuator for scan axis")

	// ErrNoDetector is returned when a sequencer has no detectors
	ErrNoDetector = errors.New("no detector configured")

	// ErrBusy is returned when an acquisition is started while another runs
	ErrBusy = errors.New("acquisition already running")
)

// Actuator binds a scan axis to one axis of a motion controller
type Actuator struct {
	// Name is the actuator name the scanner knows
	Name string

	// Axis is the axis of the controller
	Axis string

	// Mover is the controller
	Mover motion.Mover
}

// Config holds the timing and stopping parameters of an acquisition
type Config struct {
	// SettleTime is waited after each move, before the detectors are read
	SettleTime time.Duration

	// MaxRate caps the number of steps per second, zero for no limit
	MaxRate float64

	// MoveTimeout bounds the time spent retrying a failed move
	MoveTimeout time.Duration

	// AdaptiveMaxPoints stops adaptive scans after this many points
	AdaptiveMaxPoints int

	// AdaptiveLossGoal stops adaptive scans once the learner loss drops below it
	AdaptiveLossGoal float64
}

// Progress is reported after each step
type Progress struct {
	// Step is the zero-based index of the step just completed
	Step int `json:"step"`

	// Total is the number of steps, 0 for adaptive scans
	Total int `json:"total"`

	// Position is where the detectors were read
	Position []float64 `json:"position"`

	// Values holds one reading per detector
	Values []float64 `json:"values"`
}

// ProgressFunc receives progress reports.  It is called from the goroutine
// running the acquisition and must not block.
type ProgressFunc func(Progress)

// Result is the outcome of an acquisition
type Result struct {
	// Info describes the visited positions.  For adaptive scans it is built
	// from the points the learner chose.
	Info scan.Info

	// Cube holds the readings, one array per detector
	Cube *storage.Cube

	// Actuators names the actuator that moved each scan axis
	Actuators []string

	// Positions and Values list every step in the order it was taken
	Positions [][]float64
	Values    [][]float64
}

// Sequencer performs acquisitions
type Sequencer struct {
	cfg       Config
	actuators []Actuator
	detectors []detector.Detector
	log       *log.Logger
}

// New returns a sequencer.  logger may be nil, in which case log.Default is used.
func New(cfg Config, actuators []Actuator, detectors []detector.Detector, logger *log.Logger) (*Sequencer, error) {
	if len(actuators) == 0 {
		return nil, ErrNoActuator
	}
	if len(detectors) == 0 {
		return nil, ErrNoDetector
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MoveTimeout <= 0 {
		cfg.MoveTimeout = 5 * time.Second
	}
	return &Sequencer{cfg: cfg, actuators: actuators, detectors: detectors, log: logger}, nil
}

// Names returns the detector names, in the order their values are reported
func (s *Sequencer) Names() []string {
	out := make([]string, len(s.detectors))
	for i, d := range s.detectors {
		out[i] = d.Name()
	}
	return out
}

func actuatorNames(acts []Actuator) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.Name
	}
	return out
}

// bind returns the actuators moving the first naxes scan axes.  Axis i is
// driven by the actuator named names[i]; nil names binds the axes to the
// actuators in the order the sequencer was given them.
func (s *Sequencer) bind(names []string, naxes int) ([]Actuator, error) {
	if names == nil {
		if naxes > len(s.actuators) {
			return nil, fmt.Errorf("%w: scan has %d axes, %d actuators", ErrNoActuator, naxes, len(s.actuators))
		}
		return s.actuators[:naxes], nil
	}
	if naxes > len(names) {
		return nil, fmt.Errorf("%w: scan has %d axes, %d bound actuators", ErrNoActuator, naxes, len(names))
	}
	out := make([]Actuator, naxes)
	for i, name := range names[:naxes] {
		found := false
		for _, a := range s.actuators {
			if a.Name == name {
				out[i], found = a, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrNoActuator, name)
		}
	}
	return out, nil
}

// Run acquires the scan, moving axis i of the scan with the actuator named
// names[i].  info must have been computed from params, unless params is
// Adaptive, in which case info is ignored.  When ctx is cancelled the steps
// taken so far are returned alongside ctx.Err().
func (s *Sequencer) Run(ctx context.Context, names []string, params *scan.Parameters, info scan.Info, progress ProgressFunc) (*Result, error) {
	bound, err := s.bind(names, params.Naxes())
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(Progress) {}
	}
	limit := rate.Inf
	if s.cfg.MaxRate > 0 {
		limit = rate.Limit(s.cfg.MaxRate)
	}
	lim := rate.NewLimiter(limit, 1)
	if params.Subtype == scan.Adaptive {
		return s.runAdaptive(ctx, bound, params, lim, progress)
	}

	res := &Result{Info: info, Cube: storage.NewCube(info, s.Names()), Actuators: actuatorNames(bound)}
	for i, pos := range info.Positions {
		vals, err := s.step(ctx, bound, lim, pos)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", i, err)
		}
		if err = res.Cube.Put(i, vals); err != nil {
			return res, err
		}
		res.Positions = append(res.Positions, append([]float64(nil), pos...))
		res.Values = append(res.Values, vals)
		progress(Progress{Step: i, Total: info.NSteps, Position: pos, Values: vals})
	}
	return res, nil
}

func (s *Sequencer) runAdaptive(ctx context.Context, bound []Actuator, params *scan.Parameters, lim *rate.Limiter, progress ProgressFunc) (*Result, error) {
	learner, err := adaptive.New(params.AdaptiveLoss, params.AdaptiveBounds())
	if err != nil {
		return nil, err
	}
	res := &Result{Actuators: actuatorNames(bound)}
	maxPts := s.cfg.AdaptiveMaxPoints
	var runErr error
	for i := 0; maxPts <= 0 || i < maxPts; i++ {
		if s.cfg.AdaptiveLossGoal > 0 && learner.Loss() < s.cfg.AdaptiveLossGoal {
			break
		}
		x, ok := learner.Ask()
		if !ok {
			break
		}
		pos := x
		if params.Type == scan.Tabular {
			pos = params.PointAlongPath(x[0])
		}
		vals, err := s.step(ctx, bound, lim, pos)
		if err != nil {
			runErr = fmt.Errorf("adaptive point %d: %w", i, err)
			break
		}
		learner.Tell(x, vals[0])
		res.Positions = append(res.Positions, append([]float64(nil), pos...))
		res.Values = append(res.Values, vals)
		progress(Progress{Step: i, Position: pos, Values: vals})
	}

	info, err := scan.InfoFromPositions(res.Positions)
	if err != nil {
		return res, err
	}
	res.Info = info
	res.Cube = storage.NewCube(res.Info, s.Names())
	for i, v := range res.Values {
		if err := res.Cube.Put(i, v); err != nil {
			return res, err
		}
	}
	return res, runErr
}

// step moves bound[i] to pos[i], waits the settle time and reads every detector
func (s *Sequencer) step(ctx context.Context, bound []Actuator, lim *rate.Limiter, pos []float64) ([]float64, error) {
	if err := lim.Wait(ctx); err != nil {
		return nil, err
	}
	if len(pos) > len(bound) {
		return nil, fmt.Errorf("%w: position has %d axes, %d actuators", ErrNoActuator, len(pos), len(bound))
	}
	for i, v := range pos {
		if err := s.move(ctx, bound[i], v); err != nil {
			return nil, err
		}
	}
	if s.cfg.SettleTime > 0 {
		t := time.NewTimer(s.cfg.SettleTime)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return s.read(ctx)
}

// move retries failed moves with an exponential backoff bounded by
// MoveTimeout.  Limit violations, unknown axes and requests a remote
// controller rejected are not retried.
func (s *Sequencer) move(ctx context.Context, a Actuator, pos float64) error {
	var permErr error
	attempt := 0
	op := func() error {
		attempt++
		err := a.Mover.MoveAbs(a.Axis, pos)
		if err == nil {
			return nil
		}
		if errors.Is(err, motion.ErrClamped) || errors.Is(err, motion.ErrUnknownAxis) || errors.Is(err, motion.ErrRejected) {
			permErr = err
			return nil
		}
		s.log.Printf("move %s to %g failed (attempt %d): %v", a.Name, pos, attempt, err)
		return err
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     10 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         500 * time.Millisecond,
		MaxElapsedTime:      s.cfg.MoveTimeout,
		Clock:               backoff.SystemClock}
	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("move %s: %w", a.Name, err)
	}
	if permErr != nil {
		return fmt.Errorf("move %s: %w", a.Name, permErr)
	}
	return nil
}

// read queries every detector concurrently
func (s *Sequencer) read(ctx context.Context) ([]float64, error) {
	vals := make([]float64, len(s.detectors))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range s.detectors {
		i, d := i, d
		g.Go(func() error {
			v, err := d.Read(gctx)
			if err != nil {
				return fmt.Errorf("read %s: %w", d.Name(), err)
			}
			vals[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vals, nil
}

// PositionOf returns a func reading the current position of every actuator,
// suitable for simulated detectors
func PositionOf(actuators []Actuator) detector.PositionFunc {
	return func() ([]float64, error) {
		out := make([]float64, len(actuators))
		for i, a := range actuators {
			p, err := a.Mover.GetPos(a.Axis)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	}
}
