// Package scanner is the stateful configuration facade of the scan engine.
//
// A Scanner holds the user-editable bounds of every scan type independently,
// so switching from a 2D to a 1D scan and back does not lose the 2D bounds.
// Any change rebuilds the scan.Parameters from scratch, recomputes the
// scan.Info and notifies the registered listeners.  Consumers must re-fetch
// the Info after a notification instead of keeping a reference to an old one.
package scanner

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/nasa-jpl/golascan/scan"
)

// Listener is called with the new Info after every successful recomputation
type Listener func(scan.Info)

// ROI is a rectangle in the plane of the first two actuators
type ROI struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type state struct {
	typ       scan.Type
	actuators []string
	s1        Scan1DSettings
	s2        Scan2DSettings
	seq       SequentialSettings
	tab       TabularSettings
	seed      int64
}

func (s state) clone() state {
	s.actuators = append([]string(nil), s.actuators...)
	s.s2 = s.s2.clone()
	s.seq = s.seq.clone()
	s.tab = s.tab.clone()
	return s
}

// Scanner owns the current scan.Parameters and scan.Info.  It is safe for
// concurrent use.
type Scanner struct {
	mu        sync.Mutex
	cfg       Config
	st        state
	params    *scan.Parameters
	info      scan.Info
	estimate  float64
	listeners []Listener

	// gen counts successful recomputations; notified is the last one
	// delivered to the listeners
	gen      uint64
	notifyMu sync.Mutex
	notified uint64
}

// New returns a Scanner initialized from cfg, bound to actuators
func New(cfg Config, actuators []string) (*Scanner, error) {
	s := &Scanner{
		cfg: cfg,
		st: state{
			typ:       cfg.Type,
			actuators: append([]string(nil), actuators...),
			s1:        cfg.Scan1D,
			s2:        cfg.Scan2D.clone(),
			seq:       cfg.Sequential.clone(),
			tab:       cfg.Tabular.clone(),
			seed:      cfg.Seed,
		},
	}
	if s.st.typ == "" {
		s.st.typ = scan.Scan1D
	}
	s.st.seq = syncRows(s.st.seq, s.st.actuators)
	if err := s.recompute(s.st); err != nil {
		return nil, err
	}
	return s, nil
}

// OnScanChanged registers l to be called after every recomputation.  A
// listener may read from the Scanner but must not modify it.  When updates
// race, a listener is never handed an Info older than one it already saw.
func (s *Scanner) OnScanChanged(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// update applies mutate to a copy of the state and recomputes.  The state is
// only replaced if the recomputation succeeds.
func (s *Scanner) update(mutate func(*state) error) error {
	s.mu.Lock()
	next := s.st.clone()
	if err := mutate(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.recompute(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.gen++
	gen := s.gen
	info := s.info
	ls := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if gen <= s.notified {
		return nil
	}
	s.notified = gen
	for _, l := range ls {
		l(info)
	}
	return nil
}

// recompute must be called with mu held (or before s is shared)
func (s *Scanner) recompute(next state) error {
	settings, err := next.settings(s.cfg)
	if err != nil {
		return err
	}
	p, err := scan.NewParameters(settings)
	if err != nil {
		return err
	}
	info, err := p.SetScan()
	if err != nil {
		return err
	}
	s.st = next
	s.params = p
	s.info = info
	s.estimate = p.EvaluateNSteps()
	return nil
}

func (st *state) subtype() scan.Subtype {
	switch st.typ {
	case scan.Scan1D:
		return st.s1.Subtype
	case scan.Scan2D:
		return st.s2.Subtype
	case scan.Tabular:
		return st.tab.Subtype
	}
	return scan.Linear
}

func (st *state) setSubtype(sub scan.Subtype) {
	switch st.typ {
	case scan.Scan1D:
		st.s1.Subtype = sub
	case scan.Scan2D:
		st.s2.Subtype = sub
	case scan.Tabular:
		st.tab.Subtype = sub
	}
}

func (st *state) settings(cfg Config) (scan.Settings, error) {
	out := scan.Settings{
		Type:       st.typ,
		Subtype:    st.subtype(),
		StepsLimit: cfg.StepsLimit,
		Oversteps:  cfg.Oversteps,
	}
	if out.Subtype == "" {
		out.Subtype = scan.Linear
	}
	if st.seed != 0 {
		out.Rand = rand.New(rand.NewSource(st.seed))
	}
	switch st.typ {
	case scan.Scan1D:
		out.Starts = []float64{st.s1.Start}
		out.Stops = []float64{st.s1.Stop}
		out.Steps = []float64{st.s1.Step}
		out.AdaptiveLoss = st.s1.Loss
	case scan.Scan2D:
		if out.Subtype == scan.Spiral {
			if _, err := st.deriveSpiral(); err != nil {
				return out, err
			}
			out.Starts = st.s2.Starts
			out.Steps = st.s2.Steps
			out.Stops = make([]float64, 2)
			out.Rings = make([]int, 2)
			for i := range out.Stops {
				out.Rings[i] = st.s2.Npts[i] / 2
				out.Stops[i] = st.s2.Steps[i] * float64(out.Rings[i])
			}
		} else {
			out.Starts, out.Stops, out.Steps = st.s2.Starts, st.s2.Stops, st.s2.Steps
		}
		out.AdaptiveLoss = st.s2.Loss
	case scan.Sequential:
		for _, r := range st.seq.Rows {
			out.Starts = append(out.Starts, r.Start)
			out.Stops = append(out.Stops, r.Stop)
			out.Steps = append(out.Steps, r.Step)
		}
	case scan.Tabular:
		pos := st.tab.Positions
		if len(st.actuators) > 0 {
			for i, p := range pos {
				if len(p) != len(st.actuators) {
					return out, fmt.Errorf("%w: position %d has %d columns for %d actuators",
						scan.ErrAxesMismatch, i, len(p), len(st.actuators))
				}
			}
		}
		if out.Subtype == scan.Linear && st.tab.CurvilinearStep > 0 {
			pos = scan.ResamplePolyline(pos, st.tab.CurvilinearStep)
		}
		out.Positions = pos
		out.AdaptiveLoss = st.tab.Loss
	}
	return out, nil
}

// deriveSpiral makes the spiral steps and npts positive and returns the
// read-only stops derived from the center, step and number of points.
// The configured Stops are left alone; they belong to the other subtypes.
func (st *state) deriveSpiral() ([]float64, error) {
	s2 := &st.s2
	if len(s2.Starts) != 2 || len(s2.Steps) != 2 || len(s2.Npts) != 2 {
		return nil, fmt.Errorf("%w: spiral needs 2 centers, steps and npts, got %d, %d and %d",
			scan.ErrAxesMismatch, len(s2.Starts), len(s2.Steps), len(s2.Npts))
	}
	stops := make([]float64, 2)
	for i := range s2.Steps {
		s2.Steps[i] = math.Abs(s2.Steps[i])
		if s2.Npts[i] < 0 {
			s2.Npts[i] = -s2.Npts[i]
		}
		stops[i] = s2.Starts[i] + s2.Steps[i]*float64(s2.Npts[i]/2)
	}
	return stops, nil
}

// syncRows returns one sequential row per actuator, in actuator order,
// keeping the bounds of actuators that already had a row
func syncRows(seq SequentialSettings, actuators []string) SequentialSettings {
	if len(actuators) == 0 {
		return seq
	}
	prev := make(map[string]SequentialRow, len(seq.Rows))
	for _, r := range seq.Rows {
		prev[r.Actuator] = r
	}
	rows := make([]SequentialRow, len(actuators))
	for i, a := range actuators {
		r, ok := prev[a]
		if !ok {
			r = SequentialRow{Actuator: a}
		}
		rows[i] = r
	}
	return SequentialSettings{Rows: rows}
}

// ScanType returns the selected type and its subtype
func (s *Scanner) ScanType() (scan.Type, scan.Subtype) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.typ, s.params.Subtype
}

// SetScanType selects the scan type.  An empty subtype keeps the subtype
// last used with t.
func (s *Scanner) SetScanType(t scan.Type, sub scan.Subtype) error {
	if sub != "" {
		if err := scan.Allowed(t, sub); err != nil {
			return err
		}
	}
	return s.update(func(st *state) error {
		st.typ = t
		if sub != "" {
			st.setSubtype(sub)
		}
		return nil
	})
}

// Actuators returns the names of the actuators bound to the scan
func (s *Scanner) Actuators() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.st.actuators...)
}

// SetActuators binds the scan to names.  Sequential rows follow the new list.
func (s *Scanner) SetActuators(names []string) error {
	return s.update(func(st *state) error {
		st.actuators = append([]string(nil), names...)
		st.seq = syncRows(st.seq, st.actuators)
		return nil
	})
}

// Scan1D returns the Scan1D settings
func (s *Scanner) Scan1D() Scan1DSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.s1
}

// SetScan1D replaces the Scan1D settings.  An empty subtype keeps the current one.
func (s *Scanner) SetScan1D(v Scan1DSettings) error {
	return s.update(func(st *state) error {
		if v.Subtype == "" {
			v.Subtype = st.s1.Subtype
		}
		st.s1 = v
		return nil
	})
}

// Scan2D returns the Scan2D settings.  For spirals Stops holds the derived
// stops; the stops configured for the other subtypes are kept aside.
func (s *Scanner) Scan2D() Scan2DSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	if next.s2.Subtype == scan.Spiral {
		if stops, err := next.deriveSpiral(); err == nil {
			next.s2.Stops = stops
		}
	}
	return next.s2
}

// SetScan2D replaces the Scan2D settings.  An empty subtype keeps the
// current one; the Stops of a spiral are ignored and derived instead.
func (s *Scanner) SetScan2D(v Scan2DSettings) error {
	return s.update(func(st *state) error {
		v = v.clone()
		if v.Subtype == "" {
			v.Subtype = st.s2.Subtype
		}
		if len(v.Npts) == 0 {
			v.Npts = append([]int(nil), st.s2.Npts...)
		}
		if v.Subtype == scan.Spiral {
			v.Stops = append([]float64(nil), st.s2.Stops...)
		}
		st.s2 = v
		if v.Subtype == scan.Spiral {
			_, err := st.deriveSpiral()
			return err
		}
		return nil
	})
}

// SpiralStops returns the stops derived from the spiral center, step and npts
func (s *Scanner) SpiralStops() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	stops, err := next.deriveSpiral()
	if err != nil {
		return nil
	}
	return stops
}

// Sequential returns the Sequential settings
func (s *Scanner) Sequential() SequentialSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.seq.clone()
}

// SetSequential replaces the Sequential rows.  Rows without an actuator
// name are named after the bound actuator of the same index.
func (s *Scanner) SetSequential(v SequentialSettings) error {
	return s.update(func(st *state) error {
		v = v.clone()
		for i := range v.Rows {
			if v.Rows[i].Actuator == "" && i < len(st.actuators) {
				v.Rows[i].Actuator = st.actuators[i]
			}
		}
		st.seq = v
		return nil
	})
}

// Tabular returns the Tabular settings
func (s *Scanner) Tabular() TabularSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.tab.clone()
}

// SetTabular replaces the Tabular settings.  An empty subtype keeps the current one.
func (s *Scanner) SetTabular(v TabularSettings) error {
	return s.update(func(st *state) error {
		v = v.clone()
		if v.Subtype == "" {
			v.Subtype = st.tab.Subtype
		}
		st.tab = v
		return nil
	})
}

// SetPositions switches to a Tabular Linear scan over positions, as handed
// over by a point or polyline selector
func (s *Scanner) SetPositions(positions [][]float64) error {
	return s.update(func(st *state) error {
		st.typ = scan.Tabular
		st.tab.Subtype = scan.Linear
		st.tab.CurvilinearStep = 0
		st.tab.Positions = TabularSettings{Positions: positions}.clone().Positions
		return nil
	})
}

// SetROI switches to a Scan2D scan over r.  Spirals are centered on r, other
// subtypes span it with the current steps.
func (s *Scanner) SetROI(r ROI) error {
	return s.update(func(st *state) error {
		st.typ = scan.Scan2D
		if st.s2.Subtype == scan.Spiral {
			st.s2.Starts = []float64{r.X + r.Width/2, r.Y + r.Height/2}
			_, err := st.deriveSpiral()
			return err
		}
		st.s2.Starts = []float64{r.X, r.Y}
		st.s2.Stops = []float64{r.X + r.Width, r.Y + r.Height}
		return nil
	})
}

// SetSeed makes Random scans reproducible.  Zero restores an unseeded shuffle.
func (s *Scanner) SetSeed(seed int64) error {
	return s.update(func(st *state) error {
		st.seed = seed
		return nil
	})
}

// Recompute regenerates the scan with unchanged settings and notifies listeners
func (s *Scanner) Recompute() error {
	return s.update(func(*state) error { return nil })
}

// Parameters returns the current validated parameters
func (s *Scanner) Parameters() *scan.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Info returns the current scan
func (s *Scanner) Info() scan.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// NSteps returns the number of precomputed steps of the current scan
func (s *Scanner) NSteps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.NSteps
}

// Estimate returns the estimated number of steps, reported even when the
// scan was too large to be generated
func (s *Scanner) Estimate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estimate
}

// Naxes returns the number of actuators the current scan moves
func (s *Scanner) Naxes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Naxes()
}

// Overshoot is true when the current scan was not generated because its
// estimated size is over the steps limit
func (s *Scanner) Overshoot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.Empty() && s.params.Subtype != scan.Adaptive
}

// Snapshot is a consistent view of the scan, taken under a single lock
type Snapshot struct {
	// Actuators names the actuator moving each scan axis
	Actuators []string

	Params   *scan.Parameters
	Info     scan.Info
	Estimate float64

	// Overshoot is true when the scan was too large to be generated
	Overshoot bool
}

// Snapshot returns the parameters, info and bound actuators of the same
// configuration, for consumers that need more than one of them
func (s *Scanner) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Actuators: append([]string(nil), s.st.actuators...),
		Params:    s.params,
		Info:      s.info,
		Estimate:  s.estimate,
		Overshoot: s.info.Empty() && s.params.Subtype != scan.Adaptive,
	}
}
