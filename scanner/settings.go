package scanner

import (
	"github.com/nasa-jpl/golascan/scan"
)

// Scan1DSettings are the user-editable bounds of a Scan1D scan
type Scan1DSettings struct {
	Subtype scan.Subtype `json:"subtype" yaml:"subtype" koanf:"subtype"`
	Start   float64      `json:"start" yaml:"start" koanf:"start"`
	Stop    float64      `json:"stop" yaml:"stop" koanf:"stop"`
	Step    float64      `json:"step" yaml:"step" koanf:"step"`
	Loss    string       `json:"loss" yaml:"loss" koanf:"loss"`
}

// Scan2DSettings are the user-editable bounds of a Scan2D scan.
//
// For Spiral scans Starts is the center, Steps the ring spacing and Npts the
// number of points per axis; Stops is then derived and read-only.
type Scan2DSettings struct {
	Subtype scan.Subtype `json:"subtype" yaml:"subtype" koanf:"subtype"`
	Starts  []float64    `json:"starts" yaml:"starts" koanf:"starts"`
	Stops   []float64    `json:"stops" yaml:"stops" koanf:"stops"`
	Steps   []float64    `json:"steps" yaml:"steps" koanf:"steps"`
	Npts    []int        `json:"npts" yaml:"npts" koanf:"npts"`
	Loss    string       `json:"loss" yaml:"loss" koanf:"loss"`
}

// SequentialRow is the loop of one actuator in a Sequential scan
type SequentialRow struct {
	Actuator string  `json:"actuator" yaml:"actuator" koanf:"actuator"`
	Start    float64 `json:"start" yaml:"start" koanf:"start"`
	Stop     float64 `json:"stop" yaml:"stop" koanf:"stop"`
	Step     float64 `json:"step" yaml:"step" koanf:"step"`
}

// SequentialSettings holds one row per actuator, outermost loop first
type SequentialSettings struct {
	Rows []SequentialRow `json:"rows" yaml:"rows" koanf:"rows"`
}

// TabularSettings are the positions of a Tabular scan.
//
// When CurvilinearStep is positive and the subtype is Linear, Positions are
// treated as the waypoints of a polyline sampled every CurvilinearStep.
type TabularSettings struct {
	Subtype         scan.Subtype `json:"subtype" yaml:"subtype" koanf:"subtype"`
	Positions       [][]float64  `json:"positions" yaml:"positions" koanf:"positions"`
	CurvilinearStep float64      `json:"curvilinear_step" yaml:"curvilinear_step" koanf:"curvilinear_step"`
	Loss            string       `json:"loss" yaml:"loss" koanf:"loss"`
}

// Config is the configuration bag a Scanner is built from
type Config struct {
	// StepsLimit caps the estimated number of steps of a scan
	StepsLimit int `json:"steps_limit" yaml:"steps_limit" koanf:"steps_limit"`

	// Oversteps caps the size of generated 2D grids
	Oversteps int `json:"oversteps" yaml:"oversteps" koanf:"oversteps"`

	// Type is the scan type selected at startup
	Type scan.Type `json:"type" yaml:"type" koanf:"type"`

	// Seed makes Random scans reproducible when nonzero
	Seed int64 `json:"seed" yaml:"seed" koanf:"seed"`

	Scan1D     Scan1DSettings     `json:"scan1d" yaml:"scan1d" koanf:"scan1d"`
	Scan2D     Scan2DSettings     `json:"scan2d" yaml:"scan2d" koanf:"scan2d"`
	Sequential SequentialSettings `json:"sequential" yaml:"sequential" koanf:"sequential"`
	Tabular    TabularSettings    `json:"tabular" yaml:"tabular" koanf:"tabular"`
}

// DefaultConfig returns the bounds a fresh session starts with
func DefaultConfig() Config {
	return Config{
		StepsLimit: scan.DefaultStepsLimit,
		Oversteps:  scan.DefaultOversteps,
		Type:       scan.Scan1D,
		Scan1D: Scan1DSettings{
			Subtype: scan.Linear,
			Start:   0,
			Stop:    1,
			Step:    0.1,
		},
		Scan2D: Scan2DSettings{
			Subtype: scan.Spiral,
			Starts:  []float64{0, 0},
			Stops:   []float64{1, 1},
			Steps:   []float64{0.1, 0.1},
			Npts:    []int{11, 11},
		},
		Sequential: SequentialSettings{Rows: []SequentialRow{}},
		Tabular: TabularSettings{
			Subtype:   scan.Linear,
			Positions: [][]float64{},
		},
	}
}

func (s Scan2DSettings) clone() Scan2DSettings {
	s.Starts = append([]float64(nil), s.Starts...)
	s.Stops = append([]float64(nil), s.Stops...)
	s.Steps = append([]float64(nil), s.Steps...)
	s.Npts = append([]int(nil), s.Npts...)
	return s
}

func (s SequentialSettings) clone() SequentialSettings {
	s.Rows = append([]SequentialRow{}, s.Rows...)
	return s
}

func (s TabularSettings) clone() TabularSettings {
	out := make([][]float64, len(s.Positions))
	for i, p := range s.Positions {
		out[i] = append([]float64(nil), p...)
	}
	s.Positions = out
	return s
}
