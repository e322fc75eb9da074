// Package config holds the layered configuration of golascan.
//
// Values are resolved in order: compiled-in defaults, the YAML file, then
// environment variables prefixed with GOLASCAN_.  A double underscore in an
// environment variable separates levels, so GOLASCAN_SCAN__STEPS_LIMIT sets
// scan.steps_limit.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	yml "gopkg.in/yaml.v2"

	"github.com/nasa-jpl/golascan/scanner"
	"github.com/nasa-jpl/golascan/util"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "GOLASCAN_"

// Stage describes a motion controller and the axes it exposes as actuators
type Stage struct {
	// Name is used in log messages
	Name string `yaml:"name" koanf:"name"`

	// Endpoint is the route prefix the stage is served under, e.g. /stage
	Endpoint string `yaml:"endpoint" koanf:"endpoint"`

	// Type is "mock" for a simulated controller or "remote" for a
	// HTTP motion server reachable at Addr, such as a stage served by golascan
	Type string `yaml:"type" koanf:"type"`

	// Addr is the base URL of a remote stage, e.g. http://192.168.100.43:8000/xps
	Addr string `yaml:"addr" koanf:"addr"`

	// Axes are the axis names of the controller.  Each axis is an actuator
	// the scanner can bind to; names must be unique across stages.
	Axes []string `yaml:"axes" koanf:"axes"`

	// Limits are the software travel limits per axis
	Limits map[string]util.Limiter `yaml:"limits" koanf:"limits"`
}

// Detector describes a simulated 0D detector
type Detector struct {
	Name      string    `yaml:"name" koanf:"name"`
	Center    []float64 `yaml:"center" koanf:"center"`
	Sigma     float64   `yaml:"sigma" koanf:"sigma"`
	Amplitude float64   `yaml:"amplitude" koanf:"amplitude"`
	Noise     float64   `yaml:"noise" koanf:"noise"`
}

// Acquisition holds the pacing and stopping rules of the sequencer
type Acquisition struct {
	// SettleSeconds is the wait between the end of a move and the detector reads
	SettleSeconds float64 `yaml:"settle_seconds" koanf:"settle_seconds"`

	// MaxRate caps the number of steps per second, 0 for no cap
	MaxRate float64 `yaml:"max_rate" koanf:"max_rate"`

	// MoveRetrySeconds bounds the time spent retrying a failed move
	MoveRetrySeconds float64 `yaml:"move_retry_seconds" koanf:"move_retry_seconds"`

	// AdaptiveMaxPoints ends adaptive scans after this many points
	AdaptiveMaxPoints int `yaml:"adaptive_max_points" koanf:"adaptive_max_points"`

	// AdaptiveLossGoal ends adaptive scans once the learner loss drops below it
	AdaptiveLossGoal float64 `yaml:"adaptive_loss_goal" koanf:"adaptive_loss_goal"`

	// Output is the FITS file written by the acquire command
	Output string `yaml:"output" koanf:"output"`
}

// Config is the root configuration
type Config struct {
	// Addr is the address the HTTP server listens at
	Addr string `yaml:"addr" koanf:"addr"`

	// Mock replaces every stage with a simulated controller
	Mock bool `yaml:"mock" koanf:"mock"`

	Scan        scanner.Config `yaml:"scan" koanf:"scan"`
	Stages      []Stage        `yaml:"stages" koanf:"stages"`
	Detectors   []Detector     `yaml:"detectors" koanf:"detectors"`
	Acquisition Acquisition    `yaml:"acquisition" koanf:"acquisition"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Addr: ":8000",
		Mock: true,
		Scan: scanner.DefaultConfig(),
		Stages: []Stage{{
			Name:     "stage",
			Endpoint: "/stage",
			Type:     "mock",
			Axes:     []string{"x", "y"},
			Limits: map[string]util.Limiter{
				"x": {Min: -25, Max: 25},
				"y": {Min: -25, Max: 25},
			},
		}},
		Detectors: []Detector{{
			Name:      "photodiode",
			Center:    []float64{0.5, 0.5},
			Sigma:     0.2,
			Amplitude: 1,
		}},
		Acquisition: Acquisition{
			MoveRetrySeconds:  5,
			AdaptiveMaxPoints: 200,
			AdaptiveLossGoal:  0.01,
			Output:            "scan.fits",
		},
	}
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "__", ".", -1)
}

// Load resolves the configuration from the defaults, the YAML file at path,
// and the environment.  A missing file is not an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("error loading config %s: %w", path, err)
			}
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, err
	}
	c := Config{}
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Write encodes c as YAML to w
func Write(w io.Writer, c Config) error {
	return yml.NewEncoder(w).Encode(c)
}

// Actuators returns every stage axis, in configuration order
func (c Config) Actuators() []string {
	var out []string
	for _, s := range c.Stages {
		out = append(out, s.Axes...)
	}
	return out
}
