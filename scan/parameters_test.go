package scan_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nasa-jpl/golascan/adaptive"
	_ "github.com/nasa-jpl/golascan/adaptive/learner1d"
	"github.com/nasa-jpl/golascan/scan"
)

func TestAllowedPairs(t *testing.T) {
	ok := []struct {
		t  scan.Type
		st scan.Subtype
	}{
		{scan.Scan1D, scan.Linear},
		{scan.Scan1D, scan.LinearBackToStart},
		{scan.Scan1D, scan.Random},
		{scan.Scan2D, scan.Spiral},
		{scan.Scan2D, scan.Linear},
		{scan.Scan2D, scan.BackAndForth},
		{scan.Scan2D, scan.Random},
		{scan.Sequential, scan.Linear},
		{scan.Tabular, scan.Linear},
	}
	for _, c := range ok {
		if err := scan.Allowed(c.t, c.st); err != nil {
			t.Errorf("%s/%s should be allowed: %v", c.t, c.st, err)
		}
	}
	bad := []struct {
		t  scan.Type
		st scan.Subtype
	}{
		{scan.Sequential, scan.Spiral},
		{scan.Scan1D, scan.Spiral},
		{scan.Tabular, scan.Random},
		{scan.Scan2D, scan.LinearBackToStart},
	}
	for _, c := range bad {
		if err := scan.Allowed(c.t, c.st); !errors.Is(err, scan.ErrInvalidSubtype) {
			t.Errorf("%s/%s: expected ErrInvalidSubtype, got %v", c.t, c.st, err)
		}
	}
	if err := scan.Allowed("Scan3D", scan.Linear); !errors.Is(err, scan.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestAllowedSubtypesOrder(t *testing.T) {
	want := map[scan.Type][]scan.Subtype{
		scan.Scan1D:     {scan.Linear, scan.Adaptive, scan.LinearBackToStart, scan.Random},
		scan.Scan2D:     {scan.Spiral, scan.Linear, scan.BackAndForth, scan.Random},
		scan.Sequential: {scan.Linear},
		scan.Tabular:    {scan.Linear, scan.Adaptive},
	}
	for typ, w := range want {
		if diff := cmp.Diff(w, scan.AllowedSubtypes(typ)); diff != "" {
			t.Errorf("%s subtypes mismatch (-want +got):\n%s", typ, diff)
		}
	}
	if diff := cmp.Diff([]scan.Type{scan.Scan1D, scan.Scan2D, scan.Sequential, scan.Tabular}, scan.Types()); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestAdaptiveNeedsLearner(t *testing.T) {
	// only the 1D learner is linked into this test binary
	if adaptive.Available(2) {
		t.Skip("a 2D learner is registered")
	}
	_, err := scan.NewParameters(scan.Settings{
		Type: scan.Scan2D, Subtype: scan.Adaptive,
		Starts: []float64{0, 0}, Stops: []float64{1, 1},
	})
	if !errors.Is(err, scan.ErrAdaptiveUnavailable) || !errors.Is(err, scan.ErrInvalidSubtype) {
		t.Errorf("expected ErrAdaptiveUnavailable, got %v", err)
	}
	p, err := scan.NewParameters(scan.Settings{
		Type: scan.Scan1D, Subtype: scan.Adaptive,
		Starts: []float64{0}, Stops: []float64{1},
	})
	if err != nil {
		t.Fatal(err)
	}
	info, err := p.SetScan()
	if err != nil {
		t.Fatal(err)
	}
	if !info.Empty() || info.Naxes() != 1 {
		t.Errorf("adaptive scans are computed during acquisition, got %+v", info)
	}
	if p.EvaluateNSteps() != 0 {
		t.Errorf("expected 0 estimated steps for adaptive, got %g", p.EvaluateNSteps())
	}
}

func TestAdaptiveLossValidated(t *testing.T) {
	_, err := scan.NewParameters(scan.Settings{
		Type: scan.Scan1D, Subtype: scan.Adaptive,
		Starts: []float64{0}, Stops: []float64{1}, AdaptiveLoss: "curvature-of-the-moon",
	})
	if !errors.Is(err, adaptive.ErrUnknownLoss) {
		t.Errorf("expected ErrUnknownLoss, got %v", err)
	}
}

func TestNewParametersAxes(t *testing.T) {
	cases := []scan.Settings{
		{Type: scan.Scan1D, Subtype: scan.Linear, Starts: []float64{0, 0}, Stops: []float64{1, 1}, Steps: []float64{1, 1}},
		{Type: scan.Scan2D, Subtype: scan.Linear, Starts: []float64{0}, Stops: []float64{1}, Steps: []float64{1}},
		{Type: scan.Sequential, Subtype: scan.Linear, Starts: []float64{0, 0}, Stops: []float64{1}, Steps: []float64{1, 1}},
		{Type: scan.Sequential, Subtype: scan.Linear},
		{Type: scan.Tabular, Subtype: scan.Linear, Positions: [][]float64{{0, 0}, {1}}},
	}
	for i, s := range cases {
		if _, err := scan.NewParameters(s); !errors.Is(err, scan.ErrAxesMismatch) {
			t.Errorf("case %d: expected ErrAxesMismatch, got %v", i, err)
		}
	}
}

func TestNewParametersCopies(t *testing.T) {
	starts := []float64{0, 0}
	p, err := scan.NewParameters(scan.Settings{
		Type: scan.Scan2D, Subtype: scan.Linear,
		Starts: starts, Stops: []float64{2, 2}, Steps: []float64{1, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	starts[0] = 1
	if p.Starts[0] != 0 {
		t.Error("Parameters shares its Starts with the caller")
	}
}

func TestSetScanDegenerateFailSoft(t *testing.T) {
	for _, st := range []scan.Subtype{scan.Linear, scan.LinearBackToStart, scan.Random} {
		p, err := scan.NewParameters(scan.Settings{
			Type: scan.Scan1D, Subtype: st,
			Starts: []float64{3}, Stops: []float64{3}, Steps: []float64{1},
		})
		if err != nil {
			t.Fatal(err)
		}
		info, err := p.SetScan()
		if err != nil {
			t.Fatal(err)
		}
		if info.NSteps == 0 || info.Positions[0][0] != 3 {
			t.Errorf("%s: expected a scan at the start position, got %+v", st, info.Positions)
		}
	}
	p, _ := scan.NewParameters(scan.Settings{
		Type: scan.Scan2D, Subtype: scan.BackAndForth,
		Starts: []float64{1, 2}, Stops: []float64{5, 5}, Steps: []float64{0, 1},
	})
	info, err := p.SetScan()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]float64{{1, 2}}, info.Positions); diff != "" {
		t.Errorf("expected single point (-want +got):\n%s", diff)
	}
}

func TestSetScanBackToStart(t *testing.T) {
	p, _ := scan.NewParameters(scan.Settings{
		Type: scan.Scan1D, Subtype: scan.LinearBackToStart,
		Starts: []float64{0}, Stops: []float64{2}, Steps: []float64{1},
	})
	info, err := p.SetScan()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{0}, {0}, {1}, {0}, {2}, {0}}
	if diff := cmp.Diff(want, info.Positions); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if p.EvaluateNSteps() != 6 {
		t.Errorf("expected 6 estimated steps, got %g", p.EvaluateNSteps())
	}
}

func TestSetScanStepsLimit(t *testing.T) {
	p, _ := scan.NewParameters(scan.Settings{
		Type: scan.Scan1D, Subtype: scan.Linear,
		Starts: []float64{0}, Stops: []float64{1000}, Steps: []float64{1}, StepsLimit: 100,
	})
	info, err := p.SetScan()
	if err != nil {
		t.Fatal(err)
	}
	if !info.Empty() || info.Naxes() != 1 {
		t.Errorf("expected an empty info over the limit, got %d steps", info.NSteps)
	}

	p, _ = scan.NewParameters(scan.Settings{
		Type: scan.Scan2D, Subtype: scan.Linear,
		Starts: []float64{0, 0}, Stops: []float64{1000, 1}, Steps: []float64{1, 1}, StepsLimit: 100,
	})
	info, _ = p.SetScan()
	if !info.Empty() || info.Naxes() != 2 {
		t.Errorf("expected an empty 2D info over the limit, got %d steps", info.NSteps)
	}
}

func TestEvaluateNStepsUpperBound(t *testing.T) {
	cases := []scan.Settings{
		{Type: scan.Scan1D, Subtype: scan.Linear, Starts: []float64{0}, Stops: []float64{0.3}, Steps: []float64{0.1}},
		{Type: scan.Scan1D, Subtype: scan.Random, Starts: []float64{0}, Stops: []float64{9}, Steps: []float64{2}},
		{Type: scan.Scan2D, Subtype: scan.Linear, Starts: []float64{0, 0}, Stops: []float64{10, 5}, Steps: []float64{2, 0.5}},
		{Type: scan.Scan2D, Subtype: scan.Spiral, Starts: []float64{0, 0}, Stops: []float64{3, 3}, Steps: []float64{1, 1}},
		{Type: scan.Sequential, Subtype: scan.Linear, Starts: []float64{0, 0, 0}, Stops: []float64{1, 2, 0.5}, Steps: []float64{0.5, 1, 0.25}},
		{Type: scan.Tabular, Subtype: scan.Linear, Positions: [][]float64{{0}, {1}, {4}}},
	}
	for _, s := range cases {
		p, err := scan.NewParameters(s)
		if err != nil {
			t.Fatal(err)
		}
		info, err := p.SetScan()
		if err != nil {
			t.Fatal(err)
		}
		if est := p.EvaluateNSteps(); math.Ceil(est) < float64(info.NSteps) {
			t.Errorf("%s/%s: estimate %g undercounts %d steps", s.Type, s.Subtype, est, info.NSteps)
		}
	}
}

func TestSequentialUniqueCounts(t *testing.T) {
	p, _ := scan.NewParameters(scan.Settings{
		Type: scan.Sequential, Subtype: scan.Linear,
		Starts: []float64{0, 0, 0}, Stops: []float64{1, 2, 3}, Steps: []float64{1, 1, 1},
	})
	info, err := p.SetScan()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2, 3, 4}, info.Shape()); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if info.NSteps != 24 {
		t.Errorf("expected 24 steps, got %d", info.NSteps)
	}
}

func TestRandomScanSeeded(t *testing.T) {
	gen := func(seed int64) scan.Info {
		p, err := scan.NewParameters(scan.Settings{
			Type: scan.Scan2D, Subtype: scan.Random,
			Starts: []float64{0, 0}, Stops: []float64{3, 3}, Steps: []float64{1, 1},
			Rand: rand.New(rand.NewSource(seed)),
		})
		if err != nil {
			t.Fatal(err)
		}
		info, err := p.SetScan()
		if err != nil {
			t.Fatal(err)
		}
		return info
	}
	a, b := gen(7), gen(7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed, different scans:\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 4}, a.Shape()); diff != "" {
		t.Errorf("random scan should keep the linear grid (-want +got):\n%s", diff)
	}
}

func TestTabular(t *testing.T) {
	p, err := scan.NewParameters(scan.Settings{
		Type: scan.Tabular, Subtype: scan.Linear,
		Positions: [][]float64{{1, 5}, {-2, 3}, {4, 4}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{-2, 3}, p.Starts); diff != "" {
		t.Errorf("starts should be the per-axis minimum (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{4, 5}, p.Stops); diff != "" {
		t.Errorf("stops should be the per-axis maximum (-want +got):\n%s", diff)
	}
	info, err := p.SetScan()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]float64{{1, 5}, {-2, 3}, {4, 4}}, info.Positions); diff != "" {
		t.Errorf("tabular scans keep the given order (-want +got):\n%s", diff)
	}
	if p.Naxes() != 2 {
		t.Errorf("expected 2 axes, got %d", p.Naxes())
	}
}

func TestTabularEmpty(t *testing.T) {
	_, err := scan.NewParameters(scan.Settings{Type: scan.Tabular, Subtype: scan.Linear})
	if !errors.Is(err, scan.ErrNoPositions) {
		t.Errorf("expected ErrNoPositions, got %v", err)
	}
	_, err = scan.NewParameters(scan.Settings{
		Type: scan.Tabular, Subtype: scan.Adaptive, Positions: [][]float64{{1, 1}},
	})
	if !errors.Is(err, scan.ErrNoPositions) {
		t.Errorf("adaptive tabular needs a path, expected ErrNoPositions, got %v", err)
	}
}

func TestTabularAdaptivePath(t *testing.T) {
	p, err := scan.NewParameters(scan.Settings{
		Type: scan.Tabular, Subtype: scan.Adaptive,
		Positions: [][]float64{{0, 0}, {3, 4}, {3, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.PathLength != 9 {
		t.Errorf("expected path length 9, got %g", p.PathLength)
	}
	if diff := cmp.Diff([]adaptive.Bounds{{0, 9}}, p.AdaptiveBounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
	cases := map[float64][]float64{
		-1:  {0, 0},
		2.5: {1.5, 2},
		7:   {3, 2},
		12:  {3, 0},
	}
	for s, want := range cases {
		if diff := cmp.Diff(want, p.PointAlongPath(s), approx); diff != "" {
			t.Errorf("PointAlongPath(%g) mismatch (-want +got):\n%s", s, diff)
		}
	}
}

func TestAdaptiveBoundsOrdered(t *testing.T) {
	p, err := scan.NewParameters(scan.Settings{
		Type: scan.Scan1D, Subtype: scan.Adaptive,
		Starts: []float64{5}, Stops: []float64{-5},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]adaptive.Bounds{{-5, 5}}, p.AdaptiveBounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}
