package learner1d_test

import (
	"math"
	"testing"

	"github.com/nasa-jpl/golascan/adaptive"
	"github.com/nasa-jpl/golascan/adaptive/learner1d"
)

func drive(t *testing.T, l adaptive.Learner, f func(float64) float64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		x, ok := l.Ask()
		if !ok {
			t.Fatalf("learner stopped proposing after %d points", i)
		}
		l.Tell(x, f(x[0]))
	}
}

func TestBoundsAskedFirst(t *testing.T) {
	l := learner1d.New(-1, 3, "")
	x, _ := l.Ask()
	if x[0] != -1 {
		t.Errorf("expected first ask at lower bound -1, got %v", x)
	}
	l.Tell(x, 0)
	x, _ = l.Ask()
	if x[0] != 3 {
		t.Errorf("expected second ask at upper bound 3, got %v", x)
	}
}

func TestUniformBisects(t *testing.T) {
	l := learner1d.New(0, 1, learner1d.LossUniform)
	drive(t, l, func(x float64) float64 { return x * x }, 5)
	xs, _ := l.Data()
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(xs) != len(want) {
		t.Fatalf("expected %d points, got %v", len(want), xs)
	}
	for i := range want {
		if xs[i] != want[i] {
			t.Errorf("point %d expected %f got %f", i, want[i], xs[i])
		}
	}
}

func TestDefaultLossConcentratesOnStep(t *testing.T) {
	step := func(x float64) float64 {
		if x > 0.3 {
			return 1
		}
		return 0
	}
	l := learner1d.New(0, 1, learner1d.LossDefault)
	drive(t, l, step, 30)
	xs, _ := l.Data()
	near := 0
	for _, x := range xs {
		if math.Abs(x-0.3) < 0.05 {
			near++
		}
	}
	if near < 5 {
		t.Errorf("expected refinement near the step at 0.3, only %d of %d points within 0.05", near, len(xs))
	}
}

func TestLossDecreases(t *testing.T) {
	l := learner1d.New(0, 10, "")
	if !math.IsInf(l.Loss(), 1) {
		t.Error("expected infinite loss before any point is told")
	}
	drive(t, l, math.Sin, 10)
	first := l.Loss()
	drive(t, l, math.Sin, 40)
	if l.Loss() >= first {
		t.Errorf("expected loss to decrease with more points, %f then %f", first, l.Loss())
	}
	if l.NPoints() != 50 {
		t.Errorf("expected 50 told points, got %d", l.NPoints())
	}
}

func TestRegistered(t *testing.T) {
	if !adaptive.Available(1) {
		t.Fatal("importing learner1d should register dimension 1")
	}
	if _, err := adaptive.New("uniform", []adaptive.Bounds{{0, 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := adaptive.New("curvature", []adaptive.Bounds{{0, 1}}); err == nil {
		t.Error("expected unknown loss to be rejected")
	}
}
