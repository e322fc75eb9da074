package scan_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nasa-jpl/golascan/scan"
)

func TestInfoIndexRoundTrip(t *testing.T) {
	pos, err := scan.SpiralGrid([]float64{1, -1}, []float64{0.6, 0.6}, []float64{0.2, 0.2}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	info, err := scan.InfoFromPositions(pos)
	if err != nil {
		t.Fatal(err)
	}
	if info.NSteps != len(pos) {
		t.Fatalf("expected NSteps %d, got %d", len(pos), info.NSteps)
	}
	for i := 0; i < info.NSteps; i++ {
		for ax := 0; ax < info.Naxes(); ax++ {
			got := info.AxesUnique[ax][info.AxesIndexes[i][ax]]
			if got != info.Positions[i][ax] {
				t.Errorf("step %d axis %d: unique[%d] = %g, position = %g",
					i, ax, info.AxesIndexes[i][ax], got, info.Positions[i][ax])
			}
		}
	}
}

func TestInfoUniqueSorted(t *testing.T) {
	info, err := scan.InfoFromPositions([][]float64{{3, 1}, {1, 1}, {2, 0}, {1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{1, 2, 3}, {0, 1}}
	if diff := cmp.Diff(want, info.AxesUnique); diff != "" {
		t.Errorf("unique mismatch (-want +got):\n%s", diff)
	}
	wantIdx := [][]int{{2, 1}, {0, 1}, {1, 0}, {0, 0}}
	if diff := cmp.Diff(wantIdx, info.AxesIndexes); diff != "" {
		t.Errorf("indexes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 2}, info.Shape()); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
}

func TestInfoCopiesPositions(t *testing.T) {
	in := [][]float64{{1, 2}}
	info, err := scan.InfoFromPositions(in)
	if err != nil {
		t.Fatal(err)
	}
	in[0][0] = 99
	if info.Positions[0][0] != 1 {
		t.Error("Info shares storage with its input")
	}
	p := info.Position(0)
	p[1] = 99
	if info.Positions[0][1] != 2 {
		t.Error("Position returned a view instead of a copy")
	}
}

func TestInfoRaggedPositions(t *testing.T) {
	_, err := scan.InfoFromPositions([][]float64{{0, 0}, {1}})
	if !errors.Is(err, scan.ErrAxesMismatch) {
		t.Errorf("expected ErrAxesMismatch, got %v", err)
	}
	info, err := scan.InfoFromPositions(nil)
	if err != nil || info.NSteps != 0 {
		t.Errorf("expected an empty Info, got %+v, %v", info, err)
	}
}

func TestInfoFlatIndex(t *testing.T) {
	pos, _ := scan.LinearGrid([]float64{0, 0}, []float64{2, 3}, []float64{1, 1}, true, 0)
	info, err := scan.InfoFromPositions(pos)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[int]bool)
	for i := 0; i < info.NSteps; i++ {
		f := info.FlatIndex(i)
		if f < 0 || f >= 12 {
			t.Fatalf("flat index %d out of range", f)
		}
		if seen[f] {
			t.Errorf("flat index %d repeated", f)
		}
		seen[f] = true
	}
	// the serpentine pass 1 starts at the far end of the inner axis
	if f := info.FlatIndex(4); f != 7 {
		t.Errorf("expected step 4 at flat offset 7, got %d", f)
	}
}

func TestEmptyInfo(t *testing.T) {
	info := scan.EmptyInfo(2)
	if !info.Empty() || info.Naxes() != 2 {
		t.Errorf("expected empty 2 axis info, got %+v", info)
	}
	if info.Positions == nil || info.AxesUnique[0] == nil {
		t.Error("empty info should hold empty, non-nil slices")
	}
}
