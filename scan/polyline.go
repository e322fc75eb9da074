package scan

import (
	"math"
	"sort"

	"github.com/nasa-jpl/golascan/mathx"
	"github.com/nasa-jpl/golascan/util"
)

// Vector is the segment between two consecutive waypoints of a tabular path
type Vector struct {
	// Origin is the waypoint the segment starts at
	Origin []float64 `json:"origin"`

	// Delta is the displacement to the next waypoint
	Delta []float64 `json:"delta"`

	// Length is the euclidean norm of Delta
	Length float64 `json:"length"`

	// Cumulative is the path length from the first waypoint to Origin
	Cumulative float64 `json:"cumulative"`
}

// At returns the point a distance s along the segment, clamped to its ends
func (v Vector) At(s float64) []float64 {
	out := make([]float64, len(v.Origin))
	t := 0.
	if v.Length > 0 {
		t = util.Clamp(s/v.Length, 0, 1)
	}
	for i := range out {
		out[i] = v.Origin[i] + t*v.Delta[i]
	}
	return out
}

// Vectors returns the segments between consecutive waypoints and the total path length
func Vectors(waypoints [][]float64) ([]Vector, float64) {
	if len(waypoints) < 2 {
		return nil, 0
	}
	vecs := make([]Vector, 0, len(waypoints)-1)
	total := 0.
	for i := 0; i < len(waypoints)-1; i++ {
		a, b := waypoints[i], waypoints[i+1]
		d := make([]float64, len(a))
		sq := 0.
		for j := range a {
			d[j] = b[j] - a[j]
			sq += d[j] * d[j]
		}
		l := math.Sqrt(sq)
		vecs = append(vecs, Vector{
			Origin:     append([]float64(nil), a...),
			Delta:      d,
			Length:     l,
			Cumulative: total,
		})
		total += l
	}
	return vecs, total
}

// pointAlong returns the point at abscissa s, clamped to [0, total]
func pointAlong(vecs []Vector, total, s float64) []float64 {
	if s <= 0 {
		return vecs[0].At(0)
	}
	if s >= total {
		last := vecs[len(vecs)-1]
		return last.At(last.Length)
	}
	i := sort.Search(len(vecs), func(i int) bool { return vecs[i].Cumulative > s }) - 1
	if i < 0 {
		i = 0
	}
	return vecs[i].At(s - vecs[i].Cumulative)
}

// ResamplePolyline returns points spaced step apart along the polyline
// through waypoints.  The first and last waypoints are always included.
// A non-positive step, or a path of zero length, returns a copy of the waypoints.
func ResamplePolyline(waypoints [][]float64, step float64) [][]float64 {
	vecs, total := Vectors(waypoints)
	if step <= 0 || mathx.IsZero(total) {
		out := make([][]float64, len(waypoints))
		for i, w := range waypoints {
			out[i] = append([]float64(nil), w...)
		}
		return out
	}
	n := int(math.Floor(total/step + 1e-9))
	out := make([][]float64, 0, n+2)
	for k := 0; k <= n; k++ {
		out = append(out, pointAlong(vecs, total, float64(k)*step))
	}
	if total-float64(n)*step > mathx.Tol*math.Max(1, total) {
		out = append(out, pointAlong(vecs, total, total))
	}
	return out
}
