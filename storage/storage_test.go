package storage_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/golascan/scan"
	"github.com/nasa-jpl/golascan/storage"
)

// a 2x3 grid visited in serpentine order
func grid(t *testing.T) scan.Info {
	t.Helper()
	info, err := scan.InfoFromPositions([][]float64{
		{0, 10}, {0, 20}, {0, 30},
		{1, 30}, {1, 20}, {1, 10},
	})
	require.NoError(t, err)
	return info
}

func TestCubePut(t *testing.T) {
	c := storage.NewCube(grid(t), []string{"pd", "pm"})
	assert.Equal(t, []int{2, 3}, c.Shape())
	assert.True(t, math.IsNaN(c.At(0, 1, 2)))

	require.NoError(t, c.Put(3, []float64{7, 8}))
	assert.Equal(t, 7., c.At(0, 1, 2))
	assert.Equal(t, 8., c.At(1, 1, 2))
	assert.Equal(t, 1, c.Filled())

	assert.True(t, errors.Is(c.Put(6, []float64{1, 2}), storage.ErrStep))
	assert.True(t, errors.Is(c.Put(0, []float64{1}), storage.ErrValues))
}

func TestFingerprint(t *testing.T) {
	a := storage.Fingerprint(grid(t))
	assert.Equal(t, a, storage.Fingerprint(grid(t)))
	other, err := scan.InfoFromPositions([][]float64{{0, 10}, {0, 20}})
	require.NoError(t, err)
	assert.NotEqual(t, a, storage.Fingerprint(other))
}

func TestWriteFITS(t *testing.T) {
	info := grid(t)
	c := storage.NewCube(info, []string{"pd"})
	for i := 0; i < info.NSteps; i++ {
		require.NoError(t, c.Put(i, []float64{float64(i)}))
	}
	var buf bytes.Buffer
	cards := []fitsio.Card{{Name: "SCANTYPE", Value: "Scan2D"}}
	require.NoError(t, storage.WriteFITS(&buf, cards, c, []string{"x", "y"}))

	f, err := fitsio.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	require.Len(t, f.HDUs(), 4)

	prim := f.HDU(0)
	hdr := prim.Header()
	assert.Equal(t, []int{3, 2}, hdr.Axes())
	assert.Equal(t, "Scan2D", hdr.Get("SCANTYPE").Value)
	assert.Equal(t, "6", fmt.Sprint(hdr.Get("NSTEPS").Value))
	assert.Equal(t, "x", hdr.Get("AXIS1").Value)

	data := make([]float64, 6)
	require.NoError(t, prim.(fitsio.Image).Read(&data))
	// row-major over (x, y): x=0 row is steps 0,1,2; x=1 row is steps 5,4,3
	assert.Equal(t, []float64{0, 1, 2, 5, 4, 3}, data)

	tbl := f.HDU(2).(*fitsio.Table)
	rows, err := tbl.Read(0, tbl.NumRows())
	require.NoError(t, err)
	defer rows.Close()
	var ys []float64
	for rows.Next() {
		var v float64
		require.NoError(t, rows.Scan(&v))
		ys = append(ys, v)
	}
	assert.Equal(t, []float64{10, 20, 30}, ys)

	steps := f.HDU(3).(*fitsio.Table)
	assert.Equal(t, int64(6), steps.NumRows())
}
