package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/astrogo/fitsio"
	"github.com/snksoft/crc"

	"github.com/nasa-jpl/golascan/scan"
)

var crcTable = crc.NewTable(crc.XMODEM)

// Fingerprint is a CRC-16 of the scan positions, used to tell whether a
// file on disk matches a scan without comparing every coordinate
func Fingerprint(info scan.Info) uint16 {
	buf := make([]byte, 8)
	c := crcTable.InitCrc()
	for _, p := range info.Positions {
		for _, v := range p {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			c = crcTable.UpdateCrc(c, buf)
		}
	}
	return crcTable.CRC16(c)
}

// WriteFITS streams the cube to w.  The primary HDU is a float64 image with
// the scan axes in FITS order (last scan axis is NAXIS1) and one plane per
// detector.  A binary table per axis holds its unique values, and a STEPS
// table holds every visited position with the values read there.
func WriteFITS(w io.Writer, metadata []fitsio.Card, c *Cube, axes []string) error {
	info := c.Info()
	if info.Naxes() == 0 {
		return fmt.Errorf("%w: cube has no axes", ErrStep)
	}
	if len(c.names) == 0 {
		return fmt.Errorf("%w: cube has no detectors", ErrValues)
	}
	shape := info.Shape()
	dims := make([]int, 0, len(shape)+1)
	for i := len(shape) - 1; i >= 0; i-- {
		dims = append(dims, shape[i])
	}
	names := c.Names()
	if len(names) > 1 {
		dims = append(dims, len(names))
	}
	metadata = append(metadata,
		fitsio.Card{Name: "NSTEPS", Value: info.NSteps, Comment: "number of scan steps"},
		fitsio.Card{Name: "SCANCRC", Value: int(Fingerprint(info)), Comment: "CRC-16 of the positions"},
	)
	for i := range shape {
		name := fmt.Sprintf("axis%d", i)
		if i < len(axes) {
			name = axes[i]
		}
		metadata = append(metadata, fitsio.Card{Name: fmt.Sprintf("AXIS%d", i+1), Value: name})
	}
	for i, n := range names {
		metadata = append(metadata, fitsio.Card{Name: fmt.Sprintf("DET%d", i+1), Value: n})
	}

	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(-64, dims)
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}
	var buf []float64
	for i := range names {
		buf = append(buf, c.Data(i)...)
	}
	err = im.Write(buf)
	if err != nil {
		return err
	}
	err = fits.Write(im)
	if err != nil {
		return err
	}

	for i, u := range info.AxesUnique {
		err = writeAxis(fits, fmt.Sprintf("AXIS%d", i+1), u)
		if err != nil {
			return err
		}
	}
	return writeSteps(fits, c, axes)
}

func writeAxis(fits *fitsio.File, name string, values []float64) error {
	tbl, err := fitsio.NewTable(name, []fitsio.Column{{Name: "VALUE", Format: "D"}}, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()
	for _, v := range values {
		v := v
		if err = tbl.Write(&v); err != nil {
			return err
		}
	}
	return fits.Write(tbl)
}

func writeSteps(fits *fitsio.File, c *Cube, axes []string) error {
	info := c.Info()
	names := c.Names()
	naxes := info.Naxes()
	cols := make([]fitsio.Column, 0, naxes+len(names))
	for i := 0; i < naxes; i++ {
		name := fmt.Sprintf("axis%d", i)
		if i < len(axes) {
			name = axes[i]
		}
		cols = append(cols, fitsio.Column{Name: name, Format: "D"})
	}
	for _, n := range names {
		cols = append(cols, fitsio.Column{Name: n, Format: "D"})
	}
	tbl, err := fitsio.NewTable("STEPS", cols, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()

	data := make([][]float64, len(names))
	for i := range names {
		data[i] = c.Data(i)
	}
	row := make([]float64, len(cols))
	args := make([]interface{}, len(cols))
	for i := range row {
		args[i] = &row[i]
	}
	for step, pos := range info.Positions {
		copy(row, pos)
		flat := info.FlatIndex(step)
		for i := range names {
			row[naxes+i] = data[i][flat]
		}
		if err = tbl.Write(args...); err != nil {
			return err
		}
	}
	return fits.Write(tbl)
}
