package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/golascan/config"
	"github.com/nasa-jpl/golascan/scan"
	"github.com/nasa-jpl/golascan/util"
)

func TestLoadMissingFile(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", c.Addr)
	assert.Equal(t, scan.Scan1D, c.Scan.Type)
	assert.Equal(t, scan.DefaultStepsLimit, c.Scan.StepsLimit)
	assert.Equal(t, []string{"x", "y"}, c.Actuators())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golascan.yml")
	doc := `addr: ":9001"
scan:
  type: Scan2D
  steps_limit: 500
  scan2d:
    subtype: Back&Forth
    starts: [0, 0]
    stops: [2, 3]
    steps: [1, 1]
stages:
  - name: xps
    endpoint: /xps
    type: remote
    addr: http://127.0.0.1:8000/xps
    axes: [a, b]
    limits:
      a: {min: -1, max: 1}
acquisition:
  settle_seconds: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9001", c.Addr)
	assert.Equal(t, scan.Scan2D, c.Scan.Type)
	assert.Equal(t, 500, c.Scan.StepsLimit)
	assert.Equal(t, scan.BackAndForth, c.Scan.Scan2D.Subtype)
	assert.Equal(t, []float64{2, 3}, c.Scan.Scan2D.Stops)
	require.Len(t, c.Stages, 1)
	assert.Equal(t, "remote", c.Stages[0].Type)
	assert.Equal(t, util.Limiter{Min: -1, Max: 1}, c.Stages[0].Limits["a"])
	assert.Equal(t, []string{"a", "b"}, c.Actuators())
	assert.Equal(t, 0.25, c.Acquisition.SettleSeconds)
	// untouched keys keep their defaults
	assert.Equal(t, 200, c.Acquisition.AdaptiveMaxPoints)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unterminated"), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GOLASCAN_ADDR", ":7777")
	t.Setenv("GOLASCAN_SCAN__STEPS_LIMIT", "42")
	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7777", c.Addr)
	assert.Equal(t, 42, c.Scan.StepsLimit)
}

func TestWriteRoundTrip(t *testing.T) {
	want := config.Default()
	want.Addr = ":1234"
	want.Scan.Scan1D.Stop = 7

	var buf bytes.Buffer
	require.NoError(t, config.Write(&buf, want))
	path := filepath.Join(t.TempDir(), "out.yml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":1234", got.Addr)
	assert.Equal(t, 7., got.Scan.Scan1D.Stop)
	assert.Equal(t, want.Stages[0].Limits, got.Stages[0].Limits)
}
