package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/golascan/config"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestPositionsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	out := run(t, "positions", "-c", path)
	assert.Contains(t, out, "Scan1D/Linear: 11 steps, shape 11")

	out = run(t, "positions", "-c", path, "-t", "Scan2D", "-s", "Linear")
	assert.Contains(t, out, "Scan2D/Linear: 121 steps, shape 11,11")
	scanType, scanSubtype = "", ""
}

func TestMkconfRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golascan.yml")
	run(t, "mkconf", "-c", path)
	_, err := os.Stat(path)
	require.NoError(t, err)
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Scan.Scan2D, c.Scan.Scan2D)
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "golascan version "+Version+"\n", run(t, "version"))
}
