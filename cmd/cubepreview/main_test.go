package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaceName(t *testing.T) {
	got := make([]string, 0, 6)
	for _, f := range labyrinth.AllFaces() {
		got = append(got, faceName(f))
	}
	assert.Equal(t, []string{"px", "nx", "py", "ny", "pz", "nz"}, got)
}

func TestRunWritesEveryFace(t *testing.T) {
	dir := t.TempDir()
	files, err := run(options{size: 7, steps: 300, fillEvery: 4, seed: 3, textureSize: 28, out: dir})
	require.NoError(t, err)
	require.Len(t, files, 12)

	for _, path := range files {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err, path)
		assert.Equal(t, 28, img.Bounds().Dx(), path)
	}
}

func TestRunRejectsBadSize(t *testing.T) {
	_, err := run(options{size: 8, out: t.TempDir()})
	assert.ErrorIs(t, err, labyrinth.ErrEvenSize)
}

func TestRunPalette(t *testing.T) {
	_, err := run(options{size: 5, steps: 20, textureSize: 10, out: t.TempDir(),
		palette: []string{"#000000", "#ffffff", "#101010", "#202020", "#303030"}})
	require.NoError(t, err)

	_, err = run(options{size: 5, out: t.TempDir(), palette: []string{"#000000"}})
	assert.Error(t, err)
	_, err = run(options{size: 5, out: t.TempDir(), palette: []string{"#000000", "x", "#101010", "#202020", "#303030"}})
	assert.Error(t, err)
}

func TestRootCmdPrintsFiles(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--size", "5", "--steps", "50", "--texture", "10", "--out", dir})
	require.NoError(t, cmd.Execute())

	lines := strings.Fields(out.String())
	assert.Len(t, lines, 12)
	assert.Contains(t, lines, filepath.Join(dir, "px-color.png"))
}
