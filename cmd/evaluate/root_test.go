package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_SyntheticCoarse(t *testing.T) {
	dir := t.TempDir()
	geo := filepath.Join(dir, "oval.geojson")
	png := filepath.Join(dir, "oval.png")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--coarse", "--peak", "400", "--geojson", geo, "--png", png})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "60 stations")
	assert.Contains(t, out.String(), "peak score")

	data, err := os.ReadFile(geo)
	require.NoError(t, err)
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.NotEmpty(t, fc.Features)

	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestEvaluate_Fixture(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--coarse", "--observations", filepath.Join("..", "..", "data", "mock", "observation_batches.json"), "--batch", "0"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "batch jet-1: 60 stations, 0 scored points, 0 contours")
}

func TestEvaluate_FixtureBatchOutOfRange(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--observations", filepath.Join("..", "..", "data", "mock", "observation_batches.json"), "--batch", "7"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
